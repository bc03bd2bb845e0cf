package emit

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/honelang/hone/internal/value"
)

// TOML renders v as TOML via BurntSushi/toml. The root value must be an
// object (TOML has no bare-scalar or bare-array document form). Nested
// objects keep their declared field order going in, but BurntSushi's
// encoder walks Go maps in its own (sorted) order, so round-tripped key
// order is not guaranteed to match the source — acceptable since TOML
// documents are conventionally read by key, not position.
func TOML(v value.Value) ([]byte, error) {
	root, ok := v.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("emit: TOML output requires an object at the document root, got %v", v.Kind())
	}
	generic := toGeneric(root).(map[string]interface{})

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("emit: encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

// toGeneric converts a Value into plain Go data (map[string]interface{},
// []interface{}, string, int64, float64, bool, nil) for libraries that
// work over reflection rather than Value directly.
func toGeneric(v value.Value) interface{} {
	switch val := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(val)
	case value.Int:
		return int64(val)
	case value.Float:
		return float64(val)
	case value.String:
		return string(val)
	case value.Array:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = toGeneric(elem)
		}
		return out
	case *value.Object:
		out := make(map[string]interface{}, val.Len())
		for _, k := range val.Keys() {
			fv, _ := val.Get(k)
			out[k] = toGeneric(fv)
		}
		return out
	default:
		return nil
	}
}
