package emit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/honelang/hone/internal/value"
)

// JSON renders v as indented JSON, walking value.Object directly so
// field order matches the source file rather than Go's unstable map
// iteration order (which plain encoding/json.Marshal on a map would
// produce).
func JSON(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v value.Value, indent int) error {
	switch val := v.(type) {
	case value.Null:
		buf.WriteString("null")
	case value.Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case value.Int:
		fmt.Fprintf(buf, "%d", int64(val))
	case value.Float:
		b, err := json.Marshal(float64(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case value.String:
		b, err := json.Marshal(string(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case value.Array:
		if len(val) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, elem := range val {
			writeIndent(buf, indent+1)
			if err := writeJSON(buf, elem, indent+1); err != nil {
				return err
			}
			if i < len(val)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, indent)
		buf.WriteByte(']')
	case *value.Object:
		keys := val.Keys()
		if len(keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, k := range keys {
			writeIndent(buf, indent+1)
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteString(": ")
			fv, _ := val.Get(k)
			if err := writeJSON(buf, fv, indent+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, indent)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("emit: unsupported value kind %v", v.Kind())
	}
	return nil
}

func writeIndent(buf *bytes.Buffer, n int) {
	for i := 0; i < n; i++ {
		buf.WriteString("  ")
	}
}

// ParseJSON decodes raw JSON into a Value tree, preserving object field
// order via json.Decoder's token stream rather than Unmarshal into
// map[string]any (which would discard it). Used for the round-trip
// property (§8.2) and for feeding external data into `args`.
func ParseJSON(raw []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("emit: parse json: %w", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (value.Value, error) {
	switch t := tok.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return value.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return value.Float(f), nil
	case string:
		return value.String(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := value.Array{}
			for dec.More() {
				elem, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		case '{':
			obj := value.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				fv, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, fv)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected json token %v", tok)
}
