package herrors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/honelang/hone/internal/span"
)

// ToJSON renders a Report as JSON, compact or indented.
func (r *Report) ToJSON(pretty bool) (string, error) {
	if pretty {
		data, err := json.MarshalIndent(r, "", "  ")
		return string(data), err
	}
	data, err := json.Marshal(r)
	return string(data), err
}

// MarshalDeterministic marshals v to JSON with map keys sorted at every
// nesting level, for byte-stable diagnostic and cache-entry output.
func MarshalDeterministic(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return data, nil
	}
	return marshalSorted(generic)
}

func marshalSorted(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			valJSON, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(valJSON)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			itemJSON, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			buf.Write(itemJSON)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	default:
		return json.Marshal(val)
	}
}

// Warning is a non-fatal diagnostic collected during compilation:
// @unchecked suppressions and `warn`-level policy violations.
type Warning struct {
	Message string        `json:"message"`
	File    string        `json:"file,omitempty"`
	Span    *span.Location `json:"span,omitempty"`
}
