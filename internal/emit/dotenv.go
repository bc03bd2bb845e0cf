package emit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/honelang/hone/internal/value"
)

// Dotenv renders v as a flat KEY=value file, one line per top-level
// field. The root value must be an object; nested objects/arrays are
// rejected since .env has no nesting syntax. Values are POSIX-shell
// double-quoted so downstream `source`/dotenv loaders handle embedded
// whitespace and special characters unambiguously.
//
// No ecosystem ".env emitter" library appears anywhere in the example
// pack, so this stays stdlib-only (bytes/fmt/strings) — see DESIGN.md.
func Dotenv(v value.Value) ([]byte, error) {
	root, ok := v.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("emit: .env output requires an object at the document root, got %v", v.Kind())
	}

	var buf bytes.Buffer
	for _, k := range root.Keys() {
		fv, _ := root.Get(k)
		scalar, err := dotenvScalar(fv)
		if err != nil {
			return nil, fmt.Errorf("emit: field %q: %w", k, err)
		}
		fmt.Fprintf(&buf, "%s=%s\n", k, scalar)
	}
	return buf.Bytes(), nil
}

func dotenvScalar(v value.Value) (string, error) {
	switch val := v.(type) {
	case value.Null:
		return `""`, nil
	case value.Bool, value.Int, value.Float:
		return val.Stringify(), nil
	case value.String:
		return quoteShell(string(val)), nil
	default:
		return "", fmt.Errorf("unsupported at top level: %v", v.Kind())
	}
}

func quoteShell(s string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\', '$', '`':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
