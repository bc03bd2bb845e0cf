// Package value implements the runtime value representation produced by
// the evaluator (§3.1): the seven value kinds (null, bool, int, float,
// string, array, object), merge semantics, and interpolation stringification.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant of a Value.
type Kind int

const (
	KNull Kind = iota
	KBool
	KInt
	KFloat
	KString
	KArray
	KObject
)

func (k Kind) String() string {
	switch k {
	case KNull:
		return "null"
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KString:
		return "string"
	case KArray:
		return "array"
	case KObject:
		return "object"
	default:
		return "?"
	}
}

// Value is implemented by every runtime value kind.
type Value interface {
	Kind() Kind
	// Stringify renders the value the way `${expr}` interpolation does
	// (§4.2.1): strings pass through raw, everything else renders its
	// canonical textual form.
	Stringify() string
}

type Null struct{}

func (Null) Kind() Kind        { return KNull }
func (Null) Stringify() string { return "null" }

type Bool bool

func (b Bool) Kind() Kind { return KBool }
func (b Bool) Stringify() string {
	if b {
		return "true"
	}
	return "false"
}

type Int int64

func (i Int) Kind() Kind        { return KInt }
func (i Int) Stringify() string { return strconv.FormatInt(int64(i), 10) }

type Float float64

func (f Float) Kind() Kind { return KFloat }

// Stringify renders floats in the shortest round-tripping decimal form,
// always including a decimal point so `1.0` never interpolates as `1`.
func (f Float) Stringify() string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type String string

func (s String) Kind() Kind        { return KString }
func (s String) Stringify() string { return string(s) }

type Array []Value

func (a Array) Kind() Kind { return KArray }
func (a Array) Stringify() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = literalForm(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Object is an insertion-ordered string-keyed map, preserving the order
// fields were first assigned so output serialization is deterministic and
// matches source order (§3.1, §4.2.3).
type Object struct {
	keys   []string
	values map[string]Value
}

func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

func (o *Object) Kind() Kind { return KObject }

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or overwrites key, keeping its original position in Keys()
// when overwriting.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key, if present.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns field names in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

func (o *Object) Len() int { return len(o.keys) }

// Clone returns a shallow copy: same child Values, independent key/value
// storage so mutating the clone never affects the original.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

func (o *Object) Stringify() string {
	parts := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, literalForm(o.values[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// literalForm renders a nested value the way it would appear inside an
// array/object's own Stringify, where strings are quoted rather than
// passed through raw.
func literalForm(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return v.Stringify()
}

// Equal reports deep equality between two values, used by `==`/`!=` and by
// policy/assertion conditions.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case String:
		return av == b.(String)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			bval, ok := bv.Get(k)
			if !ok || !Equal(av.values[k], bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Truthy implements the language's truthiness rule for `when`/`&&`/`||`/
// ternary conditions: null and false are falsy, everything else (including
// 0, 0.0, and "") is truthy (§3.1).
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(vv)
	default:
		return true
	}
}
