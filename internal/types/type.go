// Package types implements the schema- and constraint-driven type system
// described in the language specification (§3.3, §4.4): nominal schemas
// with open/closed records, range/length/pattern constraints, type
// aliases, and the checker that validates Values against them.
package types

import "fmt"

// Kind tags the variant of a Type.
type Kind int

const (
	KAny Kind = iota
	KNull
	KBool
	KInt
	KIntConstrained
	KFloat
	KFloatConstrained
	KNumber
	KString
	KStringConstrained
	KStringLiteral
	KArray
	KObject
	KMap
	KSchema
	KUnion
	KOptional
)

// Type is a tagged union over the type grammar in §3.3. Only the fields
// relevant to Kind are populated; the rest are zero.
type Type struct {
	Kind Kind

	// KIntConstrained
	IntMin, IntMax *int64

	// KFloatConstrained
	FloatMin, FloatMax *float64

	// KStringConstrained
	StrMinLen, StrMaxLen *int
	Pattern              string

	// KStringLiteral
	Literal string

	// KArray / KOptional: element/inner type
	Elem *Type

	// KObject: optional value-type constraint (nil = untyped object)
	// KMap: required value type
	Value *Type

	// KSchema
	SchemaName string

	// KUnion
	Options []Type
}

func Any() Type  { return Type{Kind: KAny} }
func Null() Type { return Type{Kind: KNull} }
func Bool() Type { return Type{Kind: KBool} }
func Int() Type  { return Type{Kind: KInt} }
func Float() Type { return Type{Kind: KFloat} }
func Number() Type { return Type{Kind: KNumber} }
func String() Type { return Type{Kind: KString} }

func IntConstrained(min, max *int64) Type {
	return Type{Kind: KIntConstrained, IntMin: min, IntMax: max}
}

func FloatConstrained(min, max *float64) Type {
	return Type{Kind: KFloatConstrained, FloatMin: min, FloatMax: max}
}

func StringConstrained(minLen, maxLen *int, pattern string) Type {
	return Type{Kind: KStringConstrained, StrMinLen: minLen, StrMaxLen: maxLen, Pattern: pattern}
}

func StringLiteral(s string) Type { return Type{Kind: KStringLiteral, Literal: s} }

func Array(elem Type) Type { return Type{Kind: KArray, Elem: &elem} }

func Object(valueType *Type) Type { return Type{Kind: KObject, Value: valueType} }

func Map(value Type) Type { return Type{Kind: KMap, Value: &value} }

func Schema(name string) Type { return Type{Kind: KSchema, SchemaName: name} }

func Union(options []Type) Type {
	if len(options) == 1 {
		return options[0]
	}
	return Type{Kind: KUnion, Options: options}
}

func Optional(inner Type) Type {
	if inner.Kind == KOptional || inner.Kind == KNull {
		return inner
	}
	return Type{Kind: KOptional, Elem: &inner}
}

// String renders a type for diagnostics and help text.
func (t Type) String() string {
	switch t.Kind {
	case KAny:
		return "any"
	case KNull:
		return "null"
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KIntConstrained:
		return fmt.Sprintf("int(%s,%s)", boundStr(t.IntMin), boundStr(t.IntMax))
	case KFloat:
		return "float"
	case KFloatConstrained:
		return fmt.Sprintf("float(%s,%s)", fboundStr(t.FloatMin), fboundStr(t.FloatMax))
	case KNumber:
		return "number"
	case KString:
		return "string"
	case KStringConstrained:
		if t.Pattern != "" {
			return fmt.Sprintf("string(%s,%s,/%s/)", iboundStr(t.StrMinLen), iboundStr(t.StrMaxLen), t.Pattern)
		}
		return fmt.Sprintf("string(%s,%s)", iboundStr(t.StrMinLen), iboundStr(t.StrMaxLen))
	case KStringLiteral:
		return fmt.Sprintf("%q", t.Literal)
	case KArray:
		return fmt.Sprintf("array<%s>", t.Elem.String())
	case KObject:
		if t.Value != nil {
			return fmt.Sprintf("object<%s>", t.Value.String())
		}
		return "object"
	case KMap:
		return fmt.Sprintf("map<%s>", t.Value.String())
	case KSchema:
		return t.SchemaName
	case KUnion:
		s := ""
		for i, o := range t.Options {
			if i > 0 {
				s += " | "
			}
			s += o.String()
		}
		return s
	case KOptional:
		return t.Elem.String() + "?"
	default:
		return "?"
	}
}

func boundStr(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func iboundStr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func fboundStr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// Equal reports structural equality, used to decide whether two
// redeclarations of the same schema/type-alias name are permitted (§4.4:
// identical redeclarations are allowed, conflicting ones are an error).
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KIntConstrained:
		return eqIntPtr(a.IntMin, b.IntMin) && eqIntPtr(a.IntMax, b.IntMax)
	case KFloatConstrained:
		return eqFloatPtr(a.FloatMin, b.FloatMin) && eqFloatPtr(a.FloatMax, b.FloatMax)
	case KStringConstrained:
		return eqIntPtrI(a.StrMinLen, b.StrMinLen) && eqIntPtrI(a.StrMaxLen, b.StrMaxLen) && a.Pattern == b.Pattern
	case KStringLiteral:
		return a.Literal == b.Literal
	case KArray, KOptional:
		return Equal(*a.Elem, *b.Elem)
	case KObject:
		if (a.Value == nil) != (b.Value == nil) {
			return false
		}
		if a.Value == nil {
			return true
		}
		return Equal(*a.Value, *b.Value)
	case KMap:
		return Equal(*a.Value, *b.Value)
	case KSchema:
		return a.SchemaName == b.SchemaName
	case KUnion:
		if len(a.Options) != len(b.Options) {
			return false
		}
		for i := range a.Options {
			if !Equal(a.Options[i], b.Options[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func eqIntPtr(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func eqIntPtrI(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func eqFloatPtr(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
