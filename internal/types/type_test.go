package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeStringRendersEachKind(t *testing.T) {
	assert.Equal(t, "any", Any().String())
	assert.Equal(t, "int", Int().String())
	assert.Equal(t, "array<string>", Array(String()).String())
	assert.Equal(t, "object", Object(nil).String())
	v := String()
	assert.Equal(t, "object<string>", Object(&v).String())
	assert.Equal(t, "map<int>", Map(Int()).String())
	assert.Equal(t, "svc", Schema("svc").String())
	assert.Equal(t, `"gold"`, StringLiteral("gold").String())
	assert.Equal(t, "string?", Optional(String()).String())
}

func TestIntConstrainedStringRendersBounds(t *testing.T) {
	min, max := int64(1), int64(10)
	assert.Equal(t, "int(1,10)", IntConstrained(&min, &max).String())
	assert.Equal(t, "int(-,-)", IntConstrained(nil, nil).String())
}

func TestUnionOfOneCollapsesToTheBranch(t *testing.T) {
	u := Union([]Type{Int()})
	assert.Equal(t, KInt, u.Kind)
}

func TestUnionStringJoinsBranches(t *testing.T) {
	u := Union([]Type{Int(), String()})
	assert.Equal(t, "int | string", u.String())
}

func TestOptionalOfOptionalIsIdempotent(t *testing.T) {
	inner := Optional(Int())
	twice := Optional(inner)
	assert.Equal(t, KOptional, twice.Kind)
	assert.Equal(t, KInt, twice.Elem.Kind)
}

func TestOptionalOfNullStaysNull(t *testing.T) {
	o := Optional(Null())
	assert.Equal(t, KNull, o.Kind)
}

func TestEqualConstrainedTypesComparesBounds(t *testing.T) {
	min1, max1 := int64(1), int64(5)
	min2, max2 := int64(1), int64(5)
	a := IntConstrained(&min1, &max1)
	b := IntConstrained(&min2, &max2)
	assert.True(t, Equal(a, b))

	max3 := int64(6)
	c := IntConstrained(&min1, &max3)
	assert.False(t, Equal(a, c))
}

func TestEqualSchemaComparesByName(t *testing.T) {
	assert.True(t, Equal(Schema("Service"), Schema("Service")))
	assert.False(t, Equal(Schema("Service"), Schema("Other")))
}

func TestEqualUnionComparesBranchesInOrder(t *testing.T) {
	a := Union([]Type{Int(), String()})
	b := Union([]Type{Int(), String()})
	c := Union([]Type{String(), Int()})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}
