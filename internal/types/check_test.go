package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/value"
)

func TestCheckScalarTypes(t *testing.T) {
	c := NewChecker(NewRegistry(), nil, "test.hone")
	assert.NoError(t, c.Check(value.String("svc"), String(), span.Location{}, "name"))
	assert.Error(t, c.Check(value.Int(1), String(), span.Location{}, "name"))
}

func TestCheckIntConstrainedEnforcesBounds(t *testing.T) {
	c := NewChecker(NewRegistry(), nil, "test.hone")
	min, max := int64(1), int64(5)
	typ := IntConstrained(&min, &max)
	assert.NoError(t, c.Check(value.Int(3), typ, span.Location{}, "replicas"))
	assert.Error(t, c.Check(value.Int(10), typ, span.Location{}, "replicas"))
}

func TestCheckStringConstrainedEnforcesPattern(t *testing.T) {
	reg := NewRegistry()
	c := NewChecker(reg, nil, "test.hone")
	typ := StringConstrained(nil, nil, "^[a-z]+$")
	assert.NoError(t, c.Check(value.String("svc"), typ, span.Location{}, "name"))
	assert.Error(t, c.Check(value.String("SVC"), typ, span.Location{}, "name"))
}

func TestCheckArrayRecursesIntoElements(t *testing.T) {
	c := NewChecker(NewRegistry(), nil, "test.hone")
	typ := Array(Int())
	assert.NoError(t, c.Check(value.Array{value.Int(1), value.Int(2)}, typ, span.Location{}, "ports"))
	assert.Error(t, c.Check(value.Array{value.Int(1), value.String("x")}, typ, span.Location{}, "ports"))
}

func TestCheckSchemaRejectsUnknownFieldWhenClosed(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("Service", SchemaDef{
		Name:   "Service",
		Fields: []Field{{Name: "name", Type: String()}},
	}, span.Location{}))
	c := NewChecker(reg, nil, "test.hone")

	v := value.NewObject()
	v.Set("name", value.String("svc"))
	v.Set("bogus", value.Int(1))

	assert.Error(t, c.Check(v, Schema("Service"), span.Location{}, ""))
}

func TestCheckSchemaAllowsUnknownFieldWhenOpen(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("Service", SchemaDef{
		Name:   "Service",
		Fields: []Field{{Name: "name", Type: String()}},
		Open:   true,
	}, span.Location{}))
	c := NewChecker(reg, nil, "test.hone")

	v := value.NewObject()
	v.Set("name", value.String("svc"))
	v.Set("extra", value.Int(1))

	assert.NoError(t, c.Check(v, Schema("Service"), span.Location{}, ""))
}

func TestCheckSchemaMissingRequiredFieldFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("Service", SchemaDef{
		Name:   "Service",
		Fields: []Field{{Name: "name", Type: String()}},
	}, span.Location{}))
	c := NewChecker(reg, nil, "test.hone")

	v := value.NewObject()
	assert.Error(t, c.Check(v, Schema("Service"), span.Location{}, ""))
}

func TestCheckSchemaOptionalFieldMayBeAbsent(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("Service", SchemaDef{
		Name:   "Service",
		Fields: []Field{{Name: "region", Type: String(), Optional: true}},
	}, span.Location{}))
	c := NewChecker(reg, nil, "test.hone")

	v := value.NewObject()
	assert.NoError(t, c.Check(v, Schema("Service"), span.Location{}, ""))
}

func TestCheckUnknownSchemaNameFails(t *testing.T) {
	c := NewChecker(NewRegistry(), nil, "test.hone")
	v := value.NewObject()
	assert.Error(t, c.Check(v, Schema("NoSuchSchema"), span.Location{}, ""))
}

func TestCheckUnionTriesBranchesInOrder(t *testing.T) {
	c := NewChecker(NewRegistry(), nil, "test.hone")
	typ := Union([]Type{Int(), String()})
	assert.NoError(t, c.Check(value.Int(1), typ, span.Location{}, "x"))
	assert.NoError(t, c.Check(value.String("y"), typ, span.Location{}, "x"))
	assert.Error(t, c.Check(value.Bool(true), typ, span.Location{}, "x"))
}

func TestCheckOptionalAllowsNull(t *testing.T) {
	c := NewChecker(NewRegistry(), nil, "test.hone")
	typ := Optional(Int())
	assert.NoError(t, c.Check(value.Null{}, typ, span.Location{}, "x"))
	assert.NoError(t, c.Check(value.Int(1), typ, span.Location{}, "x"))
	assert.Error(t, c.Check(value.String("x"), typ, span.Location{}, "x"))
}

func TestCheckUncheckedPathDowngradesErrorToWarning(t *testing.T) {
	c := NewChecker(NewRegistry(), map[string]bool{"name": true}, "test.hone")
	err := c.Check(value.Int(1), String(), span.Location{}, "name")
	require.NoError(t, err)
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, "test.hone", c.Warnings[0].File)
}

func TestCheckUncheckedPathWarnsEvenWhenItPasses(t *testing.T) {
	c := NewChecker(NewRegistry(), map[string]bool{"name": true}, "test.hone")
	err := c.Check(value.String("svc"), String(), span.Location{}, "name")
	require.NoError(t, err)
	require.Len(t, c.Warnings, 1)
	assert.Contains(t, c.Warnings[0].Message, "name")
}
