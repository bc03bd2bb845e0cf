package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/span"
)

func TestAddSchemaAllowsIdenticalRedeclaration(t *testing.T) {
	reg := NewRegistry()
	def := SchemaDef{Name: "Service", Fields: []Field{{Name: "name", Type: String()}}}
	require.NoError(t, reg.AddSchema("Service", def, span.Location{}))
	require.NoError(t, reg.AddSchema("Service", def, span.Location{}))
}

func TestAddSchemaRejectsConflictingRedeclaration(t *testing.T) {
	reg := NewRegistry()
	a := SchemaDef{Name: "Service", Fields: []Field{{Name: "name", Type: String()}}}
	b := SchemaDef{Name: "Service", Fields: []Field{{Name: "name", Type: Int()}}}
	require.NoError(t, reg.AddSchema("Service", a, span.Location{}))
	assert.Error(t, reg.AddSchema("Service", b, span.Location{}))
}

func TestAddTypeAliasAllowsIdenticalRedeclaration(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddTypeAlias("Port", IntConstrained(nil, nil), span.Location{}))
	require.NoError(t, reg.AddTypeAlias("Port", IntConstrained(nil, nil), span.Location{}))
}

func TestSchemaDefLookup(t *testing.T) {
	reg := NewRegistry()
	def := SchemaDef{Name: "Service", Fields: []Field{{Name: "name", Type: String()}}}
	require.NoError(t, reg.AddSchema("Service", def, span.Location{}))

	got, ok := reg.SchemaDef("Service")
	require.True(t, ok)
	assert.Equal(t, def, got)

	_, ok = reg.SchemaDef("Missing")
	assert.False(t, ok)
}

func TestResolveFieldsInheritsParentFieldsFirst(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("Base", SchemaDef{
		Name:   "Base",
		Fields: []Field{{Name: "id", Type: String()}},
	}, span.Location{}))
	require.NoError(t, reg.AddSchema("Service", SchemaDef{
		Name:    "Service",
		Extends: "Base",
		Fields:  []Field{{Name: "name", Type: String()}},
	}, span.Location{}))

	fields, open, err := reg.ResolveFields("Service")
	require.NoError(t, err)
	assert.False(t, open)
	require.Len(t, fields, 2)
	assert.Equal(t, "id", fields[0].Name)
	assert.Equal(t, "name", fields[1].Name)
}

func TestResolveFieldsOpenPropagatesFromParent(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("Base", SchemaDef{Name: "Base", Open: true}, span.Location{}))
	require.NoError(t, reg.AddSchema("Child", SchemaDef{Name: "Child", Extends: "Base"}, span.Location{}))

	_, open, err := reg.ResolveFields("Child")
	require.NoError(t, err)
	assert.True(t, open)
}

func TestResolveFieldsBreaksExtendsCycle(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema("A", SchemaDef{Name: "A", Extends: "B", Fields: []Field{{Name: "a", Type: String()}}}, span.Location{}))
	require.NoError(t, reg.AddSchema("B", SchemaDef{Name: "B", Extends: "A", Fields: []Field{{Name: "b", Type: String()}}}, span.Location{}))

	fields, _, err := reg.ResolveFields("A")
	require.NoError(t, err)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Contains(t, names, "a")
}

func TestResolveFieldsUnknownSchemaReturnsNotFound(t *testing.T) {
	reg := NewRegistry()
	fields, open, err := reg.ResolveFields("NoSuch")
	require.NoError(t, err)
	assert.Nil(t, fields)
	assert.False(t, open)
}

func TestPatternsReturnsSharedCache(t *testing.T) {
	reg := NewRegistry()
	assert.Same(t, reg.Patterns(), reg.Patterns())
}
