package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/ast"
)

func TestParseSimpleKeyValues(t *testing.T) {
	file, err := Parse([]byte(`name: "svc"
replicas: 3
`), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Body, 2)

	kv, ok := file.Body[0].(*ast.KeyValueItem)
	require.True(t, ok)
	assert.Equal(t, "name", kv.Key.Name)
	assert.Equal(t, ast.AssignNormal, kv.Op)

	kv2, ok := file.Body[1].(*ast.KeyValueItem)
	require.True(t, ok)
	assert.Equal(t, "replicas", kv2.Key.Name)
}

func TestParseAppendAndReplaceOperators(t *testing.T) {
	file, err := Parse([]byte(`tags +: ["a"]
name !: "override"
`), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Body, 2)

	tags := file.Body[0].(*ast.KeyValueItem)
	assert.Equal(t, ast.AssignAppend, tags.Op)

	name := file.Body[1].(*ast.KeyValueItem)
	assert.Equal(t, ast.AssignReplace, name.Op)
}

func TestParseQuotedKeyAllowsReservedWord(t *testing.T) {
	file, err := Parse([]byte(`"let": 1
`), "test.hone")
	require.NoError(t, err)
	kv := file.Body[0].(*ast.KeyValueItem)
	assert.Equal(t, "let", kv.Key.Name)
	assert.True(t, kv.Key.Quoted)
}

func TestParseBareReservedWordAsKeyFails(t *testing.T) {
	_, err := Parse([]byte(`let: 1
`), "test.hone")
	assert.Error(t, err)
}

func TestParseImportWhole(t *testing.T) {
	file, err := Parse([]byte(`import "base.hone" as base
name: base.plan
`), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Preamble, 1)
	imp := file.Preamble[0].(*ast.ImportDecl)
	assert.Equal(t, ast.ImportWhole, imp.Kind)
	assert.Equal(t, "base.hone", imp.Path)
	assert.Equal(t, "base", imp.Alias)
}

func TestParseImportNamed(t *testing.T) {
	file, err := Parse([]byte(`import { zone, region as r } from "base.hone"
name: zone
`), "test.hone")
	require.NoError(t, err)
	imp := file.Preamble[0].(*ast.ImportDecl)
	assert.Equal(t, ast.ImportNamed, imp.Kind)
	require.Len(t, imp.Names, 2)
	assert.Equal(t, "zone", imp.Names[0].Name)
	assert.Equal(t, "region", imp.Names[1].Name)
	assert.Equal(t, "r", imp.Names[1].Alias)
}

func TestParseFromDecl(t *testing.T) {
	file, err := Parse([]byte(`from "base.hone"
replicas: 3
`), "test.hone")
	require.NoError(t, err)
	from := file.Preamble[0].(*ast.FromDecl)
	assert.Equal(t, "base.hone", from.Path)
}

func TestParseSchemaDeclWithExtendsAndOpen(t *testing.T) {
	file, err := Parse([]byte(`schema Base {
  id: string
}
schema Service extends Base {
  name: string
  region?: string
  ...
}
`), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Preamble, 2)

	svc := file.Preamble[1].(*ast.SchemaDecl)
	assert.Equal(t, "Service", svc.Name)
	assert.Equal(t, "Base", svc.Extends)
	assert.True(t, svc.Open)
	require.Len(t, svc.Fields, 2)
	assert.Equal(t, "name", svc.Fields[0].Name)
	assert.False(t, svc.Fields[0].Optional)
	assert.Equal(t, "region", svc.Fields[1].Name)
	assert.True(t, svc.Fields[1].Optional)
}

func TestParseTypeAliasDecl(t *testing.T) {
	file, err := Parse([]byte(`type Port = int(1, 65535)
`), "test.hone")
	require.NoError(t, err)
	alias := file.Preamble[0].(*ast.TypeAliasDecl)
	assert.Equal(t, "Port", alias.Name)
}

func TestParseUseDecl(t *testing.T) {
	file, err := Parse([]byte(`schema Service { name: string }
use Service
name: "svc"
`), "test.hone")
	require.NoError(t, err)
	use := file.Preamble[1].(*ast.UseDecl)
	assert.Equal(t, "Service", use.SchemaName)
}

func TestParseSecretDecl(t *testing.T) {
	file, err := Parse([]byte(`secret api_key from "env:API_KEY"
`), "test.hone")
	require.NoError(t, err)
	secret := file.Preamble[0].(*ast.SecretDecl)
	assert.Equal(t, "api_key", secret.Name)
	assert.Equal(t, "env:API_KEY", secret.Provider)
}

func TestParsePolicyDeclDenyAndWarn(t *testing.T) {
	file, err := Parse([]byte(`policy must_have_name deny when output.name != "" { "name required" }
policy low_replicas warn when output.replicas >= 3 { "replicas low" }
`), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Preamble, 2)

	deny := file.Preamble[0].(*ast.PolicyDecl)
	assert.Equal(t, "must_have_name", deny.Name)
	assert.Equal(t, ast.PolicyDeny, deny.Level)
	assert.Equal(t, "name required", deny.Message)

	warn := file.Preamble[1].(*ast.PolicyDecl)
	assert.Equal(t, ast.PolicyWarn, warn.Level)
}

func TestParseWhenItemWithElse(t *testing.T) {
	file, err := Parse([]byte(`when replicas > 1 {
  mode: "ha"
} else {
  mode: "single"
}
`), "test.hone")
	require.NoError(t, err)
	when := file.Body[0].(*ast.WhenItem)
	require.Len(t, when.Body, 1)
	require.Len(t, when.Else, 1)
}

func TestParseForItem(t *testing.T) {
	file, err := Parse([]byte(`for x in [1, 2, 3] {
  name: x
}
`), "test.hone")
	require.NoError(t, err)
	forItem := file.Body[0].(*ast.ForItem)
	assert.Equal(t, "x", forItem.Binding)
}

func TestParseAssertItem(t *testing.T) {
	file, err := Parse([]byte(`assert replicas > 0 : "replicas must be positive"
`), "test.hone")
	require.NoError(t, err)
	assertItem := file.Body[0].(*ast.AssertItem)
	assert.Equal(t, "replicas must be positive", assertItem.Message)
}

func TestParseMultiDocumentFile(t *testing.T) {
	file, err := Parse([]byte(`let tier = "gold"

---web
name: "web"
---worker
name: "worker"
`), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Documents, 2)
	assert.Equal(t, "web", file.Documents[0].Name)
	assert.Equal(t, "worker", file.Documents[1].Name)
}

func TestParseObjectAndArrayLiterals(t *testing.T) {
	file, err := Parse([]byte(`meta: { region: "us-east-1", replicas: 2 }
ports: [80, 443]
`), "test.hone")
	require.NoError(t, err)
	meta := file.Body[0].(*ast.KeyValueItem)
	obj, ok := meta.Value.(*ast.ObjectLit)
	require.True(t, ok)
	assert.Len(t, obj.Body, 2)

	ports := file.Body[1].(*ast.KeyValueItem)
	arr, ok := ports.Value.(*ast.ArrayLit)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 2)
}

func TestParseStringInterpolation(t *testing.T) {
	file, err := Parse([]byte(`name: "svc-${region}"
`), "test.hone")
	require.NoError(t, err)
	kv := file.Body[0].(*ast.KeyValueItem)
	str, ok := kv.Value.(*ast.StringLit)
	require.True(t, ok)
	assert.True(t, len(str.Parts) >= 2)
}

func TestParseUnexpectedTokenReportsError(t *testing.T) {
	_, err := Parse([]byte(`name: :`), "test.hone")
	assert.Error(t, err)
}
