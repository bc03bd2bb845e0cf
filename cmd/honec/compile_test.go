package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/value"
)

func writeTestFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseVariants(t *testing.T) {
	v, err := parseVariants([]string{"env=prod", "region=eu"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "prod", "region": "eu"}, v)
}

func TestParseVariantsRejectsMissingEquals(t *testing.T) {
	_, err := parseVariants([]string{"env"})
	assert.Error(t, err)
}

func TestParseSecretsModeDefaultsToPlaceholder(t *testing.T) {
	mode, err := parseSecretsMode("")
	require.NoError(t, err)
	assert.Equal(t, "placeholder", string(mode))
}

func TestParseSecretsModeRejectsUnknown(t *testing.T) {
	_, err := parseSecretsMode("bogus")
	assert.Error(t, err)
}

func TestRenderDispatchesByFormat(t *testing.T) {
	o := value.NewObject()
	o.Set("name", value.String("svc"))

	for _, format := range []string{"json", "yaml", "toml", "env"} {
		out, err := render(o, format)
		require.NoErrorf(t, err, "format %s", format)
		assert.NotEmpty(t, out)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	_, err := render(value.NewObject(), "xml")
	assert.Error(t, err)
}

func TestRunCompileWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := writeTestFile(t, dir, "svc.hone", `name: "demo"
replicas: 2
`)
	out := filepath.Join(dir, "out.json")

	err := runCompile(src, compileOptions{
		format:      "json",
		output:      out,
		secretsMode: "placeholder",
		noCache:     true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "demo"`)
	assert.Contains(t, string(data), `"replicas": 2`)
}

func TestRunCompileRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	src := writeTestFile(t, dir, "svc.hone", `name: "demo"
`)
	err := runCompile(src, compileOptions{format: "xml", noCache: true})
	assert.Error(t, err)
}

func TestRunValidateSucceedsForMatchingSchema(t *testing.T) {
	dir := t.TempDir()
	src := writeTestFile(t, dir, "svc.hone", `schema Service {
  name: string
}

use Service

name: "demo"
`)
	err := runValidate(src, "Service")
	assert.NoError(t, err)
}

func TestRunValidateFailsForUnknownSchema(t *testing.T) {
	dir := t.TempDir()
	src := writeTestFile(t, dir, "svc.hone", `name: "demo"
`)
	err := runValidate(src, "NoSuchSchema")
	assert.Error(t, err)
}
