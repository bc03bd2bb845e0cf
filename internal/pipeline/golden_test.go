package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/emit"
	"github.com/honelang/hone/testutil"
)

// TestCompileEmitIsGoldenStable pins down the determinism promised by
// §8.2: for a fixed source closure and config, compile+emit produces
// byte-identical JSON across runs.
func TestCompileEmitIsGoldenStable(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.hone", `name: "svc"
replicas: 3
tags: ["a", "b"]
meta: { region: "us-east-1", ha: true }
`)

	out, err := NewDriver().Compile(root, Config{})
	require.NoError(t, err)

	data, err := emit.JSON(out)
	require.NoError(t, err)

	testutil.AssertGoldenJSON(t, "pipeline", "compile_emit_stable", data)
}
