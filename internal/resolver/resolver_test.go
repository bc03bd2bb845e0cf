package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.hone", `name: "svc"`)

	graph, err := New().Resolve(root)
	require.NoError(t, err)
	order := graph.TopologicalOrder()
	require.Len(t, order, 1)
	assert.Equal(t, graph.Root, order[0])
}

func TestResolveImportOrdering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hone", `let x = 1`)
	writeFile(t, dir, "b.hone", `let y = 2`)
	root := writeFile(t, dir, "root.hone", `import "a.hone" as A
import "b.hone" as B
name: "svc"`)

	graph, err := New().Resolve(root)
	require.NoError(t, err)
	order := graph.TopologicalOrder()
	require.Len(t, order, 3)
	assert.Equal(t, filepath.Join(dir, "a.hone"), order[0])
	assert.Equal(t, filepath.Join(dir, "b.hone"), order[1])
	assert.Equal(t, root, order[2])
}

func TestResolveDiamondImportsOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.hone", `let v = 1`)
	writeFile(t, dir, "a.hone", `import "shared.hone" as S`)
	writeFile(t, dir, "b.hone", `import "shared.hone" as S`)
	root := writeFile(t, dir, "root.hone", `import "a.hone" as A
import "b.hone" as B`)

	graph, err := New().Resolve(root)
	require.NoError(t, err)
	order := graph.TopologicalOrder()
	assert.Len(t, order, 4)

	seen := map[string]int{}
	for _, p := range order {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equalf(t, 1, n, "file %s appeared %d times", p, n)
	}
}

func TestResolveCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hone", `import "b.hone" as B`)
	writeFile(t, dir, "b.hone", `import "a.hone" as A`)
	root := filepath.Join(dir, "a.hone")

	_, err := New().Resolve(root)
	assert.Error(t, err)
}

func TestResolveFromTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.hone", `region: "us"`)
	root := writeFile(t, dir, "root.hone", `from "base.hone"
name: "svc"`)

	graph, err := New().Resolve(root)
	require.NoError(t, err)
	rootFile := graph.File(root)
	require.NotNil(t, rootFile)
	assert.Equal(t, filepath.Join(dir, "base.hone"), rootFile.FromTarget)
}

func TestResolveImportNotFound(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.hone", `import "missing.hone" as M`)

	_, err := New().Resolve(root)
	assert.Error(t, err)
}

func TestResolveMultipleFromRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base1.hone", `a: 1`)
	writeFile(t, dir, "base2.hone", `b: 2`)
	root := writeFile(t, dir, "root.hone", `from "base1.hone"
from "base2.hone"`)

	_, err := New().Resolve(root)
	assert.Error(t, err)
}
