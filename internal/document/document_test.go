package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/eval"
	"github.com/honelang/hone/internal/lexer"
	"github.com/honelang/hone/internal/parser"
	"github.com/honelang/hone/internal/value"
)

func TestEvaluateSingleDocument(t *testing.T) {
	file, err := parser.Parse(lexer.Normalize([]byte(`name: "svc"`)), "test.hone")
	require.NoError(t, err)

	ev := eval.NewEvaluator(nil, nil)
	results, err := Evaluate(file, ev, eval.NewEnvironment(), nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].HasName)
	name, _ := results[0].Value.Get("name")
	assert.Equal(t, value.String("svc"), name)
}

func TestEvaluateMultiDocumentSharedPreamble(t *testing.T) {
	src := `let tier = "gold"
---web
name: "web-${tier}"
---worker
name: "worker-${tier}"`
	file, err := parser.Parse(lexer.Normalize([]byte(src)), "test.hone")
	require.NoError(t, err)
	require.Len(t, file.Documents, 2)

	ev := eval.NewEvaluator(nil, nil)
	results, err := Evaluate(file, ev, eval.NewEnvironment(), nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "web", results[0].Name)
	n0, _ := results[0].Value.Get("name")
	assert.Equal(t, value.String("web-gold"), n0)

	assert.Equal(t, "worker", results[1].Name)
	n1, _ := results[1].Value.Get("name")
	assert.Equal(t, value.String("worker-gold"), n1)
}

func TestEvaluateRejectsFromInSharedPreamble(t *testing.T) {
	src := `from "base.hone"
---web
name: "web"`
	file, err := parser.Parse(lexer.Normalize([]byte(src)), "test.hone")
	require.NoError(t, err)

	ev := eval.NewEvaluator(nil, nil)
	_, err = Evaluate(file, ev, eval.NewEnvironment(), nil, nil)
	assert.Error(t, err)
}
