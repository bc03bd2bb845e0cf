package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/eval"
	"github.com/honelang/hone/internal/lexer"
	"github.com/honelang/hone/internal/parser"
)

func policyDecls(file *ast.File) []*ast.PolicyDecl {
	var out []*ast.PolicyDecl
	for _, item := range file.Preamble {
		if decl, ok := item.(*ast.PolicyDecl); ok {
			out = append(out, decl)
		}
	}
	return out
}

func TestCheckWarnPolicy(t *testing.T) {
	src := `policy min_replicas warn when output.replicas >= 3 { "replicas should be at least 3" }
replicas: 1`

	file, err := parser.Parse(lexer.Normalize([]byte(src)), "test.hone")
	require.NoError(t, err)

	ev := eval.NewEvaluator(nil, nil)
	output, err := ev.EvalFile(file, eval.NewEnvironment())
	require.NoError(t, err)

	warnings, err := Check(policyDecls(file), ev, eval.NewEnvironment(), output, "test.hone", false)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "min_replicas")
}

func TestCheckDenyPolicyAborts(t *testing.T) {
	src := `policy must_be_prod deny when output.env == "prod"
env: "dev"`

	file, err := parser.Parse(lexer.Normalize([]byte(src)), "test.hone")
	require.NoError(t, err)

	ev := eval.NewEvaluator(nil, nil)
	output, err := ev.EvalFile(file, eval.NewEnvironment())
	require.NoError(t, err)

	_, err = Check(policyDecls(file), ev, eval.NewEnvironment(), output, "test.hone", false)
	assert.Error(t, err)
}

func TestCheckIgnoredWhenDisabled(t *testing.T) {
	src := `policy always_fails deny when false
name: "svc"`

	file, err := parser.Parse(lexer.Normalize([]byte(src)), "test.hone")
	require.NoError(t, err)

	ev := eval.NewEvaluator(nil, nil)
	output, err := ev.EvalFile(file, eval.NewEnvironment())
	require.NoError(t, err)

	warnings, err := Check(policyDecls(file), ev, eval.NewEnvironment(), output, "test.hone", true)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
