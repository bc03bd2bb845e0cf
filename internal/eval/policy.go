package eval

import (
	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/value"
)

// EvaluatePolicy evaluates a policy condition against env (which should
// already bind `output` to the compiled value, per §4.9) and reports
// whether it was violated (i.e. the condition was falsy), along with a
// rendering of the condition and its free variables for diagnostics —
// the same shape `assert` failures report.
func (e *Evaluator) EvaluatePolicy(decl *ast.PolicyDecl, env *Environment) (violated bool, rendered string, free map[string]string, err error) {
	cond, err := e.EvalExpr(decl.Cond, env, "")
	if err != nil {
		return false, "", nil, err
	}
	if value.Truthy(cond) {
		return false, "", nil, nil
	}
	free = map[string]string{}
	collectFreeVars(decl.Cond, env, free)
	return true, render(decl.Cond), free, nil
}
