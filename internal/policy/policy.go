// Package policy implements policy evaluation (§4.9): `policy` preamble
// declarations are checked once per compiled file, after type-checking,
// against the file's fully resolved output value. `deny` violations
// abort the compile; `warn` violations are collected as warnings.
package policy

import (
	"fmt"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/eval"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/value"
)

// Check evaluates every policy declared in decls against output, with
// base providing the file's own `let` bindings. It returns the warnings
// raised by `warn` policies; the first `deny` violation aborts with a
// PolicyDenied error. Nil decls or ignore==true are both no-ops.
func Check(decls []*ast.PolicyDecl, ev *eval.Evaluator, base *eval.Environment, output *value.Object, filename string, ignore bool) ([]herrors.Warning, error) {
	if ignore || len(decls) == 0 {
		return nil, nil
	}

	var warnings []herrors.Warning
	for _, decl := range decls {
		env := base.NewChild()
		env.Set("output", output)

		violated, cond, _, err := ev.EvaluatePolicy(decl, env)
		if err != nil {
			return warnings, err
		}
		if !violated {
			continue
		}

		message := decl.Message
		if message == "" {
			message = fmt.Sprintf("condition failed: %s", cond)
		}

		switch decl.Level {
		case ast.PolicyDeny:
			return warnings, herrors.NewPolicyDenied(decl.Loc, decl.Name, message)
		case ast.PolicyWarn:
			loc := decl.Loc
			warnings = append(warnings, herrors.Warning{
				Message: fmt.Sprintf("policy %q: %s", decl.Name, message),
				File:    filename,
				Span:    &loc,
			})
		}
	}
	return warnings, nil
}
