package eval

import (
	"fmt"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/value"
)

func (e *Evaluator) evalAssert(it *ast.AssertItem, env *Environment, path string) error {
	cond, err := e.EvalExpr(it.Cond, env, path)
	if err != nil {
		return err
	}
	if value.Truthy(cond) {
		return nil
	}
	free := map[string]string{}
	collectFreeVars(it.Cond, env, free)
	return herrors.NewAssertionFailed(it.Loc, render(it.Cond), free, it.Message)
}

// collectFreeVars walks a condition expression and records the current
// value of every variable it references, for the diagnostic shown
// alongside an AssertionFailed error.
func collectFreeVars(expr ast.Expr, env *Environment, out map[string]string) {
	switch ex := expr.(type) {
	case *ast.Ident:
		if v, ok := env.Get(ex.Name); ok {
			out[ex.Name] = v.Stringify()
		}
	case *ast.BinaryExpr:
		collectFreeVars(ex.Left, env, out)
		collectFreeVars(ex.Right, env, out)
	case *ast.UnaryExpr:
		collectFreeVars(ex.Expr, env, out)
	case *ast.TernaryExpr:
		collectFreeVars(ex.Cond, env, out)
		collectFreeVars(ex.Then, env, out)
		collectFreeVars(ex.Else, env, out)
	case *ast.FieldAccess:
		collectFreeVars(ex.Target, env, out)
	case *ast.IndexExpr:
		collectFreeVars(ex.Target, env, out)
		collectFreeVars(ex.Index, env, out)
	case *ast.CallExpr:
		for _, a := range ex.Args {
			collectFreeVars(a, env, out)
		}
	case *ast.StringLit:
		for _, part := range ex.Parts {
			if part.Interp != nil {
				collectFreeVars(part.Interp, env, out)
			}
		}
	case *ast.ArrayLit:
		for _, el := range ex.Elements {
			if plain, ok := el.(*ast.PlainElement); ok {
				collectFreeVars(plain.Expr, env, out)
			}
		}
	}
}

// render produces a best-effort surface rendering of expr for assertion
// and error messages; it is not a full pretty-printer.
func render(expr ast.Expr) string {
	switch ex := expr.(type) {
	case *ast.NullLit:
		return "null"
	case *ast.BoolLit:
		return fmt.Sprintf("%t", ex.Value)
	case *ast.IntLit:
		return fmt.Sprintf("%d", ex.Value)
	case *ast.FloatLit:
		return fmt.Sprintf("%g", ex.Value)
	case *ast.StringLit:
		return renderStringLit(ex)
	case *ast.Ident:
		return ex.Name
	case *ast.BinaryExpr:
		return render(ex.Left) + " " + ex.Op + " " + render(ex.Right)
	case *ast.UnaryExpr:
		return ex.Op + render(ex.Expr)
	case *ast.TernaryExpr:
		return render(ex.Cond) + " ? " + render(ex.Then) + " : " + render(ex.Else)
	case *ast.FieldAccess:
		return render(ex.Target) + "." + ex.Field
	case *ast.IndexExpr:
		return render(ex.Target) + "[" + render(ex.Index) + "]"
	case *ast.CallExpr:
		parts := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			parts[i] = render(a)
		}
		return ex.Callee + "(" + joinComma(parts) + ")"
	default:
		return "<expr>"
	}
}

func renderStringLit(lit *ast.StringLit) string {
	s := ""
	for _, part := range lit.Parts {
		if part.Interp != nil {
			s += "${" + render(part.Interp) + "}"
		} else {
			s += part.Literal
		}
	}
	return fmt.Sprintf("%q", s)
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
