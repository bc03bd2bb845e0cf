package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/builtins"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/value"
)

// EvalExpr evaluates e in env. path is the field path of the surrounding
// assignment, used only to scope recursion-depth bookkeeping.
func (e *Evaluator) EvalExpr(expr ast.Expr, env *Environment, path string) (value.Value, error) {
	if err := e.enter(expr.Location()); err != nil {
		return nil, err
	}
	defer e.leave()

	switch ex := expr.(type) {
	case *ast.NullLit:
		return value.Null{}, nil
	case *ast.BoolLit:
		return value.Bool(ex.Value), nil
	case *ast.IntLit:
		return value.Int(ex.Value), nil
	case *ast.FloatLit:
		return value.Float(ex.Value), nil
	case *ast.StringLit:
		return e.evalStringLit(ex, env, path)
	case *ast.Ident:
		v, ok := env.Get(ex.Name)
		if !ok {
			return nil, herrors.NewUndefinedVariable(ex.Loc, ex.Name, suggestNames(ex.Name, env.Names()))
		}
		return v, nil
	case *ast.BinaryExpr:
		return e.evalBinary(ex, env, path)
	case *ast.UnaryExpr:
		return e.evalUnary(ex, env, path)
	case *ast.TernaryExpr:
		cond, err := e.EvalExpr(ex.Cond, env, path)
		if err != nil {
			return nil, err
		}
		if value.Truthy(cond) {
			return e.EvalExpr(ex.Then, env, path)
		}
		return e.EvalExpr(ex.Else, env, path)
	case *ast.FieldAccess:
		target, err := e.EvalExpr(ex.Target, env, path)
		if err != nil {
			return nil, err
		}
		obj, ok := target.(*value.Object)
		if !ok {
			return nil, herrors.NewTypeMismatch(ex.Loc, path, "object", target.Kind().String())
		}
		if v, ok := obj.Get(ex.Field); ok {
			return v, nil
		}
		return value.Null{}, nil
	case *ast.IndexExpr:
		return e.evalIndex(ex, env, path)
	case *ast.CallExpr:
		return e.evalCall(ex, env, path)
	case *ast.ArrayLit:
		return e.evalArrayLit(ex, env, path)
	case *ast.ObjectLit:
		return e.EvalBody(ex.Body, env.NewChild(), path)
	default:
		return nil, fmt.Errorf("eval: unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalStringLit(lit *ast.StringLit, env *Environment, path string) (value.Value, error) {
	var b strings.Builder
	for _, part := range lit.Parts {
		if part.Interp == nil {
			b.WriteString(part.Literal)
			continue
		}
		v, err := e.EvalExpr(part.Interp, env, path)
		if err != nil {
			return nil, err
		}
		b.WriteString(v.Stringify())
	}
	return value.String(b.String()), nil
}

func (e *Evaluator) evalIndex(ex *ast.IndexExpr, env *Environment, path string) (value.Value, error) {
	target, err := e.EvalExpr(ex.Target, env, path)
	if err != nil {
		return nil, err
	}
	idx, err := e.EvalExpr(ex.Index, env, path)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case value.Array:
		i, ok := idx.(value.Int)
		if !ok {
			return nil, herrors.NewTypeMismatch(ex.Loc, path, "int", idx.Kind().String())
		}
		pos := int(i)
		if pos < 0 {
			pos += len(t)
		}
		if pos < 0 || pos >= len(t) {
			return nil, herrors.NewIndexOutOfBounds(ex.Loc, int(i), len(t))
		}
		return t[pos], nil
	case *value.Object:
		key, ok := idx.(value.String)
		if !ok {
			return nil, herrors.NewTypeMismatch(ex.Loc, path, "string", idx.Kind().String())
		}
		if v, ok := t.Get(string(key)); ok {
			return v, nil
		}
		return value.Null{}, nil
	default:
		return nil, herrors.NewTypeMismatch(ex.Loc, path, "array or object", target.Kind().String())
	}
}

func (e *Evaluator) evalCall(ex *ast.CallExpr, env *Environment, path string) (value.Value, error) {
	args := make([]value.Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := e.EvalExpr(a, env, path)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if !builtins.IsBuiltin(ex.Callee) {
		return nil, herrors.NewUnknownBuiltin(ex.Loc, ex.Callee)
	}
	return builtins.Call(ex.Callee, args, ex.Loc, e.BuiltinEnv)
}

func (e *Evaluator) evalArrayLit(ex *ast.ArrayLit, env *Environment, path string) (value.Value, error) {
	var out value.Array
	for _, elem := range ex.Elements {
		vals, err := e.evalArrayElement(elem, env, path)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}
	if out == nil {
		out = value.Array{}
	}
	return out, nil
}

func (e *Evaluator) evalArrayElement(elem ast.ArrayElement, env *Environment, path string) ([]value.Value, error) {
	switch el := elem.(type) {
	case *ast.PlainElement:
		v, err := e.EvalExpr(el.Expr, env, path)
		if err != nil {
			return nil, err
		}
		return []value.Value{v}, nil
	case *ast.SpreadElement:
		v, err := e.EvalExpr(el.Expr, env, path)
		if err != nil {
			return nil, err
		}
		arr, ok := v.(value.Array)
		if !ok {
			return nil, herrors.NewTypeMismatch(el.Loc, path, "array", v.Kind().String())
		}
		return arr, nil
	case *ast.ForElement:
		iterVal, err := e.EvalExpr(el.Iter, env, path)
		if err != nil {
			return nil, err
		}
		arr, ok := iterVal.(value.Array)
		if !ok {
			return nil, herrors.NewTypeMismatch(el.Loc, path, "array", iterVal.Kind().String())
		}
		var out []value.Value
		for _, item := range arr {
			child := env.NewChild()
			child.Set(el.Binding, item)
			for _, nested := range el.Body {
				vals, err := e.evalArrayElement(nested, child, path)
				if err != nil {
					return nil, err
				}
				out = append(out, vals...)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("eval: unhandled array element type %T", elem)
	}
}

func (e *Evaluator) evalUnary(ex *ast.UnaryExpr, env *Environment, path string) (value.Value, error) {
	v, err := e.EvalExpr(ex.Expr, env, path)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case "!":
		return value.Bool(!value.Truthy(v)), nil
	case "-":
		switch n := v.(type) {
		case value.Int:
			if n == math.MinInt64 {
				return nil, herrors.NewArithmeticOverflow(ex.Loc, "-")
			}
			return -n, nil
		case value.Float:
			return -n, nil
		default:
			return nil, herrors.NewTypeMismatch(ex.Loc, path, "int or float", v.Kind().String())
		}
	default:
		return nil, fmt.Errorf("eval: unknown unary operator %q", ex.Op)
	}
}

func (e *Evaluator) evalBinary(ex *ast.BinaryExpr, env *Environment, path string) (value.Value, error) {
	switch ex.Op {
	case "&&":
		l, err := e.EvalExpr(ex.Left, env, path)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(l) {
			return value.Bool(false), nil
		}
		r, err := e.EvalExpr(ex.Right, env, path)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Truthy(r)), nil
	case "||":
		l, err := e.EvalExpr(ex.Left, env, path)
		if err != nil {
			return nil, err
		}
		if value.Truthy(l) {
			return value.Bool(true), nil
		}
		r, err := e.EvalExpr(ex.Right, env, path)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Truthy(r)), nil
	case "??":
		l, err := e.EvalExpr(ex.Left, env, path)
		if err != nil {
			return nil, err
		}
		if _, isNull := l.(value.Null); !isNull {
			return l, nil
		}
		return e.EvalExpr(ex.Right, env, path)
	}

	l, err := e.EvalExpr(ex.Left, env, path)
	if err != nil {
		return nil, err
	}
	r, err := e.EvalExpr(ex.Right, env, path)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "+", "-", "*", "/", "%":
		return e.evalArith(ex.Op, l, r, ex.Loc, path)
	case "<", "<=", ">", ">=":
		return e.evalCompare(ex.Op, l, r, ex.Loc, path)
	default:
		return nil, fmt.Errorf("eval: unknown binary operator %q", ex.Op)
	}
}

func (e *Evaluator) evalArith(op string, l, r value.Value, loc span.Location, path string) (value.Value, error) {
	if op == "+" {
		if ls, ok := l.(value.String); ok {
			if rs, ok := r.(value.String); ok {
				return ls + rs, nil
			}
		}
	}

	li, lIsInt := l.(value.Int)
	ri, rIsInt := r.(value.Int)
	if lIsInt && rIsInt {
		return intArith(op, int64(li), int64(ri), loc)
	}

	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if !lok || !rok {
		bad := l
		if lok {
			bad = r
		}
		return nil, herrors.NewTypeMismatch(loc, path, "number", bad.Kind().String())
	}
	return floatArith(op, lf, rf, loc)
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true
	case value.Float:
		return float64(n), true
	default:
		return 0, false
	}
}

func intArith(op string, l, r int64, loc span.Location) (value.Value, error) {
	switch op {
	case "+":
		sum := l + r
		if (r > 0 && sum < l) || (r < 0 && sum > l) {
			return nil, herrors.NewArithmeticOverflow(loc, "+")
		}
		return value.Int(sum), nil
	case "-":
		diff := l - r
		if (r < 0 && diff < l) || (r > 0 && diff > l) {
			return nil, herrors.NewArithmeticOverflow(loc, "-")
		}
		return value.Int(diff), nil
	case "*":
		if l == 0 || r == 0 {
			return value.Int(0), nil
		}
		prod := l * r
		if prod/r != l {
			return nil, herrors.NewArithmeticOverflow(loc, "*")
		}
		return value.Int(prod), nil
	case "/":
		if r == 0 {
			return nil, herrors.NewDivisionByZero(loc)
		}
		return value.Int(l / r), nil
	case "%":
		if r == 0 {
			return nil, herrors.NewDivisionByZero(loc)
		}
		return value.Int(l % r), nil
	default:
		return nil, fmt.Errorf("eval: unknown arithmetic operator %q", op)
	}
}

func floatArith(op string, l, r float64, loc span.Location) (value.Value, error) {
	switch op {
	case "+":
		return value.Float(l + r), nil
	case "-":
		return value.Float(l - r), nil
	case "*":
		return value.Float(l * r), nil
	case "/":
		if r == 0 {
			return nil, herrors.NewDivisionByZero(loc)
		}
		return value.Float(l / r), nil
	case "%":
		if r == 0 {
			return nil, herrors.NewDivisionByZero(loc)
		}
		return value.Float(math.Mod(l, r)), nil
	default:
		return nil, fmt.Errorf("eval: unknown arithmetic operator %q", op)
	}
}

func (e *Evaluator) evalCompare(op string, l, r value.Value, loc span.Location, path string) (value.Value, error) {
	if ls, ok := l.(value.String); ok {
		rs, ok := r.(value.String)
		if !ok {
			return nil, herrors.NewTypeMismatch(loc, path, "string", r.Kind().String())
		}
		return value.Bool(compareOrdered(op, strings.Compare(string(ls), string(rs)))), nil
	}
	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if !lok || !rok {
		bad := l
		if lok {
			bad = r
		}
		return nil, herrors.NewTypeMismatch(loc, path, "number or string", bad.Kind().String())
	}
	cmp := 0
	switch {
	case lf < rf:
		cmp = -1
	case lf > rf:
		cmp = 1
	}
	return value.Bool(compareOrdered(op, cmp)), nil
}

func compareOrdered(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}
