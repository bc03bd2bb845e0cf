// Package eval implements the evaluator (§4.2): it turns an ast.File into
// a runtime Value by walking the preamble and body, honoring scoping
// rules, merge strategies, variant selection, and hermeticity.
package eval

import (
	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/builtins"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/value"
)

const defaultMaxRecursionDepth = 256

// Evaluator walks a parsed file and produces its output Value, collecting
// the `@unchecked` paths and warnings the type checker needs afterward.
type Evaluator struct {
	BuiltinEnv        builtins.Env
	VariantSelections map[string]string // variant name -> selected case
	MaxRecursionDepth int

	depth     int
	Unchecked map[string]bool
	Warnings  []herrors.Warning
}

func NewEvaluator(builtinEnv builtins.Env, selections map[string]string) *Evaluator {
	if selections == nil {
		selections = map[string]string{}
	}
	return &Evaluator{
		BuiltinEnv:        builtinEnv,
		VariantSelections: selections,
		MaxRecursionDepth: defaultMaxRecursionDepth,
		Unchecked:         map[string]bool{},
	}
}

func (e *Evaluator) enter(loc span.Location) error {
	e.depth++
	if e.depth > e.MaxRecursionDepth {
		return herrors.NewRecursionLimitExceeded(loc, e.MaxRecursionDepth)
	}
	return nil
}

func (e *Evaluator) leave() { e.depth-- }

// EvalFile evaluates a file's preamble (let/secret bindings, variant case
// injection) followed by its body, returning the resulting object.
func (e *Evaluator) EvalFile(file *ast.File, base *Environment) (*value.Object, error) {
	v, _, err := e.EvalFileEnv(file, base)
	return v, err
}

// EvalFileEnv is EvalFile but also returns the preamble scope, so a
// caller (the pipeline driver) can recover the values exported by the
// file's own `let` bindings for importers (§4.5.1).
func (e *Evaluator) EvalFileEnv(file *ast.File, base *Environment) (*value.Object, *Environment, error) {
	env := base.NewChild()
	injected, err := e.evalPreamble(file.Preamble, env)
	if err != nil {
		return nil, nil, err
	}
	body := append(injected, file.Body...)
	obj, err := e.evalBody(body, env, "", true)
	if err != nil {
		return nil, nil, err
	}
	return obj, env, nil
}

// ExportedLetNames returns the names bound by `let` declarations in
// file's preamble, in declaration order — these are exported to
// importers (§4.2, §4.5.1).
func ExportedLetNames(file *ast.File) []string {
	var names []string
	for _, item := range file.Preamble {
		if decl, ok := item.(*ast.LetDecl); ok {
			names = append(names, decl.Name)
		}
	}
	return names
}

// evalPreamble binds `let`/`secret` declarations into env and returns any
// body items injected by a selected variant case, in declaration order.
func (e *Evaluator) evalPreamble(items []ast.PreambleItem, env *Environment) ([]ast.BodyItem, error) {
	var injected []ast.BodyItem
	for _, item := range items {
		switch it := item.(type) {
		case *ast.LetDecl:
			v, err := e.EvalExpr(it.Expr, env, "")
			if err != nil {
				return nil, err
			}
			env.Set(it.Name, v)
		case *ast.SecretDecl:
			env.Set(it.Name, value.String("<SECRET:"+it.Provider+">"))
		case *ast.VariantDecl:
			selected, err := e.selectVariantCase(it)
			if err != nil {
				return nil, err
			}
			injected = append(injected, selected.Body...)
		default:
			// Schema/TypeAlias/Use/Import/From are structural
			// declarations consumed by the registry/resolver/pipeline,
			// not by the evaluator. Expect is parsed but intentionally
			// inert (§4.9.1, DESIGN.md) — same boundary as upstream.
		}
	}
	return injected, nil
}

func (e *Evaluator) selectVariantCase(decl *ast.VariantDecl) (*ast.VariantCase, error) {
	if name, ok := e.VariantSelections[decl.Name]; ok {
		for i := range decl.Cases {
			if decl.Cases[i].Name == name {
				return &decl.Cases[i], nil
			}
		}
	}
	for i := range decl.Cases {
		if decl.Cases[i].IsDefault {
			return &decl.Cases[i], nil
		}
	}
	return nil, herrors.NewNoVariantSelection(decl.Loc, decl.Name)
}

// EvalBody evaluates body items in order against a fresh result object,
// per the merge table in §4.2.3. path is the dotted field path of the
// object being built (empty at the file root), used for `@unchecked`
// bookkeeping and diagnostics. Every caller of EvalBody is building a
// nested object (a `schema`-typed block or an object literal), never the
// file's own top-level body, so `for` is always permitted here — see
// evalBody/evalBodyInto for the file-root case, which forbids it
// (§4.2.3, E0404).
func (e *Evaluator) EvalBody(items []ast.BodyItem, env *Environment, path string) (*value.Object, error) {
	return e.evalBody(items, env, path, false)
}

func (e *Evaluator) evalBody(items []ast.BodyItem, env *Environment, path string, topLevel bool) (*value.Object, error) {
	result := value.NewObject()
	if err := e.evalBodyInto(items, env, path, topLevel, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Evaluator) evalBodyInto(items []ast.BodyItem, env *Environment, path string, topLevel bool, result *value.Object) error {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.KeyValueItem:
			if err := e.evalKeyValue(it.Key.Name, it.Op, it.Value, it.Unchecked, it.Loc, env, path, result); err != nil {
				return err
			}
		case *ast.Block:
			child, err := e.evalBody(it.Body, env, joinPath(path, it.Name.Name), false)
			if err != nil {
				return err
			}
			if err := e.mergeInto(result, it.Name.Name, child, value.Normal, it.Loc); err != nil {
				return err
			}
		case *ast.WhenItem:
			cond, err := e.EvalExpr(it.Cond, env, path)
			if err != nil {
				return err
			}
			if value.Truthy(cond) {
				if err := e.evalBodyInto(it.Body, env.NewChild(), path, topLevel, result); err != nil {
					return err
				}
			} else if it.Else != nil {
				if err := e.evalBodyInto(it.Else, env.NewChild(), path, topLevel, result); err != nil {
					return err
				}
			}
		case *ast.ForItem:
			if topLevel {
				return herrors.NewForAtTopLevel(it.Loc)
			}
			iterVal, err := e.EvalExpr(it.Iter, env, path)
			if err != nil {
				return err
			}
			arr, ok := iterVal.(value.Array)
			if !ok {
				return herrors.NewTypeMismatch(it.Loc, path, "array", iterVal.Kind().String())
			}
			for _, elem := range arr {
				child := env.NewChild()
				child.Set(it.Binding, elem)
				if err := e.evalBodyInto(it.Body, child, path, topLevel, result); err != nil {
					return err
				}
			}
		case *ast.AssertItem:
			if err := e.evalAssert(it, env, path); err != nil {
				return err
			}
		case *ast.LetItem:
			v, err := e.EvalExpr(it.Expr, env, path)
			if err != nil {
				return err
			}
			env.Set(it.Name, v)
		case *ast.SpreadItem:
			v, err := e.EvalExpr(it.Expr, env, path)
			if err != nil {
				return err
			}
			obj, ok := v.(*value.Object)
			if !ok {
				return herrors.NewTypeMismatch(it.Loc, path, "object", v.Kind().String())
			}
			for _, k := range obj.Keys() {
				fv, _ := obj.Get(k)
				if err := e.mergeInto(result, k, fv, value.Normal, it.Loc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Evaluator) evalKeyValue(key string, op ast.AssignOp, valueExpr ast.Expr, unchecked bool, loc span.Location, env *Environment, path string, result *value.Object) error {
	fieldPath := joinPath(path, key)
	v, err := e.EvalExpr(valueExpr, env, fieldPath)
	if err != nil {
		return err
	}
	if unchecked {
		e.Unchecked[fieldPath] = true
	}
	strategy := value.Normal
	switch op {
	case ast.AssignAppend:
		strategy = value.Append
	case ast.AssignReplace:
		strategy = value.Replace
	}
	return e.mergeInto(result, key, v, strategy, loc)
}

func (e *Evaluator) mergeInto(result *value.Object, key string, overlay value.Value, strategy value.Strategy, loc span.Location) error {
	base, ok := result.Get(key)
	if !ok {
		base = value.Null{}
	}
	merged, err := value.Merge(base, overlay, strategy, key, loc)
	if err != nil {
		return err
	}
	result.Set(key, merged)
	return nil
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
