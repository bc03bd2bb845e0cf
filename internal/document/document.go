// Package document implements the multi-document pipeline (§4.6): a
// source file with `---name` separators evaluates each document
// independently, its own preamble layered over the file's shared
// preamble, with schemas visible to every document and `from`
// inheritance restricted to single-document bases.
package document

import (
	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/eval"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/value"
)

// Result is one compiled document: Name/HasName mirror ast.Document,
// empty Name meaning an unnamed document.
type Result struct {
	Name    string
	HasName bool
	Value   *value.Object
}

// Base resolves a `from` target to its previously compiled value, for
// document-level inheritance. MultiDoc reports whether that target is
// itself a multi-document file, which §4.6 disallows inheriting from.
type Base interface {
	Resolve(canonicalTarget string) (value *value.Object, multiDoc bool, ok bool)
}

// Evaluate compiles file. For a single-document file it returns one
// Result built from EvalFile directly. For a multi-document file it
// evaluates every document against the shared preamble plus its own,
// applying `from` inheritance (§4.5.2) scoped to that document only.
// docFromTargets holds the canonical `from` target per document, as
// resolved by internal/resolver (empty string means no `from`).
func Evaluate(file *ast.File, ev *eval.Evaluator, base *eval.Environment, docFromTargets []string, fromBase Base) ([]Result, error) {
	if len(file.Documents) == 0 {
		v, err := ev.EvalFile(file, base)
		if err != nil {
			return nil, err
		}
		return []Result{{Value: v}}, nil
	}

	if err := rejectSharedFrom(file); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(file.Documents))
	for i, doc := range file.Documents {
		synthetic := &ast.File{
			Preamble: append(append([]ast.PreambleItem{}, file.Preamble...), doc.Preamble...),
			Body:     doc.Body,
			Loc:      doc.Loc,
		}
		v, err := ev.EvalFile(synthetic, base)
		if err != nil {
			return nil, err
		}

		if i < len(docFromTargets) && docFromTargets[i] != "" {
			target := docFromTargets[i]
			baseValue, multiDoc, ok := fromBase.Resolve(target)
			if !ok {
				return nil, herrors.NewImportResolution(doc.Loc, "from target not compiled: "+target)
			}
			if multiDoc {
				return nil, herrors.NewInheritFromMultiDoc(doc.Loc, target)
			}
			merged, err := value.MergeFrom(baseValue, v, doc.Loc)
			if err != nil {
				return nil, err
			}
			obj, ok := merged.(*value.Object)
			if !ok {
				return nil, herrors.NewTypeMismatch(doc.Loc, doc.Name, "object", merged.Kind().String())
			}
			v = obj
		}

		results = append(results, Result{Name: doc.Name, HasName: doc.HasName, Value: v})
	}
	return results, nil
}

// rejectSharedFrom enforces that a multi-document file's shared preamble
// declares no `from` — only individual documents may (§4.6).
func rejectSharedFrom(file *ast.File) error {
	for _, item := range file.Preamble {
		if fd, ok := item.(*ast.FromDecl); ok {
			return herrors.NewFromInPreamble(fd.Loc)
		}
	}
	return nil
}
