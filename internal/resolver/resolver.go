// Package resolver implements the import resolver (§4.1): it turns a
// root source file into a reproducible, cycle-checked dependency DAG and
// a deterministic topological evaluation order, following the teacher's
// internal/module.Loader cache/load-stack discipline.
package resolver

import (
	"os"
	"path/filepath"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/lexer"
	"github.com/honelang/hone/internal/parser"
)

// state is a file's position in the resolver's per-file state machine
// (§4.8): Unseen -> Parsing -> Parsed -> InDFS -> Done. Re-entering InDFS
// is a cycle.
type state int

const (
	stateUnseen state = iota
	stateParsing
	stateParsed
	stateInDFS
	stateDone
)

// File is one node of the resolved dependency graph: a parsed source
// file at its canonical path, together with the canonical paths of its
// `from` target (at most one) and its `import` targets, in the textual
// order their statements appeared.
type File struct {
	Path string
	AST  *ast.File

	FromTarget string // canonical path, empty if no `from`
	Imports    []string

	// DocFromTargets holds the canonical `from` target declared in each
	// document's own preamble (§4.6), aligned by index with AST.Documents;
	// empty string means that document declares no `from`.
	DocFromTargets []string

	// depsOrder lists FromTarget, Imports, and every document's own
	// dependency in the textual order their statements appeared, for
	// deterministic topological emission.
	depsOrder []string
}

// Graph is a fully resolved dependency DAG rooted at one file.
type Graph struct {
	Root  string
	Files map[string]*File
}

// Resolver loads and canonicalizes files, detecting cycles via DFS over
// the Unseen/Parsing/Parsed/InDFS/Done state machine, and caches parsed
// files by canonical path so a diamond-shaped import graph parses each
// file exactly once.
type Resolver struct {
	cache  map[string]*File
	states map[string]state

	// stack is the current DFS chain of canonical paths, used to report
	// the exact cycle (from its entry point to its recurrence) when a
	// file already InDFS is visited again.
	stack []string
}

// New creates an empty Resolver.
func New() *Resolver {
	return &Resolver{
		cache:  map[string]*File{},
		states: map[string]state{},
	}
}

// Resolve parses rootPath and every file it transitively depends on via
// `from`/`import`, returning the dependency graph. Call TopologicalOrder
// on the result to get the evaluation order.
func (r *Resolver) Resolve(rootPath string) (*Graph, error) {
	root, err := canonicalize(rootPath)
	if err != nil {
		return nil, err
	}
	if err := r.load(root, nil); err != nil {
		return nil, err
	}
	return &Graph{Root: root, Files: r.cache}, nil
}

// load parses path (if not already cached), records its dependencies,
// and recurses into them. loc is the location of the statement that
// referenced path, used for diagnostics; it is nil for the root file.
func (r *Resolver) load(path string, loc *ast.Location) error {
	switch r.states[path] {
	case stateDone:
		return nil
	case stateInDFS, stateParsing:
		return herrors.NewCircularImport(locOrZero(loc), r.cycleChain(path))
	}

	r.states[path] = stateParsing
	r.stack = append(r.stack, path)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		if loc != nil {
			return herrors.NewImportNotFound(*loc, path)
		}
		return herrors.NewIoError(err.Error())
	}

	file, err := parser.Parse(lexer.Normalize(src), path)
	if err != nil {
		return err
	}
	r.states[path] = stateParsed

	resolved := &File{Path: path, AST: file}
	r.cache[path] = resolved

	r.states[path] = stateInDFS

	var fromLoc ast.Location
	haveFrom := false
	for _, item := range file.Preamble {
		switch decl := item.(type) {
		case *ast.FromDecl:
			if haveFrom {
				return herrors.NewMultipleFrom(decl.Loc, fromLoc)
			}
			target, err := r.resolveDep(path, decl.Path, decl.Loc)
			if err != nil {
				return err
			}
			resolved.FromTarget = target
			fromLoc = decl.Loc
			haveFrom = true
			resolved.depsOrder = append(resolved.depsOrder, target)
			l := decl.Loc
			if err := r.load(target, &l); err != nil {
				return err
			}
		case *ast.ImportDecl:
			target, err := r.resolveDep(path, decl.Path, decl.Loc)
			if err != nil {
				return err
			}
			resolved.Imports = append(resolved.Imports, target)
			resolved.depsOrder = append(resolved.depsOrder, target)
			l := decl.Loc
			if err := r.load(target, &l); err != nil {
				return err
			}
		}
	}

	if len(file.Documents) > 0 {
		resolved.DocFromTargets = make([]string, len(file.Documents))
		for i, doc := range file.Documents {
			for _, item := range doc.Preamble {
				switch decl := item.(type) {
				case *ast.FromDecl:
					target, err := r.resolveDep(path, decl.Path, decl.Loc)
					if err != nil {
						return err
					}
					resolved.DocFromTargets[i] = target
					resolved.depsOrder = append(resolved.depsOrder, target)
					l := decl.Loc
					if err := r.load(target, &l); err != nil {
						return err
					}
				case *ast.ImportDecl:
					target, err := r.resolveDep(path, decl.Path, decl.Loc)
					if err != nil {
						return err
					}
					resolved.Imports = append(resolved.Imports, target)
					resolved.depsOrder = append(resolved.depsOrder, target)
					l := decl.Loc
					if err := r.load(target, &l); err != nil {
						return err
					}
				}
			}
		}
	}

	r.states[path] = stateDone
	return nil
}

// resolveDep canonicalizes importPath relative to the directory of the
// file containing the statement at loc.
func (r *Resolver) resolveDep(fromFile, importPath string, loc ast.Location) (string, error) {
	dir := filepath.Dir(fromFile)
	joined := filepath.Join(dir, importPath)
	abs, err := canonicalize(joined)
	if err != nil {
		return "", herrors.NewImportNotFound(loc, importPath)
	}
	return abs, nil
}

// cycleChain returns the chain from the point path first entered the
// current DFS stack to its recurrence, inclusive.
func (r *Resolver) cycleChain(path string) []string {
	for i, p := range r.stack {
		if p == path {
			chain := append([]string{}, r.stack[i:]...)
			return append(chain, path)
		}
	}
	return append(append([]string{}, r.stack...), path)
}

// canonicalize resolves path to an absolute, symlink-free form, which is
// the identity used throughout compilation (§4.1).
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", herrors.NewIoError(err.Error())
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", herrors.NewIoError(err.Error())
	}
	return resolved, nil
}

func locOrZero(loc *ast.Location) ast.Location {
	if loc == nil {
		return ast.Location{}
	}
	return *loc
}
