// Package pipeline implements the compiler driver (§4.5): it resolves a
// root file's dependency closure, evaluates every file in topological
// order, injects imports, applies `from` inheritance, runs schema and
// policy checks, and returns the compiled value — grounded on the
// teacher's orchestration in internal/link's module-compilation flow
// and, for the domain semantics themselves, original_source's
// src/compiler/mod.rs.
package pipeline

import (
	"os"
	"strconv"

	"github.com/honelang/hone/internal/ast"
	"github.com/honelang/hone/internal/document"
	"github.com/honelang/hone/internal/eval"
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/lexer"
	"github.com/honelang/hone/internal/parser"
	"github.com/honelang/hone/internal/policy"
	"github.com/honelang/hone/internal/resolver"
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/types"
	"github.com/honelang/hone/internal/value"
)

// SecretsMode selects how secret placeholders are handled in the final
// output (§4.5.3).
type SecretsMode string

const (
	SecretsPlaceholder SecretsMode = "placeholder"
	SecretsError       SecretsMode = "error"
	SecretsEnv         SecretsMode = "env"
)

// Config is the compile-time configuration exposed at the value-level
// interface (§6.1).
type Config struct {
	Args            value.Value
	AllowEnv        bool
	Variants        map[string]string
	IgnorePolicies  bool
	SecretsMode     SecretsMode
}

// compiledFile is the memoized result of evaluating one dependency file:
// its output value and the values exported by its own `let` bindings.
type compiledFile struct {
	value   *value.Object
	exports map[string]value.Value
}

// Driver orchestrates resolution, evaluation, type checking, and policy
// checking for one compilation. Create a fresh Driver per compile_source
// invocation; Compile/CompileMulti on the same Driver share the schema
// registry and compiled-file memoization, per spec's single compile_*
// call contract.
type Driver struct {
	registry *types.Registry
	compiled map[string]*compiledFile
	warnings []herrors.Warning
	env      builtinEnv
}

// builtinEnv adapts Config.AllowEnv/the OS environment to builtins.Env.
type builtinEnv struct {
	allowEnv bool
}

func (e builtinEnv) AllowEnv() bool { return e.allowEnv }
func (e builtinEnv) LookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}
func (e builtinEnv) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

// NewDriver creates a Driver ready to compile.
func NewDriver() *Driver {
	return &Driver{
		registry: types.NewRegistry(),
		compiled: map[string]*compiledFile{},
	}
}

// Warnings returns every warning collected so far: `@unchecked` type
// skips and `warn`-level policy violations (§4.5 step 6).
func (d *Driver) Warnings() []herrors.Warning { return d.warnings }

// Compile resolves and evaluates rootPath, returning its value.
func (d *Driver) Compile(rootPath string, cfg Config) (*value.Object, error) {
	results, err := d.compileAll(rootPath, cfg)
	if err != nil {
		return nil, err
	}
	return results[0].Value, nil
}

// CompileMulti is Compile for a root file using `---name` documents,
// returning every document's (name?, Value) pair in source order.
func (d *Driver) CompileMulti(rootPath string, cfg Config) ([]document.Result, error) {
	return d.compileAll(rootPath, cfg)
}

// CompileSource compiles inline text directly: imports resolve relative
// to baseDir, and multi-document output is not supported (§6.1).
func (d *Driver) CompileSource(source, baseDir string, cfg Config) (*value.Object, error) {
	file, err := parser.Parse(lexer.Normalize([]byte(source)), "<stdin>")
	if err != nil {
		return nil, err
	}
	if err := d.registerDeclarations(file, "<stdin>"); err != nil {
		return nil, err
	}

	d.env = builtinEnv{allowEnv: cfg.AllowEnv}
	ev := eval.NewEvaluator(d.env, cfg.Variants)
	base := eval.NewEnvironment()
	if cfg.Args != nil {
		base.Set("args", cfg.Args)
	}

	obj, err := ev.EvalFile(file, base)
	if err != nil {
		return nil, err
	}

	if err := d.checkUse(file, obj, ev, "<stdin>"); err != nil {
		return nil, err
	}
	if err := d.checkPolicies(file, ev, base, obj, "<stdin>", cfg); err != nil {
		return nil, err
	}
	return d.applySecrets(obj, cfg)
}

// ValidateAgainstSchema re-parses path, collects its schemas into a
// fresh registry, and validates v against schemaName (§6.1).
func (d *Driver) ValidateAgainstSchema(path string, v value.Value, schemaName string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return herrors.NewIoError(err.Error())
	}
	file, err := parser.Parse(lexer.Normalize(src), path)
	if err != nil {
		return err
	}
	reg := types.NewRegistry()
	if err := registerInto(reg, file, path); err != nil {
		return err
	}
	checker := types.NewChecker(reg, nil, path)
	return checker.Check(v, types.Schema(schemaName), span.Location{}, "")
}

// compileAll resolves rootPath's dependency graph, compiles every
// non-root file (memoizing value+exports), then compiles the root
// honoring multi-document output.
func (d *Driver) compileAll(rootPath string, cfg Config) ([]document.Result, error) {
	graph, err := resolver.New().Resolve(rootPath)
	if err != nil {
		return nil, err
	}

	if err := d.registerGraphSchemas(graph); err != nil {
		return nil, err
	}

	d.env = builtinEnv{allowEnv: cfg.AllowEnv}
	order := graph.TopologicalOrder()

	for _, path := range order {
		if path == graph.Root {
			continue
		}
		if _, ok := d.compiled[path]; ok {
			continue
		}
		if err := d.compileDependency(graph, path, cfg); err != nil {
			return nil, err
		}
	}

	return d.compileRoot(graph, cfg)
}

// registerGraphSchemas walks every resolved file's preamble (and, for
// multi-document files, every document's preamble) for SchemaDecl/
// TypeAliasDecl, registering them into the driver's shared registry.
func (d *Driver) registerGraphSchemas(graph *resolver.Graph) error {
	for path, f := range graph.Files {
		if err := d.registerDeclarations(f.AST, path); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) registerDeclarations(file *ast.File, path string) error {
	if err := registerInto(d.registry, file, path); err != nil {
		return err
	}
	for _, doc := range file.Documents {
		for _, item := range doc.Preamble {
			if err := registerItem(d.registry, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func registerInto(reg *types.Registry, file *ast.File, _ string) error {
	for _, item := range file.Preamble {
		if err := registerItem(reg, item); err != nil {
			return err
		}
	}
	return nil
}

func registerItem(reg *types.Registry, item ast.PreambleItem) error {
	switch decl := item.(type) {
	case *ast.SchemaDecl:
		fields := make([]types.Field, len(decl.Fields))
		for i, f := range decl.Fields {
			fields[i] = types.Field{Name: f.Name, Type: f.Type, Optional: f.Optional}
		}
		def := types.SchemaDef{Name: decl.Name, Extends: decl.Extends, Fields: fields, Open: decl.Open}
		return reg.AddSchema(decl.Name, def, decl.Loc)
	case *ast.TypeAliasDecl:
		return reg.AddTypeAlias(decl.Name, decl.Type, decl.Loc)
	}
	return nil
}

// compileDependency evaluates a non-root file, binds imports from its
// own already-compiled dependencies, applies `from` inheritance, runs
// its `use` schema checks and policies, and memoizes the result.
func (d *Driver) compileDependency(graph *resolver.Graph, path string, cfg Config) error {
	f := graph.Files[path]
	ev := eval.NewEvaluator(d.env, cfg.Variants)
	base := eval.NewEnvironment()
	if cfg.Args != nil {
		base.Set("args", cfg.Args)
	}

	if err := d.injectImports(f.AST, f.Imports, base); err != nil {
		return err
	}

	obj, env, err := ev.EvalFileEnv(f.AST, base)
	if err != nil {
		return err
	}

	if f.FromTarget != "" {
		baseFile, ok := d.compiled[f.FromTarget]
		if !ok {
			return herrors.NewImportResolution(f.AST.Loc, "from target not yet compiled: "+f.FromTarget)
		}
		merged, err := value.MergeFrom(baseFile.value, obj, f.AST.Loc)
		if err != nil {
			return err
		}
		mergedObj, ok := merged.(*value.Object)
		if !ok {
			return herrors.NewTypeMismatch(f.AST.Loc, "", "object", merged.Kind().String())
		}
		obj = mergedObj
	}

	if err := d.checkUse(f.AST, obj, ev, path); err != nil {
		return err
	}
	if err := d.checkPolicies(f.AST, ev, base, obj, path, cfg); err != nil {
		return err
	}

	exports := map[string]value.Value{}
	for _, name := range eval.ExportedLetNames(f.AST) {
		if v, ok := env.Get(name); ok {
			exports[name] = v
		}
	}

	d.compiled[path] = &compiledFile{value: obj, exports: exports}
	return nil
}

// compileRoot evaluates the root file, honoring `---name` documents,
// and returns one Result per document (a single Result for a
// single-document file).
func (d *Driver) compileRoot(graph *resolver.Graph, cfg Config) ([]document.Result, error) {
	f := graph.Files[graph.Root]
	ev := eval.NewEvaluator(d.env, cfg.Variants)
	base := eval.NewEnvironment()
	if cfg.Args != nil {
		base.Set("args", cfg.Args)
	}
	if err := d.injectImports(f.AST, f.Imports, base); err != nil {
		return nil, err
	}

	fromResolver := driverBase{d}
	results, err := document.Evaluate(f.AST, ev, base, f.DocFromTargets, fromResolver)
	if err != nil {
		return nil, err
	}

	if f.FromTarget != "" && len(f.AST.Documents) == 0 {
		baseFile, ok := d.compiled[f.FromTarget]
		if !ok {
			return nil, herrors.NewImportResolution(f.AST.Loc, "from target not yet compiled: "+f.FromTarget)
		}
		merged, err := value.MergeFrom(baseFile.value, results[0].Value, f.AST.Loc)
		if err != nil {
			return nil, err
		}
		mergedObj, ok := merged.(*value.Object)
		if !ok {
			return nil, herrors.NewTypeMismatch(f.AST.Loc, "", "object", merged.Kind().String())
		}
		results[0].Value = mergedObj
	}

	for i := range results {
		if err := d.checkUse(f.AST, results[i].Value, ev, graph.Root); err != nil {
			return nil, err
		}
		if err := d.checkPolicies(f.AST, ev, base, results[i].Value, graph.Root, cfg); err != nil {
			return nil, err
		}
		secured, err := d.applySecrets(results[i].Value, cfg)
		if err != nil {
			return nil, err
		}
		results[i].Value = secured
	}
	return results, nil
}

// driverBase adapts Driver to document.Base for per-document `from`
// inheritance, reporting whether the resolved target is itself a
// multi-document file (disallowed as an inheritance base, §4.6).
type driverBase struct{ d *Driver }

func (b driverBase) Resolve(target string) (*value.Object, bool, bool) {
	cf, ok := b.d.compiled[target]
	if !ok {
		return nil, false, false
	}
	return cf.value, false, true
}

// injectImports binds each `import` in file's preamble to the already-
// compiled value of its resolved target, per §4.5.1.
func (d *Driver) injectImports(file *ast.File, resolvedImports []string, base *eval.Environment) error {
	idx := 0
	for _, item := range file.Preamble {
		imp, ok := item.(*ast.ImportDecl)
		if !ok {
			continue
		}
		if idx >= len(resolvedImports) {
			break
		}
		target := resolvedImports[idx]
		idx++

		compiled, ok := d.compiled[target]
		if !ok {
			return herrors.NewImportResolution(imp.Loc, "import target not yet compiled: "+target)
		}

		switch imp.Kind {
		case ast.ImportWhole:
			alias := imp.Alias
			if alias == "" {
				alias = stemName(target)
			}
			merged := value.NewObject()
			for k, v := range compiled.exports {
				merged.Set(k, v)
			}
			for _, k := range compiled.value.Keys() {
				if _, exists := merged.Get(k); !exists {
					v, _ := compiled.value.Get(k)
					merged.Set(k, v)
				}
			}
			base.Set(alias, merged)
		case ast.ImportNamed:
			for _, n := range imp.Names {
				local := n.Alias
				if local == "" {
					local = n.Name
				}
				if v, ok := compiled.exports[n.Name]; ok {
					base.Set(local, v)
					continue
				}
				if v, ok := compiled.value.Get(n.Name); ok {
					base.Set(local, v)
					continue
				}
				base.Set(local, value.Null{})
			}
		}
	}
	return nil
}

func stemName(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' || base[i] == '\\' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// checkUse runs type checking for every `use` declaration in file's
// preamble against v.
func (d *Driver) checkUse(file *ast.File, v *value.Object, ev *eval.Evaluator, path string) error {
	checker := types.NewChecker(d.registry, ev.Unchecked, path)
	for _, item := range file.Preamble {
		use, ok := item.(*ast.UseDecl)
		if !ok {
			continue
		}
		if err := checker.Check(v, types.Schema(use.SchemaName), use.Loc, ""); err != nil {
			return err
		}
	}
	d.warnings = append(d.warnings, checker.Warnings...)
	return nil
}

// checkPolicies runs §4.9 policy evaluation against v, unless disabled.
func (d *Driver) checkPolicies(file *ast.File, ev *eval.Evaluator, base *eval.Environment, v *value.Object, path string, cfg Config) error {
	var decls []*ast.PolicyDecl
	for _, item := range file.Preamble {
		if decl, ok := item.(*ast.PolicyDecl); ok {
			decls = append(decls, decl)
		}
	}
	warnings, err := policy.Check(decls, ev, base, v, path, cfg.IgnorePolicies)
	d.warnings = append(d.warnings, warnings...)
	return err
}

// applySecrets applies the driver's secrets mode to v (§4.5.3).
func (d *Driver) applySecrets(v *value.Object, cfg Config) (*value.Object, error) {
	switch cfg.SecretsMode {
	case SecretsError:
		paths := findSecretPlaceholders(v, "")
		if len(paths) > 0 {
			return nil, herrors.NewSecretInOutput(span.Location{}, paths)
		}
		return v, nil
	case SecretsEnv:
		if !cfg.AllowEnv {
			return nil, herrors.NewEnvNotAllowed(span.Location{}, "secrets=env")
		}
		resolved := resolveEnvSecrets(v)
		obj, _ := resolved.(*value.Object)
		return obj, nil
	default:
		return v, nil
	}
}

func findSecretPlaceholders(v value.Value, prefix string) []string {
	var found []string
	switch val := v.(type) {
	case value.String:
		if isSecretPlaceholder(string(val)) {
			if prefix == "" {
				found = append(found, string(val))
			} else {
				found = append(found, prefix)
			}
		}
	case *value.Object:
		for _, k := range val.Keys() {
			fv, _ := val.Get(k)
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			found = append(found, findSecretPlaceholders(fv, path)...)
		}
	case value.Array:
		for i, el := range val {
			path := prefix + "[" + strconv.Itoa(i) + "]"
			found = append(found, findSecretPlaceholders(el, path)...)
		}
	}
	return found
}

func resolveEnvSecrets(v value.Value) value.Value {
	switch val := v.(type) {
	case value.String:
		if name, ok := envSecretName(string(val)); ok {
			if resolved, found := os.LookupEnv(name); found {
				return value.String(resolved)
			}
			return val
		}
		return val
	case *value.Object:
		out := value.NewObject()
		for _, k := range val.Keys() {
			fv, _ := val.Get(k)
			out.Set(k, resolveEnvSecrets(fv))
		}
		return out
	case value.Array:
		out := make(value.Array, len(val))
		for i, el := range val {
			out[i] = resolveEnvSecrets(el)
		}
		return out
	default:
		return v
	}
}

func isSecretPlaceholder(s string) bool {
	return len(s) > len("<SECRET:")+1 && s[:len("<SECRET:")] == "<SECRET:" && s[len(s)-1] == '>'
}

func envSecretName(s string) (string, bool) {
	const prefix = "<SECRET:env:"
	if len(s) > len(prefix)+1 && s[:len(prefix)] == prefix && s[len(s)-1] == '>' {
		return s[len(prefix) : len(s)-1], true
	}
	return "", false
}
