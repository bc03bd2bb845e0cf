// Package builtins implements the deterministic function library exposed
// to hone expressions (§4.2.6): string/number/array/object helpers plus
// the two hermetic-breaking functions, env() and file(), which are
// rejected unless the evaluator was configured with allow_env.
package builtins

// BuiltinMeta holds metadata about a builtin function. It carries no
// dependency on internal/value or internal/eval so callers that only
// need to validate a call site (arity, purity) don't pull in the
// evaluator.
type BuiltinMeta struct {
	Name    string
	MinArgs int
	MaxArgs int // equal to MinArgs unless the builtin takes optional args
	IsPure  bool
}

// Registry holds metadata for every registered builtin function.
var Registry = make(map[string]*BuiltinMeta)

func init() {
	registerStringMeta()
	registerNumberMeta()
	registerCollectionMeta()
	registerHermeticMeta()
}

func register(name string, min, max int, pure bool) {
	Registry[name] = &BuiltinMeta{Name: name, MinArgs: min, MaxArgs: max, IsPure: pure}
}

func registerStringMeta() {
	register("length", 1, 1, true)
	register("upper", 1, 1, true)
	register("lower", 1, 1, true)
	register("trim", 1, 1, true)
	register("trim_prefix", 2, 2, true)
	register("trim_suffix", 2, 2, true)
	register("split", 2, 2, true)
	register("join", 2, 2, true)
	register("contains", 2, 2, true)
	register("starts_with", 2, 2, true)
	register("ends_with", 2, 2, true)
	register("replace", 3, 3, true)
	register("repeat", 2, 2, true)
	register("to_string", 1, 1, true)
}

func registerNumberMeta() {
	register("to_int", 1, 1, true)
	register("to_float", 1, 1, true)
	register("abs", 1, 1, true)
	register("min", 2, 2, true)
	register("max", 2, 2, true)
	register("round", 1, 1, true)
	register("floor", 1, 1, true)
	register("ceil", 1, 1, true)
}

func registerCollectionMeta() {
	register("keys", 1, 1, true)
	register("has", 2, 2, true)
	register("reverse", 1, 1, true)
	register("first", 1, 1, true)
	register("last", 1, 1, true)
}

func registerHermeticMeta() {
	register("env", 1, 2, false)
	register("file", 1, 1, false)
}

// IsBuiltin reports whether name is a registered builtin.
func IsBuiltin(name string) bool {
	_, ok := Registry[name]
	return ok
}

// Names returns every registered builtin name.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}

// CheckArity validates argc against a builtin's declared arity.
func CheckArity(name string, argc int) bool {
	meta, ok := Registry[name]
	if !ok {
		return false
	}
	return argc >= meta.MinArgs && argc <= meta.MaxArgs
}
