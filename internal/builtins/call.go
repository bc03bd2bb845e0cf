package builtins

import (
	"fmt"
	"strings"

	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/value"
)

// Env supplies the hermetic-breaking capabilities env() and file() need.
// The evaluator is the only caller expected to implement this; it gates
// AllowEnv on the compile configuration (§4.2.6).
type Env interface {
	AllowEnv() bool
	LookupEnv(name string) (string, bool)
	ReadFile(path string) (string, error)
}

// Call dispatches a builtin function call by name. loc is used to
// attach source position to any error raised.
func Call(name string, args []value.Value, loc span.Location, env Env) (value.Value, error) {
	if !CheckArity(name, len(args)) {
		return nil, herrors.NewUnknownBuiltin(loc, name)
	}
	switch name {
	case "length":
		return builtinLength(args[0], loc)
	case "upper":
		return builtinUpper(args[0], loc)
	case "lower":
		return builtinLower(args[0], loc)
	case "trim":
		return builtinTrim(args[0], loc)
	case "trim_prefix":
		return builtinTrimPrefix(args[0], args[1], loc)
	case "trim_suffix":
		return builtinTrimSuffix(args[0], args[1], loc)
	case "split":
		return builtinSplit(args[0], args[1], loc)
	case "join":
		return builtinJoin(args[0], args[1], loc)
	case "contains":
		return builtinContains(args[0], args[1], loc)
	case "starts_with":
		return builtinStartsWith(args[0], args[1], loc)
	case "ends_with":
		return builtinEndsWith(args[0], args[1], loc)
	case "replace":
		return builtinReplace(args[0], args[1], args[2], loc)
	case "repeat":
		return builtinRepeat(args[0], args[1], loc)
	case "to_string":
		return value.String(args[0].Stringify()), nil
	case "to_int":
		return builtinToInt(args[0], loc)
	case "to_float":
		return builtinToFloat(args[0], loc)
	case "abs":
		return builtinAbs(args[0], loc)
	case "min":
		return builtinMinMax(args[0], args[1], loc, true)
	case "max":
		return builtinMinMax(args[0], args[1], loc, false)
	case "round":
		return builtinRound(args[0], loc)
	case "floor":
		return builtinFloor(args[0], loc)
	case "ceil":
		return builtinCeil(args[0], loc)
	case "keys":
		return builtinKeys(args[0], loc)
	case "has":
		return builtinHas(args[0], args[1], loc)
	case "reverse":
		return builtinReverse(args[0], loc)
	case "first":
		return builtinFirst(args[0], loc)
	case "last":
		return builtinLast(args[0], loc)
	case "env":
		return builtinEnv(args, loc, env)
	case "file":
		return builtinFile(args[0], loc, env)
	default:
		return nil, herrors.NewUnknownBuiltin(loc, name)
	}
}

func wantString(v value.Value, who string, loc span.Location) (string, error) {
	s, ok := v.(value.String)
	if !ok {
		return "", herrors.NewTypeMismatch(loc, who, "string", v.Kind().String())
	}
	return string(s), nil
}

func argErr(fn string, loc span.Location, got value.Kind, want string) error {
	return herrors.NewTypeMismatch(loc, fn+"()", want, got.String())
}

func builtinLength(v value.Value, loc span.Location) (value.Value, error) {
	switch vv := v.(type) {
	case value.String:
		return value.Int(len([]rune(string(vv)))), nil
	case value.Array:
		return value.Int(len(vv)), nil
	case *value.Object:
		return value.Int(vv.Len()), nil
	default:
		return nil, argErr("length", loc, v.Kind(), "string, array, or object")
	}
}

func builtinUpper(v value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "upper()", loc)
	if err != nil {
		return nil, err
	}
	return value.String(strings.ToUpper(s)), nil
}

func builtinLower(v value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "lower()", loc)
	if err != nil {
		return nil, err
	}
	return value.String(strings.ToLower(s)), nil
}

func builtinTrim(v value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "trim()", loc)
	if err != nil {
		return nil, err
	}
	return value.String(strings.TrimSpace(s)), nil
}

func builtinTrimPrefix(v, prefix value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "trim_prefix()", loc)
	if err != nil {
		return nil, err
	}
	p, err := wantString(prefix, "trim_prefix()", loc)
	if err != nil {
		return nil, err
	}
	return value.String(strings.TrimPrefix(s, p)), nil
}

func builtinTrimSuffix(v, suffix value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "trim_suffix()", loc)
	if err != nil {
		return nil, err
	}
	suf, err := wantString(suffix, "trim_suffix()", loc)
	if err != nil {
		return nil, err
	}
	return value.String(strings.TrimSuffix(s, suf)), nil
}

func builtinSplit(v, sep value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "split()", loc)
	if err != nil {
		return nil, err
	}
	sp, err := wantString(sep, "split()", loc)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sp)
	out := make(value.Array, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return out, nil
}

func builtinJoin(v, sep value.Value, loc span.Location) (value.Value, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, argErr("join", loc, v.Kind(), "array")
	}
	sp, err := wantString(sep, "join()", loc)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(value.String)
		if !ok {
			return nil, herrors.NewTypeMismatch(loc, fmt.Sprintf("join()[%d]", i), "string", e.Kind().String())
		}
		parts[i] = string(s)
	}
	return value.String(strings.Join(parts, sp)), nil
}

func builtinContains(v, sub value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "contains()", loc)
	if err != nil {
		return nil, err
	}
	t, err := wantString(sub, "contains()", loc)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.Contains(s, t)), nil
}

func builtinStartsWith(v, pre value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "starts_with()", loc)
	if err != nil {
		return nil, err
	}
	t, err := wantString(pre, "starts_with()", loc)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.HasPrefix(s, t)), nil
}

func builtinEndsWith(v, suf value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "ends_with()", loc)
	if err != nil {
		return nil, err
	}
	t, err := wantString(suf, "ends_with()", loc)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.HasSuffix(s, t)), nil
}

func builtinReplace(v, old, new_ value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "replace()", loc)
	if err != nil {
		return nil, err
	}
	o, err := wantString(old, "replace()", loc)
	if err != nil {
		return nil, err
	}
	n, err := wantString(new_, "replace()", loc)
	if err != nil {
		return nil, err
	}
	return value.String(strings.ReplaceAll(s, o, n)), nil
}

func builtinRepeat(v, count value.Value, loc span.Location) (value.Value, error) {
	s, err := wantString(v, "repeat()", loc)
	if err != nil {
		return nil, err
	}
	n, ok := count.(value.Int)
	if !ok {
		return nil, argErr("repeat", loc, count.Kind(), "int")
	}
	if n < 0 {
		return nil, herrors.NewValueOutOfRange(loc, "repeat()", "non-negative int", fmt.Sprintf("%d", n))
	}
	return value.String(strings.Repeat(s, int(n))), nil
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

func builtinToInt(v value.Value, loc span.Location) (value.Value, error) {
	switch n := v.(type) {
	case value.Int:
		return n, nil
	case value.Float:
		return value.Int(int64(n)), nil
	case value.String:
		var i int64
		if _, err := fmt.Sscanf(string(n), "%d", &i); err != nil {
			return nil, herrors.NewTypeMismatch(loc, "to_int()", "numeric string", string(n))
		}
		return value.Int(i), nil
	default:
		return nil, argErr("to_int", loc, v.Kind(), "int, float, or numeric string")
	}
}

func builtinToFloat(v value.Value, loc span.Location) (value.Value, error) {
	f, ok := asFloat(v)
	if ok {
		return value.Float(f), nil
	}
	if s, ok := v.(value.String); ok {
		var f float64
		if _, err := fmt.Sscanf(string(s), "%g", &f); err != nil {
			return nil, herrors.NewTypeMismatch(loc, "to_float()", "numeric string", string(s))
		}
		return value.Float(f), nil
	}
	return nil, argErr("to_float", loc, v.Kind(), "int, float, or numeric string")
}

func builtinAbs(v value.Value, loc span.Location) (value.Value, error) {
	switch n := v.(type) {
	case value.Int:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case value.Float:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	default:
		return nil, argErr("abs", loc, v.Kind(), "int or float")
	}
}

func builtinMinMax(a, b value.Value, loc span.Location, wantMin bool) (value.Value, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		kind := a.Kind()
		if aok {
			kind = b.Kind()
		}
		return nil, argErr("min/max", loc, kind, "int or float")
	}
	take := af <= bf
	if !wantMin {
		take = af >= bf
	}
	if take {
		return a, nil
	}
	return b, nil
}

func builtinRound(v value.Value, loc span.Location) (value.Value, error) {
	f, ok := asFloat(v)
	if !ok {
		return nil, argErr("round", loc, v.Kind(), "int or float")
	}
	return value.Int(int64(f + signOf(f)*0.5)), nil
}

func signOf(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

func builtinFloor(v value.Value, loc span.Location) (value.Value, error) {
	f, ok := asFloat(v)
	if !ok {
		return nil, argErr("floor", loc, v.Kind(), "int or float")
	}
	i := int64(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return value.Int(i), nil
}

func builtinCeil(v value.Value, loc span.Location) (value.Value, error) {
	f, ok := asFloat(v)
	if !ok {
		return nil, argErr("ceil", loc, v.Kind(), "int or float")
	}
	i := int64(f)
	if f > 0 && float64(i) != f {
		i++
	}
	return value.Int(i), nil
}

func builtinKeys(v value.Value, loc span.Location) (value.Value, error) {
	ov, ok := v.(*value.Object)
	if !ok {
		return nil, argErr("keys", loc, v.Kind(), "object")
	}
	ks := ov.Keys()
	out := make(value.Array, len(ks))
	for i, k := range ks {
		out[i] = value.String(k)
	}
	return out, nil
}

func builtinHas(v, key value.Value, loc span.Location) (value.Value, error) {
	ov, ok := v.(*value.Object)
	if !ok {
		return nil, argErr("has", loc, v.Kind(), "object")
	}
	k, err := wantString(key, "has()", loc)
	if err != nil {
		return nil, err
	}
	_, present := ov.Get(k)
	return value.Bool(present), nil
}

func builtinReverse(v value.Value, loc span.Location) (value.Value, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, argErr("reverse", loc, v.Kind(), "array")
	}
	out := make(value.Array, len(arr))
	for i, e := range arr {
		out[len(arr)-1-i] = e
	}
	return out, nil
}

func builtinFirst(v value.Value, loc span.Location) (value.Value, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, argErr("first", loc, v.Kind(), "array")
	}
	if len(arr) == 0 {
		return nil, herrors.NewIndexOutOfBounds(loc, 0, 0)
	}
	return arr[0], nil
}

func builtinLast(v value.Value, loc span.Location) (value.Value, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, argErr("last", loc, v.Kind(), "array")
	}
	if len(arr) == 0 {
		return nil, herrors.NewIndexOutOfBounds(loc, -1, 0)
	}
	return arr[len(arr)-1], nil
}

func builtinEnv(args []value.Value, loc span.Location, env Env) (value.Value, error) {
	if env == nil || !env.AllowEnv() {
		return nil, herrors.NewEnvNotAllowed(loc, "env")
	}
	name, err := wantString(args[0], "env()", loc)
	if err != nil {
		return nil, err
	}
	if v, ok := env.LookupEnv(name); ok {
		return value.String(v), nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return value.Null{}, nil
}

func builtinFile(v value.Value, loc span.Location, env Env) (value.Value, error) {
	if env == nil || !env.AllowEnv() {
		return nil, herrors.NewEnvNotAllowed(loc, "file")
	}
	path, err := wantString(v, "file()", loc)
	if err != nil {
		return nil, err
	}
	content, err := env.ReadFile(path)
	if err != nil {
		return nil, herrors.NewIoError(fmt.Sprintf("file(%q): %s", path, err.Error()))
	}
	return value.String(content), nil
}
