package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/span"
	"github.com/honelang/hone/internal/value"
)

var noLoc span.Location

func TestLengthAcrossKinds(t *testing.T) {
	tests := []struct {
		name     string
		v        value.Value
		expected int64
	}{
		{"empty string", value.String(""), 0},
		{"ascii string", value.String("hello"), 5},
		{"unicode string", value.String("世界"), 2},
		{"array", value.Array{value.Int(1), value.Int(2), value.Int(3)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Call("length", []value.Value{tt.v}, noLoc, nil)
			require.NoError(t, err)
			assert.Equal(t, value.Int(tt.expected), result)
		})
	}

	obj := value.NewObject()
	obj.Set("a", value.Int(1))
	obj.Set("b", value.Int(2))
	result, err := Call("length", []value.Value{obj}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), result)
}

func TestStringHelpers(t *testing.T) {
	result, err := Call("upper", []value.Value{value.String("abc")}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.String("ABC"), result)

	result, err = Call("split", []value.Value{value.String("a,b,c"), value.String(",")}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Array{value.String("a"), value.String("b"), value.String("c")}, result)

	result, err = Call("join", []value.Value{value.Array{value.String("a"), value.String("b")}, value.String("-")}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.String("a-b"), result)

	result, err = Call("contains", []value.Value{value.String("hello world"), value.String("world")}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), result)
}

func TestArityChecked(t *testing.T) {
	_, err := Call("upper", []value.Value{}, noLoc, nil)
	assert.Error(t, err)

	_, err = Call("upper", []value.Value{value.String("a"), value.String("b")}, noLoc, nil)
	assert.Error(t, err)
}

func TestTypeMismatchReported(t *testing.T) {
	_, err := Call("upper", []value.Value{value.Int(1)}, noLoc, nil)
	assert.Error(t, err)
}

type fakeEnv struct {
	allow bool
	vars  map[string]string
	files map[string]string
}

func (f *fakeEnv) AllowEnv() bool { return f.allow }
func (f *fakeEnv) LookupEnv(name string) (string, bool) {
	v, ok := f.vars[name]
	return v, ok
}
func (f *fakeEnv) ReadFile(path string) (string, error) {
	return f.files[path], nil
}

func TestEnvRejectedWithoutAllowEnv(t *testing.T) {
	_, err := Call("env", []value.Value{value.String("HOME")}, noLoc, &fakeEnv{allow: false})
	require.Error(t, err)
}

func TestEnvWithDefault(t *testing.T) {
	env := &fakeEnv{allow: true, vars: map[string]string{}}
	result, err := Call("env", []value.Value{value.String("MISSING"), value.String("fallback")}, noLoc, env)
	require.NoError(t, err)
	assert.Equal(t, value.String("fallback"), result)
}

func TestEnvFound(t *testing.T) {
	env := &fakeEnv{allow: true, vars: map[string]string{"FOO": "bar"}}
	result, err := Call("env", []value.Value{value.String("FOO")}, noLoc, env)
	require.NoError(t, err)
	assert.Equal(t, value.String("bar"), result)
}

func TestMinMax(t *testing.T) {
	result, err := Call("min", []value.Value{value.Int(5), value.Int(2)}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), result)

	result, err = Call("max", []value.Value{value.Int(5), value.Int(2)}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), result)
}

func TestKeysPreservesOrder(t *testing.T) {
	obj := value.NewObject()
	obj.Set("z", value.Int(1))
	obj.Set("a", value.Int(2))
	result, err := Call("keys", []value.Value{obj}, noLoc, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Array{value.String("z"), value.String("a")}, result)
}
