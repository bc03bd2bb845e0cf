package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/span"
)

// cmpOpts lets go-cmp see into Object's unexported keys/values fields so
// two independently-built Objects with the same content compare equal
// regardless of map internals.
var cmpOpts = cmp.AllowUnexported(Object{})

func TestStringifyScalars(t *testing.T) {
	assert.Equal(t, "null", Null{}.Stringify())
	assert.Equal(t, "true", Bool(true).Stringify())
	assert.Equal(t, "false", Bool(false).Stringify())
	assert.Equal(t, "42", Int(42).Stringify())
	assert.Equal(t, "svc", String("svc").Stringify())
}

func TestFloatStringifyAlwaysHasDecimalPoint(t *testing.T) {
	assert.Equal(t, "1.0", Float(1).Stringify())
	assert.Equal(t, "1.5", Float(1.5).Stringify())
}

func TestArrayStringifyQuotesStrings(t *testing.T) {
	a := Array{String("a"), Int(1)}
	assert.Equal(t, `["a", 1]`, a.Stringify())
}

func TestObjectSetPreservesInsertionOrderOnOverwrite(t *testing.T) {
	o := NewObject()
	o.Set("b", Int(1))
	o.Set("a", Int(2))
	o.Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, o.Keys())
	v, _ := o.Get("b")
	assert.Equal(t, Int(3), v)
}

func TestObjectDeleteRemovesFromKeyOrder(t *testing.T) {
	o := NewObject()
	o.Set("a", Int(1))
	o.Set("b", Int(2))
	o.Delete("a")
	assert.Equal(t, []string{"b"}, o.Keys())
	_, ok := o.Get("a")
	assert.False(t, ok)
}

func TestObjectCloneIsIndependent(t *testing.T) {
	o := NewObject()
	o.Set("a", Int(1))
	c := o.Clone()
	c.Set("a", Int(2))
	c.Set("b", Int(3))

	orig, _ := o.Get("a")
	assert.Equal(t, Int(1), orig)
	assert.Equal(t, 1, o.Len())

	if diff := cmp.Diff(o, c, cmpOpts); diff == "" {
		t.Fatal("expected clone to diverge from original after mutation")
	}
}

func TestEqualDeepComparesNestedStructures(t *testing.T) {
	build := func() *Object {
		o := NewObject()
		o.Set("name", String("svc"))
		o.Set("tags", Array{String("a"), String("b")})
		nested := NewObject()
		nested.Set("region", String("us-east-1"))
		o.Set("meta", nested)
		return o
	}
	a, b := build(), build()
	assert.True(t, Equal(a, b))
	if diff := cmp.Diff(a, b, cmpOpts); diff != "" {
		t.Fatalf("expected structurally identical objects, diff:\n%s", diff)
	}

	b.Set("name", String("other"))
	assert.False(t, Equal(a, b))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(Null{}))
	assert.False(t, Truthy(Bool(false)))
	assert.True(t, Truthy(Bool(true)))
	assert.True(t, Truthy(Int(0)))
	assert.True(t, Truthy(String("")))
}

func TestMergeNormalRecursesIntoObjects(t *testing.T) {
	base := NewObject()
	base.Set("name", String("svc"))
	base.Set("replicas", Int(1))
	overlay := NewObject()
	overlay.Set("replicas", Int(3))

	merged, err := Merge(base, overlay, Normal, "", span.Location{})
	require.NoError(t, err)
	mo := merged.(*Object)
	name, _ := mo.Get("name")
	assert.Equal(t, String("svc"), name)
	replicas, _ := mo.Get("replicas")
	assert.Equal(t, Int(3), replicas)
}

func TestMergeAppendConcatenatesArrays(t *testing.T) {
	merged, err := Merge(Array{Int(1)}, Array{Int(2), Int(3)}, Append, "tags", span.Location{})
	require.NoError(t, err)
	assert.Equal(t, Array{Int(1), Int(2), Int(3)}, merged)
}

func TestMergeAppendRejectsNonArrayOverlay(t *testing.T) {
	_, err := Merge(Array{Int(1)}, Int(2), Append, "tags", span.Location{})
	assert.Error(t, err)
}

func TestMergeReplaceIgnoresBase(t *testing.T) {
	merged, err := Merge(Int(1), Int(2), Replace, "x", span.Location{})
	require.NoError(t, err)
	assert.Equal(t, Int(2), merged)
}

func TestMergeFromRejectsObjectAgainstScalar(t *testing.T) {
	base := NewObject()
	base.Set("x", Int(1))
	_, err := MergeFrom(base, Int(2), span.Location{})
	assert.Error(t, err)
}

func TestMergeFromAllowsNullBaseField(t *testing.T) {
	base := NewObject()
	base.Set("x", Null{})
	overlay := NewObject()
	nested := NewObject()
	nested.Set("y", Int(1))
	overlay.Set("x", nested)

	merged, err := MergeFrom(base, overlay, span.Location{})
	require.NoError(t, err)
	mo := merged.(*Object)
	x, _ := mo.Get("x")
	assert.True(t, Equal(nested, x))
}
