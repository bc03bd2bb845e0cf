package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/lexer"
	"github.com/honelang/hone/internal/parser"
	"github.com/honelang/hone/internal/value"
)

func evalSource(t *testing.T, src string) *value.Object {
	t.Helper()
	file, err := parser.Parse(lexer.Normalize([]byte(src)), "test.hone")
	require.NoError(t, err)
	ev := NewEvaluator(nil, nil)
	result, err := ev.EvalFile(file, NewEnvironment())
	require.NoError(t, err)
	return result
}

func TestEvalSimpleAssignment(t *testing.T) {
	result := evalSource(t, `name: "api"
port: 8080`)
	name, _ := result.Get("name")
	assert.Equal(t, value.String("api"), name)
	port, _ := result.Get("port")
	assert.Equal(t, value.Int(8080), port)
}

func TestEvalLetAndInterpolation(t *testing.T) {
	result := evalSource(t, `let env = "prod"
name: "svc-${env}"`)
	name, _ := result.Get("name")
	assert.Equal(t, value.String("svc-prod"), name)
}

func TestEvalNestedBlock(t *testing.T) {
	result := evalSource(t, `db {
  host: "localhost"
  port: 5432
}`)
	db, ok := result.Get("db")
	require.True(t, ok)
	obj, ok := db.(*value.Object)
	require.True(t, ok)
	host, _ := obj.Get("host")
	assert.Equal(t, value.String("localhost"), host)
}

func TestEvalWhenElse(t *testing.T) {
	result := evalSource(t, `let debug = false
when debug {
  level: "debug"
} else {
  level: "info"
}`)
	level, _ := result.Get("level")
	assert.Equal(t, value.String("info"), level)
}

func TestEvalForLoop(t *testing.T) {
	result := evalSource(t, `names: [for n in ["a", "b"] { n }]`)
	names, _ := result.Get("names")
	assert.Equal(t, value.Array{value.String("a"), value.String("b")}, names)
}

func TestEvalAppendMerge(t *testing.T) {
	result := evalSource(t, `tags: ["base"]
tags +: ["extra"]`)
	tags, _ := result.Get("tags")
	assert.Equal(t, value.Array{value.String("base"), value.String("extra")}, tags)
}

func TestEvalAssertPasses(t *testing.T) {
	result := evalSource(t, `port: 8080
assert port > 0`)
	port, _ := result.Get("port")
	assert.Equal(t, value.Int(8080), port)
}

func TestEvalAssertFails(t *testing.T) {
	file, err := parser.Parse(lexer.Normalize([]byte(`port: -1
assert port > 0`)), "test.hone")
	require.NoError(t, err)
	ev := NewEvaluator(nil, nil)
	_, err = ev.EvalFile(file, NewEnvironment())
	assert.Error(t, err)
}

func TestEvalArithmeticAndTernary(t *testing.T) {
	result := evalSource(t, `replicas: 2 * 3
label: replicas > 5 ? "many" : "few"`)
	replicas, _ := result.Get("replicas")
	assert.Equal(t, value.Int(6), replicas)
	label, _ := result.Get("label")
	assert.Equal(t, value.String("many"), label)
}

func TestEvalBuiltinCall(t *testing.T) {
	result := evalSource(t, `name: upper("svc")`)
	name, _ := result.Get("name")
	assert.Equal(t, value.String("SVC"), name)
}

func TestEvalUndefinedVariable(t *testing.T) {
	file, err := parser.Parse(lexer.Normalize([]byte(`name: undefinedVar`)), "test.hone")
	require.NoError(t, err)
	ev := NewEvaluator(nil, nil)
	_, err = ev.EvalFile(file, NewEnvironment())
	assert.Error(t, err)
}

func TestEvalForAtTopLevelFails(t *testing.T) {
	file, err := parser.Parse(lexer.Normalize([]byte(`for n in ["a", "b"] {
  name: n
}`)), "test.hone")
	require.NoError(t, err)
	ev := NewEvaluator(nil, nil)
	_, err = ev.EvalFile(file, NewEnvironment())
	require.Error(t, err)
	report, ok := herrors.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, herrors.ForAtTopLevel, report.Code)
}

func TestEvalForNestedInBlockSucceeds(t *testing.T) {
	result := evalSource(t, `meta {
  for n in ["a", "b"] {
    name: n
  }
}`)
	meta, ok := result.Get("meta")
	require.True(t, ok)
	obj, ok := meta.(*value.Object)
	require.True(t, ok)
	name, _ := obj.Get("name")
	assert.Equal(t, value.String("b"), name)
}
