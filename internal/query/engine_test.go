package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestEngine_Query_Simple(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(decode(t, `{"name": "John", "age": 30}`), ".name", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"John"}, result.Values)
}

func TestEngine_Query_Array(t *testing.T) {
	engine := NewEngine()

	input := decode(t, `{"items": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`)

	result, err := engine.Query(input, ".items[].name", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, result.Values)
}

func TestEngine_Query_MaxResults(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(decode(t, `{"items": [1, 2, 3, 4, 5]}`), ".items[]", 3)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, result.Values)
}

func TestEngine_Query_NilValues(t *testing.T) {
	engine := NewEngine()

	input := decode(t, `{"items": [{"name": "a"}, {"noname": "b"}, {"name": "c"}]}`)

	result, err := engine.Query(input, ".items[].name", 0)
	require.NoError(t, err)
	// nil values should be skipped
	assert.Equal(t, []any{"a", "c"}, result.Values)
}

func TestEngine_Query_InvalidExpression(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Query(decode(t, `{"name": "John"}`), ".name[", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestEngine_Query_ReturnsErrors(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Query(decode(t, `{"foo": null}`), ".foo[]", 0)
	require.NoError(t, err) // Query itself succeeds
	assert.Empty(t, result.Values)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "the path may not exist")
}

func TestEngine_First(t *testing.T) {
	engine := NewEngine()
	input := decode(t, `{"zato_env": {"result": "ZATO_OK"}}`)

	v, ok, err := engine.First(input, ".zato_env.result")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ZATO_OK", v)

	_, ok, err = engine.First(input, ".zato_env.cid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_CachesCompiledExpressions(t *testing.T) {
	engine, err := NewEngineSize(2)
	require.NoError(t, err)

	for _, expr := range []string{".a", ".b", ".a", ".c"} {
		require.NoError(t, engine.ValidateExpression(expr))
	}
	assert.Equal(t, 2, engine.codes.Len())
	assert.True(t, engine.codes.Contains(".a"))
	assert.True(t, engine.codes.Contains(".c"))
	assert.False(t, engine.codes.Contains(".b"))
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine()

	assert.NoError(t, engine.ValidateExpression(".name"))
	assert.NoError(t, engine.ValidateExpression(`.items[] | select(.status == "active")`))

	assert.Error(t, engine.ValidateExpression(".name["))
	assert.Error(t, engine.ValidateExpression("invalid("))
}

func TestNewEngineSize_Invalid(t *testing.T) {
	_, err := NewEngineSize(0)
	assert.Error(t, err)
}
