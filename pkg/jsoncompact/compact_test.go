package jsoncompact

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact_BasicArrayTrimming(t *testing.T) {
	input := `{"items": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10]}`
	opts := &Options{MaxArrayItems: 3}

	result, err := Compact([]byte(input), opts)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(result, &parsed))

	items := parsed["items"].([]any)
	assert.Len(t, items, 4) // 3 items + indicator
	assert.Equal(t, float64(1), items[0])
	assert.Equal(t, "... (7 more items)", items[3])
}

func TestCompact_EmptyInput(t *testing.T) {
	result, err := Compact(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestCompact_InvalidJSON(t *testing.T) {
	_, err := Compact([]byte(`{invalid`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestCompact_MaxDepth(t *testing.T) {
	result, err := Compact([]byte(`{"a": {"b": {"c": 1}}}`), &Options{MaxDepth: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": "[max depth]"}}`, string(result))
}

func TestCompact_StringTruncation(t *testing.T) {
	opts := &Options{MaxStringLen: 5}
	v := CompactValue(map[string]any{"s": "abcdefgh"}, opts)
	assert.Equal(t, map[string]any{"s": "abcde... (3 more chars)"}, v)
}

type view map[string]any

type list []any

func TestCompactValue_NamedTypes(t *testing.T) {
	opts := &Options{MaxArrayItems: 1}

	v := CompactValue(view{"items": list{1.0, 2.0}}, opts)
	assert.Equal(t, map[string]any{"items": []any{1.0, "... (1 more items)"}}, v)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "null", Render(nil, nil))
	assert.Equal(t, "plain", Render("plain", nil))
	assert.Equal(t, `{"a":[1,"... (2 more items)"]}`, Render(map[string]any{"a": []any{1.0, 2.0, 3.0}}, &Options{MaxArrayItems: 1}))

	long := strings.Repeat("x", DefaultMaxStringLen+2)
	assert.True(t, strings.HasSuffix(Render(long, nil), "... (2 more chars)"))
}

func TestRender_Unmarshalable(t *testing.T) {
	out := Render(map[string]any{"ch": make(chan int)}, nil)
	assert.True(t, strings.HasPrefix(out, "map[ch:"))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, DefaultMaxArrayItems, opts.MaxArrayItems)
	assert.Equal(t, DefaultMaxStringLen, opts.MaxStringLen)
	assert.Equal(t, DefaultMaxDepth, opts.MaxDepth)
}
