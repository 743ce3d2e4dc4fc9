package jsonschema

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func property(t *testing.T, s *jsonschema.Schema, name string) *jsonschema.Schema {
	t.Helper()
	require.NotNil(t, s.Properties)
	p, ok := s.Properties.Get(name)
	require.True(t, ok, "missing property %q", name)
	return p
}

func TestInfer_Primitives(t *testing.T) {
	tests := []struct {
		json string
		want string
	}{
		{`"zato"`, "string"},
		{`42`, "integer"},
		{`1.0`, "integer"},
		{`-3.5`, "number"},
		{`true`, "boolean"},
		{`null`, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			got := Infer(decodeJSON(t, tt.json))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Schema.Type)
			assert.Equal(t, 1, got.SampleCount)
			assert.True(t, got.AllMatch)
		})
	}
}

func TestInfer_GoIntegers(t *testing.T) {
	assert.Equal(t, "integer", Infer(int64(7)).Schema.Type)
	assert.Equal(t, "number", Infer(float32(0.5)).Schema.Type)
	assert.Equal(t, "integer", Infer(new(big.Int).Lsh(big.NewInt(1), 70)).Schema.Type)
}

func TestInfer_Object(t *testing.T) {
	got := Infer(decodeJSON(t, `{"name": "zato", "port": 17010, "tags": ["a"], "owner": null}`))

	s := got.Schema
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, "string", property(t, s, "name").Type)
	assert.Equal(t, "integer", property(t, s, "port").Type)
	assert.Equal(t, "array", property(t, s, "tags").Type)
	assert.Equal(t, "string", property(t, s, "tags").Items.Type)
	assert.Equal(t, "null", property(t, s, "owner").Type)
	assert.Equal(t, []string{"name", "port", "tags"}, s.Required)
}

func TestInfer_NamedMapTypes(t *testing.T) {
	type bunch map[string]any

	got := Infer(bunch{"cid": "K01", "nested": bunch{"n": 1}})
	s := got.Schema
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, "string", property(t, s, "cid").Type)
	assert.Equal(t, "integer", property(t, property(t, s, "nested"), "n").Type)
}

func TestInfer_MergesSamples(t *testing.T) {
	got := Infer(
		decodeJSON(t, `{"id": 1, "name": "a", "meta": {"x": 1, "y": 2}}`),
		decodeJSON(t, `{"id": 2.5, "meta": {"x": 3}}`),
	)

	s := got.Schema
	assert.Equal(t, 2, got.SampleCount)
	assert.False(t, got.AllMatch)
	assert.Equal(t, "number", property(t, s, "id").Type)
	assert.Equal(t, []string{"id", "meta"}, s.Required)
	assert.Equal(t, []string{"x"}, property(t, s, "meta").Required)
}

func TestInfer_IdenticalSamplesMatch(t *testing.T) {
	got := Infer(decodeJSON(t, `{"a": 1}`), decodeJSON(t, `{"a": 2}`))
	assert.True(t, got.AllMatch)
}

func TestInfer_MixedTypesUseAnyOf(t *testing.T) {
	got := Infer(decodeJSON(t, `[1, "two", {"three": 3}, [4]]`))

	items := got.Schema.Items
	require.NotNil(t, items)
	require.Len(t, items.AnyOf, 4)
	assert.Equal(t, "object", items.AnyOf[0].Type)
	assert.Equal(t, "array", items.AnyOf[1].Type)
	assert.Equal(t, "integer", items.AnyOf[2].Type)
	assert.Equal(t, "string", items.AnyOf[3].Type)
}

func TestInfer_ArrayOfObjectsRequired(t *testing.T) {
	got := Infer(decodeJSON(t, `{"rows": [{"a": 1, "b": 2}, {"a": 3}]}`))

	rows := property(t, got.Schema, "rows")
	require.NotNil(t, rows.Items)
	assert.Equal(t, []string{"a"}, rows.Items.Required)
}

func TestInferWithOptions(t *testing.T) {
	sample := decodeJSON(t, `{"a": null, "b": {"c": 1}}`)

	t.Run("no required", func(t *testing.T) {
		got := InferWithOptions(&Options{}, sample)
		assert.Empty(t, got.Schema.Required)
	})

	t.Run("nullable required", func(t *testing.T) {
		got := InferWithOptions(&Options{Required: true}, sample)
		assert.Equal(t, []string{"a", "b"}, got.Schema.Required)
	})

	t.Run("closed objects", func(t *testing.T) {
		closed := false
		got := InferWithOptions(&Options{AdditionalProperties: &closed}, sample)
		assert.Equal(t, jsonschema.FalseSchema, got.Schema.AdditionalProperties)
		assert.Equal(t, jsonschema.FalseSchema, property(t, got.Schema, "b").AdditionalProperties)
	})

	t.Run("nil options", func(t *testing.T) {
		got := InferWithOptions(nil, sample)
		assert.Equal(t, []string{"b"}, got.Schema.Required)
	})
}

func TestInfer_NoSamples(t *testing.T) {
	assert.Nil(t, Infer())
}

func TestInfer_MarshalsAsDraft2020Schema(t *testing.T) {
	got := Infer(decodeJSON(t, `{"ok": true}`))

	out, err := json.Marshal(got.Schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "object", "properties": {"ok": {"type": "boolean"}}, "required": ["ok"]}`, string(out))
}
