package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/zato-client-go/pkg/client"
	"github.com/usestring/zato-client-go/pkg/jsonschema"
)

const customerSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	},
	"required": ["name"]
}`

func TestCompile_Validate(t *testing.T) {
	v, err := Compile([]byte(customerSchema))
	require.NoError(t, err)

	res := v.Validate([]byte(`{"name": "Alice", "age": 30}`))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	res = v.Validate([]byte(`{"age": -1}`))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "/age: ")
	assert.Contains(t, res.Errors[1], "name")

	res = v.Validate([]byte(`{"name": 5}`))
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "/name: ")
}

func TestValidate_InvalidJSON(t *testing.T) {
	v, err := Compile([]byte(customerSchema))
	require.NoError(t, err)

	res := v.Validate([]byte(`{nope`))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "invalid JSON")
}

func TestCompile_YAML(t *testing.T) {
	v, err := Compile([]byte("type: object\nrequired: [cid]\n"))
	require.NoError(t, err)

	assert.True(t, v.ValidateValue(map[string]any{"cid": "K01"}).Valid)
	assert.False(t, v.ValidateValue(map[string]any{}).Valid)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not a document", "{: [", "parsing schema"},
		{"not an object", `"string"`, "must be an object"},
		{"bad keyword", `{"type": 12}`, "compiling schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateValue_Bunch(t *testing.T) {
	v, err := Compile([]byte(`{"type": "object", "properties": {"cid": {"type": "string"}}}`))
	require.NoError(t, err)

	assert.True(t, v.ValidateValue(client.Bunch{"cid": "K01"}).Valid)
	assert.False(t, v.ValidateValue(client.Bunch{"cid": 1}).Valid)
}

func TestValidateValue_Unencodable(t *testing.T) {
	v, err := NewValidator(true)
	require.NoError(t, err)

	for name, value := range map[string]any{
		"func in map":   map[string]any{"f": func() {}},
		"chan in slice": []any{make(chan int)},
		"nan":           math.NaN(),
		"nested nan":    map[string]any{"a": []any{math.Inf(1)}},
	} {
		t.Run(name, func(t *testing.T) {
			res := v.ValidateValue(value)
			assert.False(t, res.Valid)
			require.NotEmpty(t, res.Errors)
			assert.Contains(t, res.Errors[0], "not JSON")
		})
	}
}

func TestNewValidator_InferredSchema(t *testing.T) {
	inferred := jsonschema.Infer(map[string]any{"name": "zato", "port": 17010.0})

	v, err := NewValidator(inferred.Schema)
	require.NoError(t, err)

	assert.True(t, v.ValidateValue(map[string]any{"name": "x", "port": 1.0}).Valid)
	assert.False(t, v.ValidateValue(map[string]any{"name": "x", "port": 1.5}).Valid)
	assert.False(t, v.ValidateValue(map[string]any{"name": "x"}).Valid)
}
