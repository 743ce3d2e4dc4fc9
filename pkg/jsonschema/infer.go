// Package jsonschema infers JSON Schemas (Draft 2020-12) from decoded
// service response data.
package jsonschema

import (
	"encoding/json"
	"math"
	"math/big"
	"slices"
	"sort"

	"github.com/invopop/jsonschema"
)

// Inferred is a schema inferred from one or more samples.
type Inferred struct {
	Schema      *jsonschema.Schema `json:"schema"`
	SampleCount int                `json:"sample_count"`
	AllMatch    bool               `json:"all_match"` // every sample had the same shape
}

// Options controls inference.
type Options struct {
	// Required marks object properties present in every sample as required.
	Required bool
	// NullableOptional leaves properties that were ever null out of required.
	NullableOptional bool
	// AdditionalProperties, when set, is applied to every object schema.
	AdditionalProperties *bool
}

// DefaultOptions returns the options Infer uses.
func DefaultOptions() *Options {
	return &Options{Required: true, NullableOptional: true}
}

// Infer builds a schema that every sample satisfies.
func Infer(samples ...any) *Inferred {
	return InferWithOptions(DefaultOptions(), samples...)
}

// InferWithOptions is Infer with explicit options. It returns nil without samples.
func InferWithOptions(opts *Options, samples ...any) *Inferred {
	if len(samples) == 0 {
		return nil
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	normalized := make([]any, len(samples))
	schemas := make([]*jsonschema.Schema, len(samples))
	for i, s := range samples {
		normalized[i] = normalize(s)
		schemas[i] = FromValue(normalized[i])
	}

	allMatch := true
	first, _ := json.Marshal(schemas[0])
	for _, s := range schemas[1:] {
		other, _ := json.Marshal(s)
		if string(first) != string(other) {
			allMatch = false
			break
		}
	}

	merged := merge(schemas)
	if opts.Required {
		markRequired(merged, normalized, opts.NullableOptional)
	}
	if opts.AdditionalProperties != nil {
		setAdditionalProperties(merged, *opts.AdditionalProperties)
	}

	return &Inferred{Schema: merged, SampleCount: len(samples), AllMatch: allMatch}
}

// normalize turns named map and slice types, such as a client.Bunch, into the
// plain forms encoding/json produces.
func normalize(v any) any {
	switch v.(type) {
	case nil, bool, float64, string, map[string]any, []any, *big.Int:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// FromValue infers the schema of a single decoded JSON value.
func FromValue(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		return numberSchema(val)
	case float32:
		return numberSchema(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, *big.Int:
		return &jsonschema.Schema{Type: "integer"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		s := &jsonschema.Schema{Type: "array"}
		if len(val) > 0 {
			items := make([]*jsonschema.Schema, len(val))
			for i, item := range val {
				items[i] = FromValue(item)
			}
			s.Items = merge(items)
		}
		return s
	case map[string]any:
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, k := range sortedKeys(val) {
			s.Properties.Set(k, FromValue(val[k]))
		}
		return s
	default:
		return &jsonschema.Schema{}
	}
}

func numberSchema(f float64) *jsonschema.Schema {
	if math.Trunc(f) == f && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return &jsonschema.Schema{Type: "integer"}
	}
	return &jsonschema.Schema{Type: "number"}
}

func merge(schemas []*jsonschema.Schema) *jsonschema.Schema {
	switch len(schemas) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return schemas[0]
	}

	var objects, arrays []*jsonschema.Schema
	var primitives []string
	for _, s := range schemas {
		switch s.Type {
		case "":
		case "object":
			objects = append(objects, s)
		case "array":
			arrays = append(arrays, s)
		default:
			if !slices.Contains(primitives, s.Type) {
				primitives = append(primitives, s.Type)
			}
		}
	}
	sort.Strings(primitives)

	// integer and number together widen to number.
	if i := slices.Index(primitives, "integer"); i >= 0 && slices.Contains(primitives, "number") {
		primitives = slices.Delete(primitives, i, i+1)
	}

	var anyOf []*jsonschema.Schema
	if len(objects) > 0 {
		anyOf = append(anyOf, mergeObjects(objects))
	}
	if len(arrays) > 0 {
		anyOf = append(anyOf, mergeArrays(arrays))
	}
	for _, t := range primitives {
		anyOf = append(anyOf, &jsonschema.Schema{Type: t})
	}

	switch len(anyOf) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return anyOf[0]
	}
	return &jsonschema.Schema{AnyOf: anyOf}
}

func mergeObjects(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	props := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Properties == nil {
			continue
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = append(props[pair.Key], pair.Value)
		}
	}

	merged := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
	for _, k := range sortedKeys(props) {
		merged.Properties.Set(k, merge(props[k]))
	}
	return merged
}

func mergeArrays(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	var items []*jsonschema.Schema
	for _, s := range schemas {
		if s.Items != nil {
			items = append(items, s.Items)
		}
	}
	merged := &jsonschema.Schema{Type: "array"}
	if len(items) > 0 {
		merged.Items = merge(items)
	}
	return merged
}

// markRequired sets Required on object schemas to the properties present in
// all samples, descending into nested objects and arrays of objects.
func markRequired(schema *jsonschema.Schema, samples []any, nullableOptional bool) {
	if schema == nil || schema.Type != "object" || schema.Properties == nil {
		return
	}

	objects := make([]map[string]any, 0, len(samples))
	for _, s := range samples {
		if obj, ok := s.(map[string]any); ok {
			objects = append(objects, obj)
		}
	}
	if len(objects) == 0 {
		return
	}

	var required []string
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		present := true
		var nested []any
		for _, obj := range objects {
			v, ok := obj[pair.Key]
			if !ok || (v == nil && nullableOptional) {
				present = false
			}
			switch val := v.(type) {
			case map[string]any:
				nested = append(nested, val)
			case []any:
				for _, item := range val {
					if item != nil {
						nested = append(nested, item)
					}
				}
			}
		}
		if present {
			required = append(required, pair.Key)
		}

		switch {
		case pair.Value.Type == "object":
			markRequired(pair.Value, nested, nullableOptional)
		case pair.Value.Type == "array" && pair.Value.Items != nil:
			markRequired(pair.Value.Items, nested, nullableOptional)
		}
	}

	sort.Strings(required)
	schema.Required = required
}

func setAdditionalProperties(schema *jsonschema.Schema, allowed bool) {
	if schema == nil {
		return
	}
	if schema.Type == "object" {
		if allowed {
			schema.AdditionalProperties = jsonschema.TrueSchema
		} else {
			schema.AdditionalProperties = jsonschema.FalseSchema
		}
		if schema.Properties != nil {
			for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
				setAdditionalProperties(pair.Value, allowed)
			}
		}
	}
	setAdditionalProperties(schema.Items, allowed)
	for _, s := range schema.AnyOf {
		setAdditionalProperties(s, allowed)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
