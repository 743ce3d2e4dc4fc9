// Package schema validates decoded response data against JSON Schema documents.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Result is the outcome of a validation.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator validates values against one compiled schema.
// It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile parses a schema document, JSON or YAML, and compiles it.
func Compile(doc []byte) (*Validator, error) {
	var value any
	if err := json.Unmarshal(doc, &value); err != nil {
		if yerr := yaml.Unmarshal(doc, &value); yerr != nil {
			return nil, fmt.Errorf("parsing schema: %w", err)
		}
	}
	return NewValidator(value)
}

// NewValidator compiles an already decoded schema, or any value that
// marshals to one such as an inferred *jsonschema.Schema.
func NewValidator(schema any) (*Validator, error) {
	value, err := plain(schema)
	if err != nil {
		return nil, fmt.Errorf("normalizing schema: %w", err)
	}
	if _, ok := value.(map[string]any); !ok {
		if _, ok := value.(bool); !ok {
			return nil, fmt.Errorf("schema must be an object or a boolean, got %T", value)
		}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", value); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate parses JSON data and validates it.
func (v *Validator) Validate(data []byte) *Result {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &Result{Errors: []string{fmt.Sprintf("invalid JSON: %s", err)}}
	}
	return v.ValidateValue(value)
}

// ValidateValue validates a decoded value. Named map and slice types are
// validated by their JSON form.
func (v *Validator) ValidateValue(value any) *Result {
	value, err := plain(value)
	if err != nil {
		return &Result{Errors: []string{err.Error()}}
	}
	if err := v.schema.Validate(value); err != nil {
		return &Result{Errors: validationErrors(err)}
	}
	return &Result{Valid: true}
}

// plain converts v to the generic types encoding/json decodes into.
// Containers always take the round trip so that values nested in them
// are checked for being JSON.
func plain(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var printer = message.NewPrinter(language.English)

// validationErrors flattens a validation error into sorted, unique
// "location: message" strings taken from its leaf causes.
func validationErrors(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}

	seen := make(map[string]bool)
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if e.ErrorKind != nil && len(e.Causes) == 0 {
			msg := e.ErrorKind.LocalizedString(printer)
			if len(e.InstanceLocation) > 0 {
				msg = "/" + strings.Join(e.InstanceLocation, "/") + ": " + msg
			}
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	if len(out) == 0 {
		return []string{err.Error()}
	}
	sort.Strings(out)
	return out
}
