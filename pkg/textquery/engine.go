// Package textquery extracts values from service responses with jq, XPath,
// CSS selectors, regular expressions or form keys.
package textquery

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/usestring/zato-client-go/internal/query"
	"github.com/usestring/zato-client-go/pkg/client"
	"github.com/usestring/zato-client-go/pkg/contenttype"
)

// Engine dispatches extraction queries to mode-specific handlers.
type Engine struct {
	jq *query.Engine
}

// NewEngine creates a new text query engine.
func NewEngine() *Engine {
	return &Engine{
		jq: query.NewEngine(),
	}
}

// QueryResponse extracts values from a decoded response. XML data is queried
// in place and JSON data without re-parsing; other data, or a mode that does
// not suit the decoded form, falls back to the response body text.
// An empty mode is chosen from the decoded data or the Content-Type.
func (e *Engine) QueryResponse(resp *client.Response, expression, mode string, maxResults int) (*QueryResult, error) {
	if n := resp.Node(); n != nil && (mode == "" || mode == ModeXPath) {
		return QueryNode(n, expression, maxResults)
	}

	if data, ok := resp.JSONValue(); ok && (mode == "" || mode == ModeJQ) {
		return e.queryValue(data, expression, maxResults)
	}

	text := resp.Text()
	if text == "" {
		text = resp.Raw().Text
	}
	return e.Query([]byte(text), resp.Raw().Header.Get("Content-Type"), expression, mode, maxResults)
}

// Query extracts values from a body. If mode is empty it is detected from
// the content type.
func (e *Engine) Query(body []byte, contentType, expression, mode string, maxResults int) (*QueryResult, error) {
	if mode == "" {
		mode = DetectMode(contentType)
	}

	switch mode {
	case ModeCSS:
		return QueryCSS(body, expression, maxResults)
	case ModeXPath:
		return QueryXPath(body, contentType, expression, maxResults)
	case ModeRegex:
		return QueryRegex(body, expression, maxResults)
	case ModeForm:
		return QueryForm(body, expression, maxResults)
	case ModeJQ:
		return e.queryDocument(body, contentType, expression, maxResults)
	default:
		return nil, fmt.Errorf("unknown mode: %q (valid: %v)", mode, Modes())
	}
}

// ValidateExpression checks if an expression is valid for the given mode.
func (e *Engine) ValidateExpression(expression, mode string) error {
	if !slices.Contains(Modes(), mode) {
		return fmt.Errorf("unknown mode: %q", mode)
	}
	if expression == "" {
		return fmt.Errorf("%s expression is required", mode)
	}

	switch mode {
	case ModeXPath:
		_, err := compileXPath(expression)
		return err
	case ModeRegex:
		_, err := QueryRegex(nil, expression, 0)
		return err
	case ModeJQ:
		return e.jq.ValidateExpression(expression)
	}
	return nil
}

// queryDocument parses a JSON body, or a YAML one for other content types,
// and applies a jq expression to it.
func (e *Engine) queryDocument(body []byte, contentType, expression string, maxResults int) (*QueryResult, error) {
	var doc any
	if contenttype.Classify(contentType) == contenttype.JSON {
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		// jq operates on JSON types only.
		normalized, err := json.Marshal(ConvertYAMLToJSON(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
		}
		if err := json.Unmarshal(normalized, &doc); err != nil {
			return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
		}
	}
	return e.queryValue(doc, expression, maxResults)
}

func (e *Engine) queryValue(data any, expression string, maxResults int) (*QueryResult, error) {
	res, err := e.jq.Query(data, expression, maxResults)
	if err != nil {
		return nil, err
	}

	values := res.Values
	if values == nil {
		values = []any{}
	}
	return &QueryResult{
		Values: values,
		Count:  len(values),
		Mode:   ModeJQ,
		Errors: res.Errors,
	}, nil
}

// ConvertYAMLToJSON recursively converts YAML-parsed values to JSON-compatible
// types. yaml.v3 produces map[string]any for mappings, but other map types
// for non-string keys.
func ConvertYAMLToJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = ConvertYAMLToJSON(v)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[fmt.Sprintf("%v", k)] = ConvertYAMLToJSON(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = ConvertYAMLToJSON(v)
		}
		return result
	default:
		return v
	}
}
