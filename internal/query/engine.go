// Package query provides cached JQ evaluation over decoded response data.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/zato-client-go/internal/cache"
)

// DefaultCacheSize is the number of compiled expressions kept by NewEngine.
const DefaultCacheSize = 256

// Engine executes JQ expressions against decoded JSON values.
// Compiled expressions are kept in an LRU cache so that repeated lookups
// with the same path do not re-parse it. Engine is safe for concurrent use.
type Engine struct {
	codes *cache.LRU[string, *gojq.Code]
}

// NewEngine creates a new query engine with DefaultCacheSize entries.
func NewEngine() *Engine {
	e, err := NewEngineSize(DefaultCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return e
}

// NewEngineSize creates a query engine caching up to size compiled expressions.
func NewEngineSize(size int) (*Engine, error) {
	c, err := cache.New[string, *gojq.Code](size)
	if err != nil {
		return nil, fmt.Errorf("creating expression cache: %w", err)
	}
	return &Engine{codes: c}, nil
}

// Result contains the values produced by a JQ expression.
type Result struct {
	Values []any    `json:"values"`           // Extracted values, nulls skipped
	Errors []string `json:"errors,omitempty"` // Runtime errors (e.g., type mismatch)
}

// Query runs expression against input, which must be a value as produced by
// encoding/json (maps, slices, strings, float64, bool, nil).
// maxResults of 0 means no limit.
func (e *Engine) Query(input any, expression string, maxResults int) (*Result, error) {
	code, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Values: make([]any, 0),
	}

	iter := code.Run(input)
	for {
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}

		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			result.Errors = append(result.Errors, formatJQError(err))
			continue
		}

		if v == nil {
			continue
		}

		result.Values = append(result.Values, v)
	}

	return result, nil
}

// First returns the first non-null value produced by expression.
// It reports false when the expression yields nothing or only errors.
func (e *Engine) First(input any, expression string) (any, bool, error) {
	res, err := e.Query(input, expression, 1)
	if err != nil {
		return nil, false, err
	}
	if len(res.Values) == 0 {
		return nil, false, nil
	}
	return res.Values[0], true, nil
}

// ValidateExpression checks if a JQ expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Engine) compile(expression string) (*gojq.Code, error) {
	if code, ok := e.codes.Get(expression); ok {
		return code, nil
	}

	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	e.codes.Put(expression, code)
	return code, nil
}

// formatJQError adds a hint for the runtime errors path lookups run into most.
//
// Runtime errors from gojq are plain errors without typed wrappers, so string
// matching is used; only the message is decorated.
func formatJQError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this response)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	}

	return errStr + hint
}
