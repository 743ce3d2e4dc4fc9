package client

import (
	"fmt"

	"github.com/usestring/zato-client-go/internal/query"
)

var paths = query.NewEngine()

// Bunch is a view over a decoded JSON object with convenience accessors.
// Nested objects stay plain maps; use Bunch or Query to reach into them.
type Bunch map[string]any

// Get returns the value stored under key.
func (b Bunch) Get(key string) any {
	return b[key]
}

// Text returns the value under key as a string. Non-string values are
// formatted with fmt; missing keys give an empty string.
func (b Bunch) Text(key string) string {
	switch v := b[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Bunch returns the object under key as a Bunch, or nil.
func (b Bunch) Bunch(key string) Bunch {
	m, _ := b[key].(map[string]any)
	return m
}

// Query evaluates a jq expression, such as ".item.name" or ".items[].id",
// against the object and returns every non-null value it yields.
func (b Bunch) Query(expression string) ([]any, error) {
	res, err := paths.Query(map[string]any(b), expression, 0)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

// Path returns the first value found at a jq path, reporting false when
// there is none or the expression is invalid.
func (b Bunch) Path(expression string) (any, bool) {
	v, ok, err := paths.First(map[string]any(b), expression)
	if err != nil {
		return nil, false
	}
	return v, ok
}
