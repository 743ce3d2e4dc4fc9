// Package jsoncompact shortens decoded payloads for logs and terminal output
// by trimming long arrays and strings.
package jsoncompact

import (
	"encoding/json"
	"fmt"
	"reflect"
)

var (
	mapType   = reflect.TypeOf(map[string]any(nil))
	sliceType = reflect.TypeOf([]any(nil))
)

// Options controls compaction behavior.
type Options struct {
	MaxArrayItems int // Trim arrays to N items (0 = no limit)
	MaxStringLen  int // Truncate strings longer than N chars (0 = no limit)
	MaxDepth      int // Max recursion depth (0 = unlimited)
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 10
	DefaultMaxStringLen  = 500
	DefaultMaxDepth      = 0 // unlimited
)

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Compact compresses JSON bytes by trimming arrays and strings.
// Returns error if input is not valid JSON.
// If opts is nil, DefaultOptions() is used.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return json.Marshal(CompactValue(v, opts))
}

// CompactValue compresses a decoded value. Named map and slice types (such
// as views over decoded JSON) are compacted like their underlying types.
// If opts is nil, DefaultOptions() is used.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compactRecursive(v, opts, 0)
}

// Render returns the compacted value as a single line of JSON. Values that
// cannot be marshaled are rendered with fmt, strings with their raw text.
func Render(v any, opts *Options) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return compactString(val, optsOrDefault(opts))
	case fmt.Stringer:
		return compactString(val.String(), optsOrDefault(opts))
	}
	b, err := json.Marshal(CompactValue(v, opts))
	if err != nil {
		return compactString(fmt.Sprintf("%v", v), optsOrDefault(opts))
	}
	return string(b)
}

func optsOrDefault(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	return opts
}

func compactRecursive(v any, opts *Options, depth int) any {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return "[max depth]"
	}

	switch val := v.(type) {
	case []any:
		return compactArray(val, opts, depth)
	case map[string]any:
		return compactObject(val, opts, depth)
	case string:
		return compactString(val, opts)
	case nil, bool, float64, json.Number:
		return v
	}

	// Named types over map[string]any / []any.
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().ConvertibleTo(mapType):
		return compactObject(rv.Convert(mapType).Interface().(map[string]any), opts, depth)
	case rv.Kind() == reflect.Slice && rv.Type().ConvertibleTo(sliceType):
		return compactArray(rv.Convert(sliceType).Interface().([]any), opts, depth)
	}
	return v
}

func compactString(s string, opts *Options) string {
	if n := opts.MaxStringLen; n > 0 && len(s) > n {
		return fmt.Sprintf("%s... (%d more chars)", s[:n], len(s)-n)
	}
	return s
}

// compactArray keeps the first MaxArrayItems elements and appends a marker
// counting the dropped ones.
func compactArray(arr []any, opts *Options, depth int) []any {
	keep := len(arr)
	if opts.MaxArrayItems > 0 && keep > opts.MaxArrayItems {
		keep = opts.MaxArrayItems
	}

	out := make([]any, 0, keep+1)
	for _, item := range arr[:keep] {
		out = append(out, compactRecursive(item, opts, depth+1))
	}
	if dropped := len(arr) - keep; dropped > 0 {
		out = append(out, fmt.Sprintf("... (%d more items)", dropped))
	}
	return out
}

func compactObject(obj map[string]any, opts *Options, depth int) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = compactRecursive(v, opts, depth+1)
	}
	return out
}
