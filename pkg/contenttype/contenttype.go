// Package contenttype classifies HTTP Content-Type values of service responses.
package contenttype

import (
	"mime"
	"strings"
	"unicode/utf8"
)

// Category represents a broad content-type classification.
type Category string

const (
	JSON   Category = "json"
	SOAP   Category = "soap"
	XML    Category = "xml"
	HTML   Category = "html"
	YAML   Category = "yaml"
	Form   Category = "form"
	Text   Category = "text"
	Binary Category = "binary"
)

// mediaType strips parameters (charset, boundary, etc.) from a Content-Type.
// Falls back to strings.ToLower for malformed values.
func mediaType(contentType string) (string, map[string]string) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
	}
	return mt, params
}

// Classify returns the broad content category for a content-type header value.
// Returns Binary for empty content-type strings.
func Classify(contentType string) Category {
	if contentType == "" {
		return Binary
	}

	mt, _ := mediaType(contentType)

	switch {
	case strings.Contains(mt, "json"):
		return JSON
	case mt == "application/soap+xml":
		return SOAP
	case mt == "text/html", mt == "application/xhtml+xml":
		return HTML
	case strings.Contains(mt, "xml"):
		return XML
	case strings.Contains(mt, "yaml"):
		return YAML
	case mt == "application/x-www-form-urlencoded":
		return Form
	case strings.HasPrefix(mt, "text/"), strings.Contains(mt, "javascript"):
		return Text
	default:
		return Binary
	}
}

// IsStructured reports whether the category holds JSON or XML.
func (c Category) IsStructured() bool {
	return c == JSON || c == SOAP || c == XML
}

// IsText reports whether the category is never binary.
func (c Category) IsText() bool {
	return c != Binary
}

// Charset returns the lowercased charset parameter of contentType, or an
// empty string when none is given.
func Charset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params := mediaType(contentType)
	return strings.ToLower(strings.Trim(params["charset"], `"' `))
}

// IsBinary returns true if the content type indicates binary content.
// Falls back to UTF-8 validation when contentType is empty or unrecognized.
func IsBinary(contentType string, data []byte) bool {
	if Classify(contentType).IsText() {
		return false
	}
	mt, _ := mediaType(contentType)
	if strings.HasPrefix(mt, "image/") ||
		strings.HasPrefix(mt, "audio/") ||
		strings.HasPrefix(mt, "video/") ||
		strings.Contains(mt, "octet-stream") ||
		strings.Contains(mt, "zip") ||
		strings.Contains(mt, "pdf") {
		return true
	}
	return !utf8.Valid(data)
}
