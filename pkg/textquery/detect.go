package textquery

import (
	"github.com/usestring/zato-client-go/pkg/contenttype"
)

// Mode constants for extraction languages.
const (
	ModeCSS   = "css"
	ModeXPath = "xpath"
	ModeRegex = "regex"
	ModeForm  = "form"
	ModeJQ    = "jq"
)

// Modes lists every extraction mode.
func Modes() []string {
	return []string{ModeJQ, ModeXPath, ModeCSS, ModeRegex, ModeForm}
}

// DetectMode returns the extraction mode suited to a content-type header.
// YAML bodies are queried with jq after conversion.
func DetectMode(ct string) string {
	switch contenttype.Classify(ct) {
	case contenttype.JSON, contenttype.YAML:
		return ModeJQ
	case contenttype.HTML:
		return ModeCSS
	case contenttype.XML, contenttype.SOAP:
		return ModeXPath
	case contenttype.Form:
		return ModeForm
	default:
		return ModeRegex
	}
}
