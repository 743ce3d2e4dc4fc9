package wire

import (
	"fmt"

	"github.com/itchyny/gojq"
)

// Envelope is the status block of a JSON SIO response.
type Envelope struct {
	Result  string
	Details string
	CID     string
}

var (
	envelopeCode = mustCompileJQ(`.zato_env | objects | [.result, .details, .cid] | map(if . == null then "" else tostring end)`)
	payloadCode  = mustCompileJQ(`del(.zato_env)`)
)

func mustCompileJQ(expr string) *gojq.Code {
	q, err := gojq.Parse(expr)
	if err != nil {
		panic(fmt.Sprintf("wire: parsing %q: %v", expr, err))
	}
	code, err := gojq.Compile(q)
	if err != nil {
		panic(fmt.Sprintf("wire: compiling %q: %v", expr, err))
	}
	return code
}

// SIOEnvelope extracts the zato_env block from a decoded JSON document.
// It reports false when the document is not an object or carries no
// zato_env object.
func SIOEnvelope(doc map[string]any) (Envelope, bool) {
	iter := envelopeCode.Run(doc)
	v, ok := iter.Next()
	if !ok {
		return Envelope{}, false
	}
	fields, ok := v.([]any)
	if !ok || len(fields) != 3 {
		return Envelope{}, false
	}
	env := Envelope{}
	env.Result, _ = fields[0].(string)
	env.Details, _ = fields[1].(string)
	env.CID, _ = fields[2].(string)
	return env, true
}

// SIOPayload returns every top-level entry of doc other than zato_env.
func SIOPayload(doc map[string]any) map[string]any {
	iter := payloadCode.Run(doc)
	v, ok := iter.Next()
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}
