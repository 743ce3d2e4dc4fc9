package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"

	"github.com/usestring/zato-client-go/internal/wire"
)

// jsonDecoder reads arbitrary JSON bodies.
type jsonDecoder struct{}

func (jsonDecoder) Decode(r *Response) {
	if isBlank(r.raw.Text) {
		r.ok = r.raw.OK
		return
	}

	v, err := parseJSON([]byte(r.raw.Text))
	if err != nil {
		r.parseFailed(err)
		return
	}

	r.data = r.wrap(v)
	r.hasData = truthy(v)
	r.ok = r.raw.OK
}

// jsonSIODecoder reads JSON bodies wrapped in a zato_env status block.
type jsonSIODecoder struct{}

func (jsonSIODecoder) Decode(r *Response) {
	decodeJSONSIO(r, func(r *Response, payload any) bool {
		r.data = r.wrap(payload)
		r.hasData = truthy(payload)
		return true
	})
}

// serviceInvokeDecoder reads the JSON SIO response of the service-invoke
// endpoint, whose payload carries the invoked service's own response,
// base64-encoded.
type serviceInvokeDecoder struct{}

func (serviceInvokeDecoder) Decode(r *Response) {
	decodeJSONSIO(r, setServiceResponse)
}

// decodeJSONSIO checks the zato_env block and hands the business payload to
// set, which reports false if the payload itself is unusable.
func decodeJSONSIO(r *Response, set func(r *Response, payload any) bool) {
	if isBlank(r.raw.Text) {
		r.details = "Empty SIO response, no " + wire.KeyEnv + " found"
		return
	}

	v, err := parseJSON([]byte(r.raw.Text))
	if err != nil {
		r.parseFailed(err)
		return
	}

	doc, _ := v.(map[string]any)
	env, found := wire.SIOEnvelope(doc)
	if !found {
		r.details = "No " + wire.KeyEnv + " in SIO response"
		return
	}

	r.sioResult = env.Result
	if r.cid == wire.NoCID && env.CID != "" {
		r.cid = env.CID
	}

	if env.Result != wire.ZatoOK {
		r.details = env.Details
		if r.details == "" {
			r.details = "SIO result [" + env.Result + "]"
		}
		return
	}

	if !set(r, sioValue(wire.SIOPayload(doc))) {
		return
	}
	r.ok = r.raw.OK
}

// sioValue unwraps the single payload key an SIO response normally has.
// Several keys are kept together as one mapping.
func sioValue(rest map[string]any) any {
	switch len(rest) {
	case 0:
		return nil
	case 1:
		for _, v := range rest {
			return v
		}
	}
	return rest
}

func setServiceResponse(r *Response, payload any) bool {
	m, _ := payload.(map[string]any)
	encoded, present := m[wire.KeyResponse]
	if !present {
		r.details = "No " + wire.KeyResponse + " in service invoke payload"
		return false
	}

	if encoded == nil {
		return true
	}
	s, ok := encoded.(string)
	if !ok {
		r.details = fmt.Sprintf("Service response is not a base64 string: %T", encoded)
		return false
	}
	if s == "" {
		return true
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		r.details = "Could not decode service response: " + err.Error()
		return false
	}
	r.innerServiceResponse = string(decoded)

	inner, err := parseJSON(decoded)
	if err != nil {
		// Not a JSON response
		r.data = r.innerServiceResponse
		r.hasData = r.innerServiceResponse != ""
		return true
	}

	if obj, ok := inner.(map[string]any); ok && len(obj) == 1 {
		for _, v := range obj {
			inner = v
		}
	}
	r.data = r.wrap(inner)
	r.hasData = truthy(inner)
	return true
}

// maxExactInt is the largest magnitude below which every integer has an
// exact float64 representation.
var maxExactInt = big.NewInt(1 << 53)

// parseJSON decodes one JSON value. Numbers become float64, except integers
// too large for float64 to hold exactly, which become *big.Int.
func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: extra data after top-level value")
	}
	return convertNumbers(v)
}

func convertNumbers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		return convertNumber(val)
	case map[string]any:
		for k, item := range val {
			n, err := convertNumbers(item)
			if err != nil {
				return nil, err
			}
			val[k] = n
		}
	case []any:
		for i, item := range val {
			n, err := convertNumbers(item)
			if err != nil {
				return nil, err
			}
			val[i] = n
		}
	}
	return v, nil
}

func convertNumber(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, ok := new(big.Int).SetString(s, 10); ok && new(big.Int).Abs(i).Cmp(maxExactInt) > 0 {
			return i, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON number %s: %w", s, err)
	}
	return f, nil
}

func (r *Response) parseFailed(err error) {
	r.details = err.Error()
	r.logger.Debug("could not decode response",
		slog.String("format", string(r.format)),
		slog.String("cid", r.cid),
		slog.String("error", err.Error()),
	)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
