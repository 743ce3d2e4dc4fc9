package client

import (
	"fmt"
	"iter"
	"log/slog"
	"math/big"
	"net/http"
	"reflect"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/usestring/zato-client-go/internal/wire"
)

// Format identifies the wire format a Response is decoded from.
type Format string

const (
	FormatJSON          Format = "json"
	FormatXML           Format = "xml"
	FormatSOAP          Format = "soap"
	FormatJSONSIO       Format = "json-sio"
	FormatSOAPSIO       Format = "soap-sio"
	FormatRaw           Format = "raw"
	FormatServiceInvoke Format = "service-invoke"
)

// Decoder interprets a raw HTTP response in one wire format. Decode fills
// in the fields of r and must not panic on malformed input.
type Decoder interface {
	Decode(r *Response)
}

var decoders = map[Format]Decoder{
	FormatJSON:          jsonDecoder{},
	FormatXML:           xmlDecoder{},
	FormatSOAP:          soapDecoder{},
	FormatJSONSIO:       jsonSIODecoder{},
	FormatSOAPSIO:       soapSIODecoder{},
	FormatRaw:           rawDecoder{},
	FormatServiceInvoke: serviceInvokeDecoder{},
}

var typeNames = map[Format]string{
	FormatJSON:          "JSONResponse",
	FormatXML:           "XMLResponse",
	FormatSOAP:          "SOAPResponse",
	FormatJSONSIO:       "JSONSIOResponse",
	FormatSOAPSIO:       "SOAPSIOResponse",
	FormatRaw:           "RawDataResponse",
	FormatServiceInvoke: "ServiceInvokeResponse",
}

// Formats returns every format NewResponse can decode.
func Formats() []Format {
	return []Format{FormatJSON, FormatXML, FormatSOAP, FormatJSONSIO, FormatSOAPSIO, FormatRaw, FormatServiceInvoke}
}

// ParseFormat resolves a format name such as "json-sio".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := decoders[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Limits applied by Response.String.
const (
	DefaultMaxResponseRepr = 2500
	DefaultMaxCIDRepr      = 5

	// CIDLength is the length of correlation ids generated by the server.
	CIDLength = 24

	// CIDNoClip, used as the max cid repr, renders whole correlation ids.
	CIDNoClip = CIDLength / 2
)

// ResponseOptions control how a Response is decoded and rendered.
type ResponseOptions struct {
	Bunch           bool // Wrap mapping data in a Bunch
	OutputRepeated  bool // Data is semantically a sequence
	MaxResponseRepr int  // Body characters shown by String; 0 means DefaultMaxResponseRepr, negative shows all
	MaxCIDRepr      int  // Leading and trailing cid characters shown by String; 0 means DefaultMaxCIDRepr, negative shows all
	Logger          *slog.Logger
}

// Response is the normalized result of one service invocation.
// It is fully decoded when returned and never changes afterwards.
type Response struct {
	raw    *RawResponse
	format Format
	opts   ResponseOptions
	logger *slog.Logger

	ok                   bool
	hasData              bool
	data                 any
	details              any
	cid                  string
	sioResult            string
	innerServiceResponse string
}

// NewResponse decodes raw using the decoder registered for format.
// The only error is ErrUnsupportedFormat; problems with the response
// itself are reported through OK and Details.
func NewResponse(raw *RawResponse, format Format, opts ResponseOptions) (*Response, error) {
	dec, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if raw == nil {
		raw = &RawResponse{}
	}
	if opts.MaxResponseRepr == 0 {
		opts.MaxResponseRepr = DefaultMaxResponseRepr
	}
	if opts.MaxCIDRepr == 0 {
		opts.MaxCIDRepr = DefaultMaxCIDRepr
	}

	r := &Response{
		raw:    raw,
		format: format,
		opts:   opts,
		logger: opts.Logger,
		cid:    wire.NoCID,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if cid := raw.Header.Get(wire.HeaderCID); cid != "" {
		r.cid = cid
	}

	dec.Decode(r)
	r.finish()
	return r, nil
}

// finish enforces the invariants every decoder relies on.
func (r *Response) finish() {
	if r.ok {
		r.details = nil
	} else if r.details == nil {
		r.details = statusDetails(r.raw)
	}
	if r.hasData && !truthy(r.data) {
		r.hasData = false
	}
}

func statusDetails(raw *RawResponse) string {
	if text := http.StatusText(raw.StatusCode); text != "" {
		return fmt.Sprintf("HTTP status %d %s", raw.StatusCode, text)
	}
	return fmt.Sprintf("HTTP status %d", raw.StatusCode)
}

// Raw returns the underlying HTTP response.
func (r *Response) Raw() *RawResponse { return r.raw }

// Format returns the format the response was decoded from.
func (r *Response) Format() Format { return r.format }

// OK reports whether the call succeeded both at the HTTP level and
// according to the format's own success criterion.
func (r *Response) OK() bool { return r.ok }

// HasData reports whether a non-empty payload was extracted.
func (r *Response) HasData() bool { return r.hasData }

// Data returns the normalized payload.
func (r *Response) Data() any { return r.data }

// Details returns nil for successful responses. Otherwise it holds a
// diagnostic string or, for SOAP faults, the *xmlquery.Node of the fault.
func (r *Response) Details() any { return r.details }

// CID returns the correlation id of the call, or "(None)".
func (r *Response) CID() string { return r.cid }

// SIOResult returns the result code reported by an SIO service.
func (r *Response) SIOResult() string { return r.sioResult }

// OutputRepeated reports whether the caller expects sequence data.
func (r *Response) OutputRepeated() bool { return r.opts.OutputRepeated }

// InnerServiceResponse returns the decoded text of the nested response
// carried by a service-invoke call.
func (r *Response) InnerServiceResponse() string { return r.innerServiceResponse }

// DetailsText renders Details as text; fault nodes are rendered as XML.
func (r *Response) DetailsText() string {
	switch d := r.details.(type) {
	case nil:
		return ""
	case string:
		return d
	case *xmlquery.Node:
		return d.OutputXML(true)
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Map returns mapping data as a plain map, or nil.
func (r *Response) Map() map[string]any {
	switch d := r.data.(type) {
	case map[string]any:
		return d
	case Bunch:
		return d
	}
	return nil
}

// Node returns XML data, or nil.
func (r *Response) Node() *xmlquery.Node {
	return nodeOf(r.data)
}

func nodeOf(v any) *xmlquery.Node {
	n, _ := v.(*xmlquery.Node)
	return n
}

// Text returns string data, or an empty string.
func (r *Response) Text() string {
	s, _ := r.data.(string)
	return s
}

// JSONValue returns data decoded from JSON, with mappings as plain maps.
// The second result is false for XML, text and absent data.
func (r *Response) JSONValue() (any, bool) {
	if m := r.Map(); m != nil {
		return m, true
	}
	switch d := r.data.(type) {
	case []any, float64, bool, *big.Int:
		return d, true
	}
	return nil, false
}

// Items iterates over sequence data: elements of a JSON array or element
// children of an XML node. Any other non-nil value is yielded once.
func (r *Response) Items() iter.Seq[any] {
	return func(yield func(any) bool) {
		switch d := r.data.(type) {
		case nil:
		case []any:
			for _, v := range d {
				if !yield(v) {
					return
				}
			}
		case *xmlquery.Node:
			for n := d.FirstChild; n != nil; n = n.NextSibling {
				if n.Type != xmlquery.ElementNode {
					continue
				}
				if !yield(n) {
					return
				}
			}
		default:
			yield(d)
		}
	}
}

// String renders the response for diagnostics, clipping the body and the
// correlation id to the configured lengths.
func (r *Response) String() string {
	return fmt.Sprintf("<%s ok:[%t] inner.status_code:[%d] cid:%s, inner.text:[%s]>",
		typeNames[r.format], r.ok, r.raw.StatusCode, r.cidRepr(), clip(r.raw.Text, r.opts.MaxResponseRepr))
}

func (r *Response) cidRepr() string {
	n := r.opts.MaxCIDRepr
	cid := []rune(r.cid)
	if n <= 0 || n >= CIDNoClip || len(cid) <= 2*n {
		return "[" + r.cid + "]"
	}
	return fmt.Sprintf("[%s..%s]", string(cid[:n]), string(cid[len(cid)-n:]))
}

func clip(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// wrap applies bunch mode to mapping data.
func (r *Response) wrap(v any) any {
	if m, ok := v.(map[string]any); ok && r.opts.Bunch {
		return Bunch(m)
	}
	return v
}

// truthy reports whether v counts as present data: non-nil, non-zero and
// non-empty.
func truthy(v any) bool {
	switch d := v.(type) {
	case nil:
		return false
	case bool:
		return d
	case float64:
		return d != 0
	case *big.Int:
		return d != nil && d.Sign() != 0
	case string:
		return d != ""
	case []any:
		return len(d) > 0
	case map[string]any:
		return len(d) > 0
	case Bunch:
		return len(d) > 0
	case *xmlquery.Node:
		return d != nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.String, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
