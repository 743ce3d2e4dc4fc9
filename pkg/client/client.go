package client

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/usestring/zato-client-go/internal/wire"
	"github.com/usestring/zato-client-go/pkg/jsoncompact"
)

// Client holds what every client variant shares: the service address, the
// session used to reach it and response rendering settings. It is safe for
// concurrent use if its Session is.
type Client struct {
	address         string
	session         Session
	auth            *basicAuth
	bunch           bool
	maxResponseRepr int
	maxCIDRepr      int
	logger          *slog.Logger
	compact         *jsoncompact.Options
}

// Option is a functional option for configuring a client.
type Option func(*Client)

// WithSession sets the session used to send requests. Sessions may be
// shared between clients.
func WithSession(s Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithBasicAuth sets credentials for the default session. It has no effect
// when WithSession is given.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.auth = &basicAuth{username: username, password: password}
	}
}

// WithBunch wraps mapping data of JSON responses in a Bunch.
func WithBunch(enabled bool) Option {
	return func(c *Client) {
		c.bunch = enabled
	}
}

// WithMaxResponseRepr limits how much of the body Response.String shows.
func WithMaxResponseRepr(n int) Option {
	return func(c *Client) {
		c.maxResponseRepr = n
	}
}

// WithMaxCIDRepr limits how many leading and trailing characters of the
// correlation id Response.String shows. CIDNoClip shows all of it.
func WithMaxCIDRepr(n int) Option {
	return func(c *Client) {
		c.maxCIDRepr = n
	}
}

// WithLogger sets the logger for request traces. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTraceCompaction sets how decoded data is shortened in debug traces.
func WithTraceCompaction(opts *jsoncompact.Options) Option {
	return func(c *Client) {
		c.compact = opts
	}
}

func newClient(address, path string, opts []Option) Client {
	c := Client{
		address:         address + path,
		maxResponseRepr: DefaultMaxResponseRepr,
		maxCIDRepr:      DefaultMaxCIDRepr,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.session == nil {
		var sopts []SessionOption
		if c.auth != nil {
			sopts = append(sopts, WithSessionAuth(c.auth.username, c.auth.password))
		}
		c.session = NewHTTPSession(sopts...)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.compact == nil {
		c.compact = jsoncompact.DefaultOptions()
	}
	return c
}

// Address returns the full address requests are sent to.
func (c *Client) Address() string {
	return c.address
}

// InvokeOption configures a single call.
type InvokeOption func(*invokeConfig)

type invokeConfig struct {
	headers        map[string]string
	outputRepeated bool
	raw            bool
}

// WithHeaders adds HTTP headers to the request. The map is not modified.
func WithHeaders(h map[string]string) InvokeOption {
	return func(cfg *invokeConfig) {
		cfg.headers = h
	}
}

// WithOutputRepeated marks the expected data as a sequence.
func WithOutputRepeated(repeated bool) InvokeOption {
	return func(cfg *invokeConfig) {
		cfg.outputRepeated = repeated
	}
}

// WithoutJSON sends the payload of a JSON client as is. The payload must
// then be a string or a byte slice.
func WithoutJSON() InvokeOption {
	return func(cfg *invokeConfig) {
		cfg.raw = true
	}
}

func buildInvokeConfig(opts []InvokeOption) invokeConfig {
	var cfg invokeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// withHeader returns a copy of headers with key set to value.
func withHeader(headers map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	maps.Copy(out, headers)
	out[key] = value
	return out
}

// invoke performs exactly one POST and decodes the result with format.
func (c *Client) invoke(ctx context.Context, body []byte, format Format, async bool,
	headers map[string]string, outputRepeated bool) (*Response, error) {
	if headers == nil {
		headers = map[string]string{}
	}
	start := time.Now()

	raw, err := c.session.Post(ctx, c.address, body, headers)
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", c.address, err)
	}

	resp, err := NewResponse(raw, format, ResponseOptions{
		Bunch:           c.bunch,
		OutputRepeated:  outputRepeated,
		MaxResponseRepr: c.maxResponseRepr,
		MaxCIDRepr:      c.maxCIDRepr,
		Logger:          c.logger,
	})
	if err != nil {
		return nil, err
	}

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "service invoked",
			slog.String("address", c.address),
			slog.String("request", string(body)),
			slog.String("format", string(format)),
			slog.Bool("async", async),
			slog.Any("headers", headers),
			slog.Int("status", raw.StatusCode),
			slog.String("cid", resp.CID()),
			slog.String("text", raw.Text),
			slog.String("data", c.renderData(resp.Data())),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}

	return resp, nil
}

func (c *Client) renderData(data any) string {
	if n := nodeOf(data); n != nil {
		return n.OutputXML(true)
	}
	return jsoncompact.Render(data, c.compact)
}

// JSONClient invokes services that take and return JSON.
type JSONClient struct {
	Client
	format Format
}

// NewJSONClient creates a client for the JSON service at address+path.
func NewJSONClient(address, path string, opts ...Option) *JSONClient {
	return &JSONClient{Client: newClient(address, path, opts), format: FormatJSON}
}

// Invoke JSON-encodes payload and calls the service.
func (c *JSONClient) Invoke(ctx context.Context, payload any, opts ...InvokeOption) (*Response, error) {
	cfg := buildInvokeConfig(opts)

	var body []byte
	var err error
	if cfg.raw {
		body, err = rawBody(payload)
	} else {
		body, err = encodeJSON(payload)
	}
	if err != nil {
		return nil, err
	}

	return c.invoke(ctx, body, c.format, false, cfg.headers, cfg.outputRepeated)
}

// JSONSIOClient invokes services that speak Simple IO over JSON.
type JSONSIOClient struct {
	JSONClient
}

// NewJSONSIOClient creates a client for the JSON SIO service at address+path.
func NewJSONSIOClient(address, path string, opts ...Option) *JSONSIOClient {
	return &JSONSIOClient{JSONClient{Client: newClient(address, path, opts), format: FormatJSONSIO}}
}

// XMLClient invokes services that take and return plain XML.
type XMLClient struct {
	Client
}

// NewXMLClient creates a client for the XML service at address+path.
func NewXMLClient(address, path string, opts ...Option) *XMLClient {
	return &XMLClient{Client: newClient(address, path, opts)}
}

// Invoke sends payload unchanged and decodes the XML response.
func (c *XMLClient) Invoke(ctx context.Context, payload []byte, opts ...InvokeOption) (*Response, error) {
	cfg := buildInvokeConfig(opts)
	return c.invoke(ctx, payload, FormatXML, false, cfg.headers, cfg.outputRepeated)
}

// SOAPClient invokes SOAP services.
type SOAPClient struct {
	Client
	format Format
}

// NewSOAPClient creates a client for the SOAP service at address+path.
func NewSOAPClient(address, path string, opts ...Option) *SOAPClient {
	return &SOAPClient{Client: newClient(address, path, opts), format: FormatSOAP}
}

// Invoke sends payload, a complete SOAP envelope, with the given SOAPAction.
func (c *SOAPClient) Invoke(ctx context.Context, soapAction string, payload []byte, opts ...InvokeOption) (*Response, error) {
	cfg := buildInvokeConfig(opts)
	headers := withHeader(cfg.headers, wire.HeaderSOAPAction, soapAction)
	return c.invoke(ctx, payload, c.format, false, headers, cfg.outputRepeated)
}

// SOAPSIOClient invokes services that speak Simple IO over SOAP.
type SOAPSIOClient struct {
	SOAPClient
}

// NewSOAPSIOClient creates a client for the SOAP SIO service at address+path.
func NewSOAPSIOClient(address, path string, opts ...Option) *SOAPSIOClient {
	return &SOAPSIOClient{SOAPClient{Client: newClient(address, path, opts), format: FormatSOAPSIO}}
}

// RawDataClient sends payloads as they are and keeps response bodies
// uninterpreted.
type RawDataClient struct {
	Client
}

// NewRawDataClient creates a client for the service at address+path.
func NewRawDataClient(address, path string, opts ...Option) *RawDataClient {
	return &RawDataClient{Client: newClient(address, path, opts)}
}

// Invoke sends payload unchanged.
func (c *RawDataClient) Invoke(ctx context.Context, payload []byte, opts ...InvokeOption) (*Response, error) {
	cfg := buildInvokeConfig(opts)
	return c.invoke(ctx, payload, FormatRaw, false, cfg.headers, cfg.outputRepeated)
}
