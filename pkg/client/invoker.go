package client

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/usestring/zato-client-go/internal/wire"
)

// AnyServiceInvoker calls services through the server's generic
// service-invoke endpoint. The services invoked need not be exposed through
// any channel of their own.
type AnyServiceInvoker struct {
	Client
}

// NewAnyServiceInvoker creates an invoker for the service-invoke endpoint at
// address+path.
func NewAnyServiceInvoker(address, path string, opts ...Option) *AnyServiceInvoker {
	return &AnyServiceInvoker{Client: newClient(address, path, opts)}
}

// ServiceRequest describes one call made through AnyServiceInvoker.
// Exactly one of Name and ID identifies the target service.
type ServiceRequest struct {
	Name string
	ID   int64

	// Payload is JSON-encoded unless RawPayload is set, in which case it
	// must be a string or a byte slice.
	Payload    any
	RawPayload bool

	Headers    map[string]string
	Channel    string // Defaults to "invoke"
	DataFormat string // Defaults to "json"
	Transport  string // Empty is sent as null
	Expiration int    // Seconds; defaults to wire.BrokerDefaultExpiration

	// OutputRepeated, when nil, is inferred from Name: names ending in
	// "list" return sequences.
	OutputRepeated *bool
}

// Invoke calls the service and waits for its response.
func (s *AnyServiceInvoker) Invoke(ctx context.Context, req ServiceRequest) (*Response, error) {
	return s.invokeService(ctx, req, false)
}

// InvokeAsync asks the server to run the service asynchronously. The HTTP
// round-trip itself is still synchronous.
func (s *AnyServiceInvoker) InvokeAsync(ctx context.Context, req ServiceRequest) (*Response, error) {
	return s.invokeService(ctx, req, true)
}

func (s *AnyServiceInvoker) invokeService(ctx context.Context, req ServiceRequest, async bool) (*Response, error) {
	if req.Name == "" && req.ID == 0 {
		return nil, &UsageError{Message: "Either name or id must be provided"}
	}

	outputRepeated := false
	switch {
	case req.OutputRepeated != nil:
		outputRepeated = *req.OutputRepeated
	case req.Name != "":
		outputRepeated = strings.HasSuffix(strings.ToLower(req.Name), "list")
	}

	var payload []byte
	var err error
	if req.RawPayload {
		payload, err = rawBody(req.Payload)
	} else {
		payload, err = encodeJSON(req.Payload)
	}
	if err != nil {
		return nil, err
	}

	body, err := encodeJSON(s.envelope(req, payload, async))
	if err != nil {
		return nil, err
	}

	return s.invoke(ctx, body, FormatServiceInvoke, async, req.Headers, outputRepeated)
}

func (s *AnyServiceInvoker) envelope(req ServiceRequest, payload []byte, async bool) map[string]any {
	env := map[string]any{
		wire.KeyPayload:    base64.StdEncoding.EncodeToString(payload),
		wire.KeyChannel:    valueOr(req.Channel, wire.DefaultChannel),
		wire.KeyDataFormat: valueOr(req.DataFormat, wire.DefaultDataFormat),
		wire.KeyTransport:  nil,
		wire.KeyAsync:      async,
		wire.KeyExpiration: wire.BrokerDefaultExpiration,
	}
	if req.Name != "" {
		env[wire.KeyName] = req.Name
	} else {
		env[wire.KeyID] = req.ID
	}
	if req.Transport != "" {
		env[wire.KeyTransport] = req.Transport
	}
	if req.Expiration != 0 {
		env[wire.KeyExpiration] = req.Expiration
	}
	return env
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
