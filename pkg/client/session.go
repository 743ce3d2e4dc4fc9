package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/usestring/zato-client-go/pkg/contenttype"
)

// RawResponse is the transport-level result of one HTTP call.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Text       string // Body decoded to UTF-8 using the response charset
	OK         bool   // Status code below 400
}

// Session performs HTTP POST requests on behalf of clients.
// Implementations must be safe for concurrent use and keep no per-call state.
type Session interface {
	Post(ctx context.Context, address string, body []byte, headers map[string]string) (*RawResponse, error)
}

// HTTPSession is the default Session backed by net/http.
type HTTPSession struct {
	httpClient *http.Client
	timeout    time.Duration
	auth       *basicAuth
	userAgent  string
}

type basicAuth struct {
	username string
	password string
}

// DefaultUserAgent is sent by HTTPSession unless overridden.
const DefaultUserAgent = "zato-client-go/1.0"

// SessionOption is a functional option for configuring an HTTPSession.
type SessionOption func(*HTTPSession)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) SessionOption {
	return func(s *HTTPSession) {
		s.httpClient = httpClient
	}
}

// WithTimeout sets the end-to-end timeout of each request. It applies to
// the client given with WithHTTPClient, whatever the option order, without
// modifying that client.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *HTTPSession) {
		s.timeout = d
	}
}

// WithSessionAuth sets HTTP basic auth credentials sent with every request.
func WithSessionAuth(username, password string) SessionOption {
	return func(s *HTTPSession) {
		s.auth = &basicAuth{username: username, password: password}
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(userAgent string) SessionOption {
	return func(s *HTTPSession) {
		s.userAgent = userAgent
	}
}

// NewHTTPSession creates a new HTTP session.
func NewHTTPSession(opts ...SessionOption) *HTTPSession {
	s := &HTTPSession{
		httpClient: http.DefaultClient,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeout > 0 {
		c := *s.httpClient
		c.Timeout = s.timeout
		s.httpClient = &c
	}
	return s
}

// Post sends body to address and reads the whole response.
// Only failures to obtain a response are returned as errors; HTTP error
// statuses are reported through RawResponse.OK.
func (s *HTTPSession) Post(ctx context.Context, address string, body []byte, headers map[string]string) (*RawResponse, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, address, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if s.auth != nil {
		req.SetBasicAuth(s.auth.username, s.auth.password)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", http.MethodPost),
			slog.String("address", address),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	slog.Debug("HTTP request completed",
		slog.String("method", http.MethodPost),
		slog.String("address", address),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Text:       decodeText(data, resp.Header.Get("Content-Type")),
		OK:         resp.StatusCode < http.StatusBadRequest,
	}, nil
}

// decodeText converts a body to UTF-8 according to the charset named in
// contentType. Unknown charsets and UTF-8 bodies are returned unchanged.
func decodeText(data []byte, contentType string) string {
	charset := contenttype.Charset(contentType)
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(data)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
