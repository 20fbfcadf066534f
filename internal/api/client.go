// Package api is the HTTP client for the RezAi admin REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/rezai-admin/internal/log"
	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
	"github.com/felixgeelhaar/rezai-admin/internal/telemetry"
)

// TokenFunc returns the bearer token to attach to a request, or "" for none.
type TokenFunc func(ctx context.Context) string

// Client is the admin API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
	metrics    *metrics.Metrics
	logger     *log.Logger
	requestID  func() string
	tracer     trace.TracerProvider
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithToken sets the bearer token source.
func WithToken(fn TokenFunc) Option {
	return func(c *Client) { c.token = fn }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracerProvider records a client span per request and propagates
// trace context to the API.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp
		c.httpClient.Transport = telemetry.Transport(c.httpClient.Transport, tp)
	}
}

// NewClient creates a new admin API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     log.Discard(),
		requestID:  func() string { return uuid.NewString() },
		tracer:     noop.NewTracerProvider(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is a non-success answer from the API.
type Error struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// ServerMessage extracts the server-provided message from err, or "".
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// envelope is the {"data": ...} wrapper every endpoint answers with.
// Error bodies carry message or msg; a few endpoints flag failure with
// "error": true on a 2xx response.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Error   json.RawMessage `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Msg != "" {
		return e.Msg
	}
	var s string
	if len(e.Error) > 0 && json.Unmarshal(e.Error, &s) == nil {
		return s
	}
	return ""
}

func (e envelope) failed() bool {
	var flag bool
	if len(e.Error) > 0 && json.Unmarshal(e.Error, &flag) == nil {
		return flag
	}
	return false
}

// request describes one API call. route is the path template used as the
// metrics label; path is the concrete path with parameters filled in.
type request struct {
	method string
	route  string
	path   string
	body   any
	auth   bool
}

// do performs req and decodes the envelope's data into target (if non-nil).
func (c *Client) do(ctx context.Context, req request, target any) (err error) {
	ctx, span := telemetry.StartRequestSpan(ctx, c.tracer, req.method, req.route)
	status := 0
	defer func() { telemetry.EndSpan(span, status, err) }()

	var reqBody io.Reader
	if req.body != nil {
		jsonBody, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := c.requestID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.auth && c.token != nil {
		if token := c.token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := c.logger.With("method", req.method, "route", req.route, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.method, req.route, 0, time.Since(start))
		c.metrics.ObserveRequestError(req.method, req.route, "network")
		logger.WithError(err).Warn("api request failed")
		return fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	elapsed := time.Since(start)
	c.metrics.ObserveRequest(req.method, req.route, resp.StatusCode, elapsed)
	logger.Debug("api request", "status", resp.StatusCode, "elapsed", elapsed)

	if err := parseResponse(resp, target); err != nil {
		kind := "decode"
		var apiErr *Error
		if errors.As(err, &apiErr) {
			kind = "status"
		}
		c.metrics.ObserveRequestError(req.method, req.route, kind)
		return err
	}
	return nil
}

// parseResponse unwraps the envelope into target.
func parseResponse(resp *http.Response, target any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if decodeErr == nil {
			apiErr.Message = env.message()
		}
		return apiErr
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if env.failed() {
		return &Error{StatusCode: resp.StatusCode, Message: env.message(), Body: string(body)}
	}

	if target == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
