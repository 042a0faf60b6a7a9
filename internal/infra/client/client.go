// Package client is the dashboard's HTTP client for the shopboard REST backend.
// Every outbound call goes through Client.Request, which attaches the session
// bearer token, translates failures into domain errors and clears the session
// on 401/403.
package client

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

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/resilience"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// ServiceName labels backend errors and breaker state.
const ServiceName = "shopboard-api"

// Header names sent on every call.
const (
	HeaderPermissions = "X-User-Permissions"
	HeaderRequestID   = "X-Request-ID"
)

// RequestOptions describes one backend call.
// Data is JSON-encoded; Body is sent as-is with ContentType. Setting both is an error.
type RequestOptions struct {
	Method      string
	Data        any
	Body        io.Reader
	ContentType string
	Headers     map[string]string
	// SkipAuth omits the session bearer token. A 401/403 on such a call does
	// not clear the session.
	SkipAuth bool
}

// Options tunes a Client.
type Options struct {
	Resilience            resilience.Config
	SendPermissionsHeader bool
}

// Client calls the shopboard backend on behalf of the current session.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	session         port.SessionState
	cb              *gobreaker.CircuitBreaker
	cfg             resilience.Config
	bulkhead        *resilience.Bulkhead
	sendPermissions bool
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// New creates a Client. session may be nil for unauthenticated use.
func New(httpClient *http.Client, baseURL string, session port.SessionState, cb *gobreaker.CircuitBreaker, opts Options, metrics *observability.Metrics, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:      httpClient,
		baseURL:         strings.TrimRight(baseURL, "/"),
		session:         session,
		cb:              cb,
		cfg:             opts.Resilience,
		bulkhead:        resilience.NewBulkhead(opts.Resilience.MaxConcurrency),
		sendPermissions: opts.SendPermissionsHeader,
		metrics:         metrics,
		logger:          logger,
	}
}

// CountsAsSuccess tells the circuit breaker which outcomes say nothing about
// backend health: client errors, auth failures and success:false envelopes.
func CountsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var authErr *domain.ErrAuthenticationRequired
	var rejected *domain.ErrRejected
	var httpErr *domain.ErrHTTP
	switch {
	case errors.As(err, &authErr), errors.As(err, &rejected):
		return true
	case errors.As(err, &httpErr):
		return httpErr.Status < 500
	case errors.Is(err, context.Canceled):
		return true
	}
	return false
}

// Request performs one backend call and decodes the body into out.
// out may be nil, a *string (raw text), a *json.RawMessage or any JSON target.
// Only GETs are retried; mutations are issued exactly once.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	route := routeLabel(endpoint)

	ctx, span := tracer.Start(ctx, "Client "+method+" "+route)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	)

	if opts.Data != nil && opts.Body != nil {
		return fmt.Errorf("request %s %s: both Data and Body set", method, endpoint)
	}

	var payload []byte
	if opts.Data != nil {
		var err error
		payload, err = json.Marshal(opts.Data)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
	}

	cfg := c.cfg
	if method != http.MethodGet {
		cfg.MaxRetries = 0
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	start := time.Now()
	err := c.execute(ctx, func() error {
		return resilience.RetryWithBackoff(ctx, cfg, func() error {
			var body io.Reader
			switch {
			case payload != nil:
				body = bytes.NewReader(payload)
			case opts.Body != nil:
				body = opts.Body
			}
			return c.do(ctx, method, endpoint, body, payload != nil, opts, out)
		})
	})
	c.metrics.RecordUpstream(route, method, time.Since(start))

	if err != nil {
		c.metrics.IncrUpstreamError(errorClass(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var authErr *domain.ErrAuthenticationRequired
		if errors.As(err, &authErr) && !opts.SkipAuth {
			c.forceLogout(ctx, endpoint, authErr.Status)
		}
		return err
	}
	return nil
}

func (c *Client) execute(ctx context.Context, fn func() error) error {
	if c.cb == nil {
		return classifyTransport(fn())
	}
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("shopboard backend circuit open", zap.String("state", c.cb.State().String()))
		return &domain.ErrCircuitOpen{Service: ServiceName}
	}
	return classifyTransport(err)
}

// classifyTransport wraps anything that is not already a domain error.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	var authErr *domain.ErrAuthenticationRequired
	var httpErr *domain.ErrHTTP
	var rejected *domain.ErrRejected
	var decodeErr *decodeError
	if errors.As(err, &authErr) || errors.As(err, &httpErr) || errors.As(err, &rejected) || errors.As(err, &decodeErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &domain.ErrExternalService{Service: ServiceName, Err: err}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, jsonBody bool, opts RequestOptions, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return resilience.Permanent(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if jsonBody {
		req.Header.Set("Content-Type", "application/json")
	} else if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	if !opts.SkipAuth {
		c.attachSession(req)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return resilience.Permanent(ctx.Err())
		}
		c.logger.Warn("shopboard request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return resilience.Permanent(&domain.ErrAuthenticationRequired{Status: resp.StatusCode})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		httpErr := &domain.ErrHTTP{Status: resp.StatusCode, Body: raw}
		c.logger.Debug("shopboard request returned error status",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		if resp.StatusCode < 500 {
			return resilience.Permanent(httpErr)
		}
		return httpErr
	}

	if s, ok := out.(*string); ok {
		*s = string(raw)
		return nil
	}

	if msg, rejected := envelopeRejected(raw); rejected {
		return resilience.Permanent(&domain.ErrRejected{Message: msg})
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resilience.Permanent(&decodeError{endpoint: endpoint, err: err})
	}
	return nil
}

func (c *Client) attachSession(req *http.Request) {
	if c.session == nil {
		return
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if !c.sendPermissions {
		return
	}
	if u := c.session.User(); u != nil && u.Permissions != nil {
		if b, err := json.Marshal(u.Permissions); err == nil {
			req.Header.Set(HeaderPermissions, string(b))
		}
	}
}

func (c *Client) forceLogout(ctx context.Context, endpoint string, status int) {
	c.metrics.IncrForcedLogout()
	c.logger.Warn("backend rejected session, signing out",
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
	)
	if c.session == nil {
		return
	}
	// The caller's context may already be done; the session must still clear.
	if err := c.session.Logout(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error("forced logout failed", zap.Error(err))
	}
}

// Get issues a GET.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodGet}, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data, out any) error {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodPost, Data: data}, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, data, out any) error {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodPut, Data: data}, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, data, out any) error {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodPatch, Data: data}, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodDelete}, out)
}

// Upload sends a pre-encoded body (typically multipart) with the caller's
// content type, so the multipart boundary is preserved.
func (c *Client) Upload(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	return c.Request(ctx, endpoint, RequestOptions{Method: method, Body: body, ContentType: contentType}, out)
}

// State reports the breaker state for diagnostics.
func (c *Client) State() string {
	if c.cb == nil {
		return "disabled"
	}
	return c.cb.State().String()
}

// ============================================================
// Envelope helpers
// ============================================================

type decodeError struct {
	endpoint string
	err      error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode response of %s: %v", e.endpoint, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

// envelopeRejected reports a {"success": false} body and its message.
func envelopeRejected(raw []byte) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return "", false
	}
	if env.Success != nil && !*env.Success {
		return env.Message, true
	}
	return "", false
}

// fetchData performs a call and decodes the "data" member of the envelope into
// out. Bare JSON arrays are accepted as the data itself.
func (c *Client) fetchData(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	var raw json.RawMessage
	if err := c.Request(ctx, endpoint, opts, &raw); err != nil {
		return err
	}
	if err := unwrapData(raw, out); err != nil {
		return &decodeError{endpoint: endpoint, err: err}
	}
	return nil
}

func unwrapData(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if out == nil || len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return err
		}
		trimmed = bytes.TrimSpace(env.Data)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return nil
		}
	}
	return json.Unmarshal(trimmed, out)
}

// routeLabel collapses ids in a path so metrics and span names stay bounded.
func routeLabel(endpoint string) string {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if looksLikeID(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func looksLikeID(segment string) bool {
	if segment == "" {
		return false
	}
	if _, err := uuid.Parse(segment); err == nil {
		return true
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func errorClass(err error) string {
	var authErr *domain.ErrAuthenticationRequired
	var httpErr *domain.ErrHTTP
	var rejected *domain.ErrRejected
	var circuit *domain.ErrCircuitOpen
	var decodeErr *decodeError
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &httpErr):
		if httpErr.Status >= 500 {
			return "5xx"
		}
		return "4xx"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.As(err, &circuit):
		return "circuit_open"
	case errors.As(err, &decodeErr):
		return "decode"
	}
	return "transport"
}
