package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skilldeck/skilldeck-go/platform/timeouts"
)

const tracerName = "github.com/skilldeck/skilldeck-go/api"

// maxErrorBody caps how much of an error response body is retained for
// logging and error messages.
const maxErrorBody = 512

// TokenSource supplies the bearer token for authenticated calls. It reports
// false when no session is active.
type TokenSource interface {
	Token() (string, bool)
}

// StatusError is returned for responses outside the 2xx range. Callers map
// status classes onto their own error taxonomy.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// DecodeError is returned when a 2xx response body cannot be decoded into
// the expected shape. It is distinct from transport errors so callers can
// report a malformed response rather than an unreachable service.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Client is the HTTP transport shared by every component that talks to the
// remote service. It attaches the session bearer token when one is active,
// tags each request with a request ID, and traces each call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewClient creates a transport rooted at baseURL. tokens may be nil for a
// transport that never authenticates implicitly.
func NewClient(baseURL string, tokens TokenSource, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeouts.Request},
		tokens:     tokens,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// SetHTTPClient replaces the underlying HTTP client, e.g. to adjust the
// request timeout.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// Authenticated reports whether an implicit bearer token is available.
func (c *Client) Authenticated() bool {
	if c.tokens == nil {
		return false
	}
	_, ok := c.tokens.Token()
	return ok
}

// Get issues a GET request, attaching the session bearer token when one is
// active, and decodes a JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, c.sessionAuth(), nil, out)
}

// GetWithBasic issues a GET request authenticated with an HTTP Basic
// credential. Used only for the token-issuance exchange.
func (c *Client) GetWithBasic(ctx context.Context, path, username, password string, out any) error {
	return c.do(ctx, http.MethodGet, path, func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}, nil, out)
}

// GetWithBearer issues a GET request with an explicit bearer token,
// bypassing the session store. Used while a token is not yet installed.
func (c *Client) GetWithBearer(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}, nil, out)
}

// Post issues a POST request with a JSON body, attaching the session bearer
// token when one is active. body and out may each be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, c.sessionAuth(), body, out)
}

func (c *Client) sessionAuth() func(*http.Request) {
	return func(req *http.Request) {
		if c.tokens == nil {
			return
		}
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, authorize func(*http.Request), body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if authorize != nil {
		authorize(req)
	}

	_, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Err(err).
			Msg("remote call failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("remote call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "unexpected status")
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return &DecodeError{Cause: err}
		}
	}
	return nil
}
