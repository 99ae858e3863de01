// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

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
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/templeops/templeadmin/internal/fieldcodec"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for caller handling.
type ErrorType int

const (
	// ErrTypeConnection means the service could not be reached.
	ErrTypeConnection ErrorType = iota
	// ErrTypeTimeout means the request or its throttle wait ran out of time.
	ErrTypeTimeout
	// ErrTypeUnauthorized means the service rejected the session token.
	ErrTypeUnauthorized
	// ErrTypeNotFound means the resource does not exist.
	ErrTypeNotFound
	// ErrTypeRejected means the service answered but refused the request.
	ErrTypeRejected
	// ErrTypeInvalidResponse means the response could not be decoded.
	ErrTypeInvalidResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeUnauthorized:
		return "unauthorized"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeRejected:
		return "rejected"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// APIError is returned by every Client method except Authenticate.
type APIError struct {
	Type ErrorType
	// Status is the HTTP status when the service answered, else 0.
	Status  int
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsType reports whether err is an *APIError of type t.
func IsType(err error, t ErrorType) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Type == t
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond <= 0 disables throttling.
	RequestsPerSecond float64
	Burst             int

	// Passphrase is the shared secret for encrypted record fields.
	Passphrase string

	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://localhost:5000/api",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
		UserAgent:         "templeadmin",
	}
}

// TokenSource supplies the current session token. An empty token sends no
// Authorization header.
type TokenSource func() string

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// =============================================================================
// CLIENT
// =============================================================================

// Client is an HTTP client for the admin service.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	codec      *fieldcodec.Codec
	token      TokenSource
	log        zerolog.Logger
}

// NewClient creates a client for baseURL with default settings.
func NewClient(baseURL string) *Client {
	config := DefaultConfig()
	config.BaseURL = baseURL
	return NewClientWithConfig(config)
}

// NewClientWithConfig creates a client with custom configuration. Zero
// values fall back to DefaultConfig.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.Burst <= 0 {
		config.Burst = def.Burst
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(limit, config.Burst),
		codec:   fieldcodec.New(config.Passphrase),
		log:     zerolog.Nop(),
	}
}

// SetTokenSource installs the session token provider.
func (c *Client) SetTokenSource(src TokenSource) {
	c.token = src
}

// SetLogger sets the request logger.
func (c *Client) SetLogger(log zerolog.Logger) {
	c.log = log.With().Str("component", "api").Logger()
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Codec returns the field codec used to decode records.
func (c *Client) Codec() *fieldcodec.Codec {
	return c.codec
}

// =============================================================================
// TRANSPORT
// =============================================================================

// Envelope is the response wrapper used by every service endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (e *Envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type rawResponse struct {
	status int
	body   []byte
}

func (r *rawResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.BaseURL + path
}

// send performs one request and returns the raw status and body. Only
// transport failures are errors here.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*rawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Type: ErrTypeTimeout, Message: "request throttled", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, &APIError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", reqID).Str("method", method).Str("path", path).Msg("request failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &APIError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return nil, &APIError{Type: ErrTypeConnection, Message: "service unreachable", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Type: ErrTypeConnection, Status: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

// do performs a request and unwraps the service envelope. Non-2xx answers
// and envelopes with success=false become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Envelope, error) {
	raw, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw.body, &env)

	if !raw.ok() {
		msg := env.text()
		if msg == "" {
			msg = http.StatusText(raw.status)
		}
		typ := ErrTypeRejected
		switch raw.status {
		case http.StatusUnauthorized, http.StatusForbidden:
			typ = ErrTypeUnauthorized
		case http.StatusNotFound:
			typ = ErrTypeNotFound
		}
		return nil, &APIError{Type: typ, Status: raw.status, Message: msg}
	}

	if decodeErr != nil {
		return nil, &APIError{Type: ErrTypeInvalidResponse, Status: raw.status, Message: "failed to decode response", Cause: decodeErr}
	}
	if !env.Success {
		msg := env.text()
		if msg == "" {
			msg = "request failed"
		}
		return nil, &APIError{Type: ErrTypeRejected, Status: raw.status, Message: msg}
	}
	return &env, nil
}

// doJSON marshals payload (nil sends no body) and calls do.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*Envelope, error) {
	if payload == nil {
		return c.do(ctx, method, path, nil, "")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}
	return c.do(ctx, method, path, bytes.NewReader(body), "application/json")
}

func escapeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return "", fmt.Errorf("invalid record id %q", id)
	}
	return id, nil
}
