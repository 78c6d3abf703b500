// Package llmhttp is the JSON-over-HTTP transport shared by the language
// model adapters. It maps error replies onto domain errors and retries
// throttled or overloaded calls.
package llmhttp

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

	"github.com/custodia-labs/doclabel/internal/connectors/retry"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/logger"
)

const (
	// DefaultTimeout bounds one model call.
	DefaultTimeout = 120 * time.Second

	maxReplyBytes   = 4 << 20
	maxMessageBytes = 300
)

// Config describes one provider endpoint.
type Config struct {
	// Provider names the service in errors and logs.
	Provider string

	// BaseURL is prefixed to every request path. Trailing slashes are dropped.
	BaseURL string

	// Header is sent with every request, e.g. API keys.
	Header http.Header

	// Timeout bounds each request (default: DefaultTimeout).
	Timeout time.Duration
}

// Client sends JSON requests to a model provider.
type Client struct {
	provider string
	baseURL  string
	header   http.Header
	http     *http.Client
}

// New creates a client for cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		provider: cfg.Provider,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		header:   cfg.Header.Clone(),
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError is a reply outside the 2xx range.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap exposes throttling and credential failures as domain errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthRequired
	}
	return nil
}

// Retryable reports whether err is worth another attempt. 529 is
// Anthropic's "overloaded".
func Retryable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout, 529:
		return true
	}
	return false
}

// PostJSON sends in to path and decodes the reply into out, retrying
// throttled and overloaded replies.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	return retry.Do(ctx, c.provider+" "+path, Retryable, func() error {
		return c.do(ctx, http.MethodPost, path, body, out)
	})
}

// Get requests path once and discards the reply. Used for pings.
func (c *Client) Get(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.provider, err)
	}
	logger.Debug("%s %s %s: %d in %v", c.provider, method, path, resp.StatusCode,
		time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// errorMessage pulls the provider's message out of an error reply. Both
// {"error":"..."} and {"error":{"message":"..."}} are understood.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Error) > 0 {
		var text string
		if json.Unmarshal(payload.Error, &text) == nil && text != "" {
			return text
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(status)
	}
	if len(msg) > maxMessageBytes {
		msg = msg[:maxMessageBytes] + "..."
	}
	return msg
}
