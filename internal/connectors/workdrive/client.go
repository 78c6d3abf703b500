package workdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/doclabel/internal/connectors/retry"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

const (
	// DefaultTimeout bounds API calls.
	DefaultTimeout = 60 * time.Second

	// DownloadTimeout bounds file downloads.
	DownloadTimeout = 120 * time.Second

	// DefaultPageSize is the listing page size when none is configured.
	DefaultPageSize = 50

	maxErrorBody = 200

	// WorkDrive throttles per user; stay well under it.
	requestsPerSecond = 5.0
	burstSize         = 10
)

// Ensure Client implements the interface.
var _ driven.RemoteDrive = (*Client)(nil)

// Client talks to the WorkDrive REST API.
type Client struct {
	apiBase    string
	orgID      string
	authScheme string
	pageSize   int

	tokens  driven.TokenProvider
	http    *http.Client
	limiter *retry.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithRateLimiter overrides request pacing.
func WithRateLimiter(l *retry.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// NewClient creates a client for the configured API base.
func NewClient(
	settings domain.WorkDriveSettings, pageSize int, tokens driven.TokenProvider, opts ...Option,
) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	scheme := settings.AuthScheme
	if scheme == "" {
		scheme = "Zoho-oauthtoken"
	}
	c := &Client{
		apiBase:    strings.TrimRight(settings.APIBase, "/"),
		orgID:      settings.OrgID,
		authScheme: scheme,
		pageSize:   pageSize,
		tokens:     tokens,
		http:       &http.Client{},
		limiter:    retry.NewLimiter(requestsPerSecond, burstSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a request with retries and returns the response body.
func (c *Client) do(
	ctx context.Context, method, path string, query url.Values, body any, timeout time.Duration,
) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	var out []byte
	err := retry.Do(ctx, method+" "+path, IsRetryable, func() error {
		data, err := c.send(ctx, method, path, query, payload, timeout)
		out = data
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// fetch sends a GET once, without retries.
func (c *Client) fetch(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	data, err := c.send(ctx, http.MethodGet, path, nil, nil, timeout)
	if err != nil {
		return nil, classify(err)
	}
	return data, nil
}

func (c *Client) send(
	ctx context.Context, method, path string, query url.Values, payload []byte, timeout time.Duration,
) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.apiBase + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.authScheme+" "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.orgID != "" {
		req.Header.Set("X-ORG-ID", c.orgID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read " + path, Err: err}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.PauseRetryAfter(resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: snippet(data), URL: target}
	}
	return data, nil
}

// classify tags a final request error with its domain error class.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrRemoteTransient) && isThrottled(err):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case errors.Is(err, domain.ErrRemoteTransient),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", domain.ErrRemotePermanent, err)
	}
	return err
}

func isThrottled(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
