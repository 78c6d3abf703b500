// Package oauth refreshes and caches OAuth access tokens for remote drives.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Token endpoint paths relative to the accounts host.
const (
	ZohoTokenPath   = "/oauth/v2/token"
	GoogleTokenPath = "/token"
)

const (
	// expirySkew is subtracted from the issued lifetime before caching.
	expirySkew = 60 * time.Second

	// defaultLifetime applies when the server omits expires_in.
	defaultLifetime = time.Hour

	requestTimeout = 30 * time.Second
)

// Ensure TokenProvider implements the interfaces.
var (
	_ driven.TokenProvider = (*TokenProvider)(nil)
	_ driven.CodeExchanger = (*TokenProvider)(nil)
)

// TokenProvider hands out access tokens from a file cache, refreshing
// them with the configured refresh token once they expire.
type TokenProvider struct {
	mu           sync.Mutex
	config       oauth2.Config
	refreshToken string
	cache        tokenCache
	client       *http.Client
	now          func() time.Time
}

// Option configures a TokenProvider.
type Option func(*TokenProvider)

// WithHTTPClient overrides the client used for token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *TokenProvider) { p.client = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *TokenProvider) { p.now = now }
}

// NewTokenProvider creates a provider for the given credentials. tokenPath
// is appended to the accounts host to form the token endpoint.
func NewTokenProvider(settings domain.OAuthSettings, tokenPath string, opts ...Option) *TokenProvider {
	p := &TokenProvider{
		config: oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimRight(settings.AccountsHost, "/") + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: domain.SplitList(settings.Scopes),
		},
		refreshToken: settings.RefreshToken,
		cache:        tokenCache{path: settings.TokenCache},
		client:       &http.Client{Timeout: requestTimeout},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetToken returns the cached token while it is fresh, otherwise refreshes.
func (p *TokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, ok, err := p.cache.load()
	if err != nil {
		logger.Warn("ignoring unreadable token cache: %v", err)
	}
	if ok && p.now().Before(tok.expiry()) {
		return tok.AccessToken, nil
	}
	return p.refresh(ctx)
}

// Status describes the cache without contacting the server.
func (p *TokenProvider) Status() (domain.TokenStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, ok, err := p.cache.load()
	if err != nil || !ok {
		return domain.TokenStatus{}, err
	}
	return domain.TokenStatus{Cached: true, ExpiresAt: tok.expiry()}, nil
}

// Refresh fetches a new access token regardless of the cache.
func (p *TokenProvider) Refresh(ctx context.Context) (domain.TokenStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.refresh(ctx); err != nil {
		return domain.TokenStatus{}, err
	}
	tok, _, err := p.cache.load()
	if err != nil {
		return domain.TokenStatus{}, err
	}
	return domain.TokenStatus{Cached: true, ExpiresAt: tok.expiry()}, nil
}

// ExchangeCode trades a one-time grant code for a refresh token. The
// access token issued alongside it is cached.
func (p *TokenProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	if p.config.ClientID == "" || p.config.ClientSecret == "" {
		return "", fmt.Errorf("%w: client id and secret are required", domain.ErrAuthRequired)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: authorization code is empty", domain.ErrInvalidInput)
	}

	cfg := p.config
	cfg.RedirectURL = redirectURI

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, describe(err))
	}
	if token.RefreshToken == "" {
		return "", fmt.Errorf("%w: server issued no refresh token", domain.ErrTokenRefreshFailed)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshToken = token.RefreshToken
	if err := p.cache.save(newCachedToken(token.AccessToken, p.expiry(token))); err != nil {
		logger.Warn("failed to cache access token: %v", err)
	}
	return token.RefreshToken, nil
}

// refresh must be called with mu held.
func (p *TokenProvider) refresh(ctx context.Context) (string, error) {
	if p.config.ClientID == "" || p.config.ClientSecret == "" || p.refreshToken == "" {
		return "", fmt.Errorf("%w: client id, client secret and refresh token are required",
			domain.ErrAuthRequired)
	}

	logger.Debug("refreshing access token at %s", p.config.Endpoint.TokenURL)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	token, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: p.refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, describe(err))
	}

	if err := p.cache.save(newCachedToken(token.AccessToken, p.expiry(token))); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// expiry returns when a freshly issued token should stop being used.
func (p *TokenProvider) expiry(token *oauth2.Token) time.Time {
	if token.Expiry.IsZero() {
		return p.now().Add(defaultLifetime - expirySkew)
	}
	return token.Expiry.Add(-expirySkew)
}

// describe extracts the server's error code from a token endpoint failure.
func describe(err error) string {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.ErrorCode != "" {
			if rerr.ErrorDescription != "" {
				return rerr.ErrorCode + ": " + rerr.ErrorDescription
			}
			return rerr.ErrorCode
		}
		if rerr.Response != nil {
			return fmt.Sprintf("token endpoint returned %d", rerr.Response.StatusCode)
		}
	}
	return err.Error()
}
