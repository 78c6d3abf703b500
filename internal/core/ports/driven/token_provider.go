package driven

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing it if the cached
	// one is missing or expired.
	GetToken(ctx context.Context) (string, error)

	// Status describes the cached token without refreshing it.
	Status() (domain.TokenStatus, error)
}

// CodeExchanger trades a one-time authorization code for tokens.
type CodeExchanger interface {
	// ExchangeCode returns the refresh token issued for code.
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
}
