package driving

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// AuthService manages remote drive credentials.
type AuthService interface {
	// Status describes the cached access token.
	Status(ctx context.Context) (domain.TokenStatus, error)

	// Refresh forces a token fetch, refreshing when the cache is stale.
	Refresh(ctx context.Context) (domain.TokenStatus, error)

	// Exchange trades an authorization code for a refresh token.
	Exchange(ctx context.Context, code, redirectURI string) (string, error)
}
