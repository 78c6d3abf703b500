package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService reports on and renews drive credentials.
type AuthService struct {
	tokens    driven.TokenProvider
	exchanger driven.CodeExchanger
}

// NewAuthService creates an auth service. exchanger may be nil when the
// provider does not support code exchange.
func NewAuthService(tokens driven.TokenProvider, exchanger driven.CodeExchanger) *AuthService {
	return &AuthService{tokens: tokens, exchanger: exchanger}
}

// Status describes the cached access token without contacting the server.
func (s *AuthService) Status(_ context.Context) (domain.TokenStatus, error) {
	return s.tokens.Status()
}

// Refresh obtains a usable token and reports the resulting cache state.
func (s *AuthService) Refresh(ctx context.Context) (domain.TokenStatus, error) {
	if _, err := s.tokens.GetToken(ctx); err != nil {
		return domain.TokenStatus{}, err
	}
	return s.tokens.Status()
}

// Exchange trades a one-time authorization code for a refresh token.
func (s *AuthService) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: authorization code is empty", domain.ErrInvalidInput)
	}
	if s.exchanger == nil {
		return "", fmt.Errorf("%w: code exchange is not supported", domain.ErrInvalidInput)
	}
	return s.exchanger.ExchangeCode(ctx, code, strings.TrimSpace(redirectURI))
}
