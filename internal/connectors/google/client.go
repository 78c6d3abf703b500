package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// userAgent identifies doclabel in Drive's request logs.
const userAgent = "doclabel"

// tokenSource hands the provider's cached access token to the Google
// client. Refreshing stays with the provider.
type tokenSource struct {
	ctx    context.Context
	tokens driven.TokenProvider
}

func (t tokenSource) Token() (*oauth2.Token, error) {
	access, err := t.tokens.GetToken(t.ctx)
	if err != nil {
		return nil, fmt.Errorf("google access token: %w", err)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

// NewDriveService creates a Drive v3 service authorised by tokens. Extra
// options such as a test endpoint are applied last.
func NewDriveService(ctx context.Context, tokens driven.TokenProvider, opts ...option.ClientOption) (*drive.Service, error) {
	all := []option.ClientOption{
		option.WithTokenSource(tokenSource{ctx: ctx, tokens: tokens}),
		option.WithUserAgent(userAgent),
	}
	svc, err := drive.NewService(ctx, append(all, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}
