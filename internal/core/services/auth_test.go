package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

func TestAuthService_StatusDoesNotFetch(t *testing.T) {
	tokens := &fakeTokens{status: domain.TokenStatus{Cached: true, ExpiresAt: time.Now().Add(time.Hour)}}

	status, err := NewAuthService(tokens, nil).Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Cached)
	assert.Zero(t, tokens.fetches)
}

func TestAuthService_Refresh(t *testing.T) {
	tokens := &fakeTokens{token: "access"}

	status, err := NewAuthService(tokens, nil).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tokens.fetches)
	assert.True(t, status.Cached)
}

func TestAuthService_RefreshFailure(t *testing.T) {
	tokens := &fakeTokens{err: domain.ErrAuthExpired}

	_, err := NewAuthService(tokens, nil).Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestAuthService_Exchange(t *testing.T) {
	tokens := &fakeTokens{refresh: "1000.refresh"}
	svc := NewAuthService(tokens, tokens)

	refresh, err := svc.Exchange(context.Background(), "  1000.code ", " https://example.com/cb ")
	require.NoError(t, err)
	assert.Equal(t, "1000.refresh", refresh)
	assert.Equal(t, []string{"1000.code|https://example.com/cb"}, tokens.exchanged)

	_, err = svc.Exchange(context.Background(), " ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewAuthService(tokens, nil).Exchange(context.Background(), "code", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
