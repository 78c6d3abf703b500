package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

var (
	errFlaky = errors.New("flaky")
	errFatal = errors.New("fatal")
)

func init() {
	NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
}

func isFlaky(err error) bool { return errors.Is(err, errFlaky) }

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "list", isFlaky, func() error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "list", isFlaky, func() error {
		calls++
		return errFlaky
	})
	assert.Equal(t, MaxAttempts, calls)
	assert.ErrorIs(t, err, domain.ErrRemoteTransient)
	assert.ErrorIs(t, err, errFlaky)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "list", isFlaky, func() error {
		calls++
		return errFatal
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errFatal)
	assert.NotErrorIs(t, err, domain.ErrRemoteTransient)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, "list", isFlaky, func() error {
		calls++
		cancel()
		return errFlaky
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
