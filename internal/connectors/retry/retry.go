// Package retry runs remote calls with bounded exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// MaxAttempts is the total number of tries, including the first.
const MaxAttempts = 5

// NewBackOff builds the wait schedule between attempts. Tests replace it
// to avoid real sleeps.
var NewBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Do calls op until it succeeds, returns an error retryable rejects, or
// MaxAttempts is reached. An error still retryable after the last attempt
// is wrapped with domain.ErrRemoteTransient.
func Do(ctx context.Context, what string, retryable func(error) bool, op func() error) error {
	attempt := 0
	b := backoff.WithContext(backoff.WithMaxRetries(NewBackOff(), MaxAttempts-1), ctx)

	err := backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err == nil || retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, b, func(err error, wait time.Duration) {
		logger.Debug("%s failed (attempt %d/%d), retrying in %v: %v", what, attempt, MaxAttempts, wait, err)
	})

	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if retryable(err) {
		return fmt.Errorf("%w: %s gave up after %d attempts: %w", domain.ErrRemoteTransient, what, attempt, err)
	}
	return err
}
