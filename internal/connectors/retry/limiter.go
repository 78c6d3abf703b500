package retry

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests to one remote API with a token bucket. A
// throttled response can pause it for a while on top of the bucket.
type Limiter struct {
	mu          sync.Mutex
	bucket      *rate.Limiter
	pausedUntil time.Time
}

// NewLimiter allows perSecond requests on average with bursts of burst.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Unlimited returns a limiter that only honours pauses.
func Unlimited() *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Inf, 1)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	until := l.pausedUntil
	l.mu.Unlock()

	if d := time.Until(until); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.bucket.Wait(ctx)
}

// Pause holds every request for d. A shorter pause never cuts a longer
// one short.
func (l *Limiter) Pause(d time.Duration) {
	if d <= 0 {
		return
	}
	until := time.Now().Add(d)

	l.mu.Lock()
	defer l.mu.Unlock()
	if until.After(l.pausedUntil) {
		l.pausedUntil = until
	}
}

// PauseRetryAfter applies a Retry-After header given in seconds. Missing
// or malformed headers are ignored.
func (l *Limiter) PauseRetryAfter(header string) {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		return
	}
	l.Pause(time.Duration(seconds) * time.Second)
}

// Paused reports whether a pause is in effect.
func (l *Limiter) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Now().Before(l.pausedUntil)
}
