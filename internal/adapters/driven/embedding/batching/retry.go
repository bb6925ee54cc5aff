package batching

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

// RetryPolicy controls how transient embedding failures are retried.
// It is injected rather than hard-coded so tests can simulate failures
// without waiting on real backoff delays.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; each further retry
	// doubles it.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Jitter is the random fraction (0..1) added to each delay to keep
	// concurrent workers from retrying in lockstep.
	Jitter float64
}

// DefaultRetryPolicy is the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		Jitter:      0.2,
	}
}

// Backoff returns the delay before the given retry attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * rand.Float64()
	}
	return time.Duration(d)
}

// retryable reports whether an error is worth another attempt.
// Rate limits, timeouts and transport hiccups are transient; malformed
// input and dimension mismatches will fail identically every time.
func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, domain.ErrMalformedInput):
		return false
	case errors.Is(err, domain.ErrDimensionMismatch):
		return false
	default:
		return true
	}
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
