// Package throttle spaces outbound provider requests with a token
// bucket so batch embedding and generation runs stay inside quota.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter caps the request rate against a provider API.
// A nil Limiter never waits, so callers can thread it through
// unconditionally.
type Limiter struct {
	bucket *rate.Limiter
}

// PerMinute returns a limiter admitting n requests per minute, with a
// burst allowance of a tenth of that. Non-positive n disables limiting.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		return nil
	}
	burst := n / 10
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), burst),
	}
}

// Wait blocks until the next request may be sent or ctx ends.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.bucket == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}
