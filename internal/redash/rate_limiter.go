package redash

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests sent to the Redash API
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token bucket allowing rps requests per second
// with a burst of 2*rps. rps <= 0 disables limiting.
func NewRateLimiter(rps int) *RateLimiter {
	if rps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), rps*2),
	}
}

// Wait blocks until the limiter allows a request or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// Allow checks if a request is allowed without blocking
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}
