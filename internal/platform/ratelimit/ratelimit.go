// Package ratelimit implements sliding-window request limiting for the HTTP
// API. Limits are per client IP; a store error lets the request through.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Allow check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only set when denied.
	RetryAfter int
}

// Store records requests per key within a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

func retryAfter(resetAt, now time.Time) int {
	secs := int(resetAt.Sub(now).Round(time.Second) / time.Second)
	return max(secs, 1)
}
