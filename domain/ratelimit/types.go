// Package ratelimit provides domain types for rate limiting.
package ratelimit

import (
	"context"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerWindow is the maximum number of requests allowed in the window.
	RequestsPerWindow int
	// WindowSize is the duration of the sliding window.
	WindowSize time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is when the rate limit window resets.
	ResetAt time.Time
	// RetryAfter is the duration to wait before retrying (only set when not allowed).
	RetryAfter time.Duration
}

// Limiter is the interface for rate limiting implementations.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Close() error
}

// DefaultLoginConfig limits login attempts to slow down credential
// stuffing. 10 attempts per minute per client IP.
func DefaultLoginConfig() Config {
	return Config{
		RequestsPerWindow: 10,
		WindowSize:        time.Minute,
	}
}
