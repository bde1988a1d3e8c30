// Package ratelimit counts requests per key within a fixed time window.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the state of a key after a request was counted.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts a request against key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Limit() int
	Window() time.Duration
}
