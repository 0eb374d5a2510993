// Package ratelimit implements sliding-window request limits keyed by client identity.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for key fits in the current window
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Rule is a request budget per window
type Rule struct {
	Limit  int
	Window time.Duration
}

// disabled reports whether the rule lets every request through
func (r Rule) disabled() bool {
	return r.Limit <= 0 || r.Window <= 0
}
