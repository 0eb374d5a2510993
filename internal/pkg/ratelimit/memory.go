package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process sliding-window limiter for single instance deployments
type MemoryLimiter struct {
	mu     sync.Mutex
	rule   Rule
	hits   map[string][]time.Time
	now    func() time.Time
	sweeps int
}

// NewMemoryLimiter creates a new MemoryLimiter
func NewMemoryLimiter(rule Rule) *MemoryLimiter {
	return &MemoryLimiter{
		rule: rule,
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Allow records the request and reports whether it is within the limit
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	if key == "" || l.rule.disabled() {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.rule.Window)
	recent := prune(l.hits[key], cutoff)

	l.sweeps++
	if l.sweeps%1024 == 0 {
		l.sweep(cutoff)
	}

	if len(recent) >= l.rule.Limit {
		l.hits[key] = recent
		return false
	}
	l.hits[key] = append(recent, now)
	return true
}

// sweep drops keys with no hits inside the window
func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for k, v := range l.hits {
		if len(prune(v, cutoff)) == 0 {
			delete(l.hits, k)
		}
	}
}

// prune keeps timestamps after cutoff; hits are appended in order
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
