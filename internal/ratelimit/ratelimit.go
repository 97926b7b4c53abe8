// Package ratelimit bounds how often a single client may hit expensive
// endpoints (the AI explanation proxy in particular). The limiter is injected
// rather than process-global so single-instance deployments can use the
// in-memory window while multi-instance ones share a Redis counter.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision reports the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the client's window frees up again.
	ResetAt time.Time
}

// Limiter admits or rejects a request for the given client key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// WindowLimiter is an in-memory sliding-window limiter: it keeps the
// timestamps of each client's recent requests and admits while fewer than
// maxRequests fall inside the window.
type WindowLimiter struct {
	window time.Duration
	max    int
	clock  func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time
	calls    int
}

// NewWindowLimiter builds a limiter admitting max requests per window.
func NewWindowLimiter(max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		window:   window,
		max:      max,
		clock:    time.Now,
		requests: make(map[string][]time.Time),
	}
}

// NewWindowLimiterWithClock is test-only for deterministic time.
func NewWindowLimiterWithClock(max int, window time.Duration, clock func() time.Time) *WindowLimiter {
	l := NewWindowLimiter(max, window)
	l.clock = clock
	return l
}

func (l *WindowLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	windowStart := now.Add(-l.window)

	recent := l.requests[key][:0]
	for _, ts := range l.requests[key] {
		if ts.After(windowStart) {
			recent = append(recent, ts)
		}
	}

	decision := Decision{Limit: l.max, ResetAt: l.resetAtLocked(recent, now)}
	if len(recent) >= l.max {
		l.requests[key] = recent
		return decision, nil
	}

	recent = append(recent, now)
	l.requests[key] = recent
	decision.Allowed = true
	decision.Remaining = l.max - len(recent)
	decision.ResetAt = l.resetAtLocked(recent, now)

	// Drop idle clients every so often to keep the map bounded.
	l.calls++
	if l.calls%128 == 0 {
		l.cleanupLocked(windowStart)
	}
	return decision, nil
}

func (l *WindowLimiter) resetAtLocked(recent []time.Time, now time.Time) time.Time {
	if len(recent) == 0 {
		return now
	}
	return recent[0].Add(l.window)
}

func (l *WindowLimiter) cleanupLocked(windowStart time.Time) {
	for key, timestamps := range l.requests {
		kept := timestamps[:0]
		for _, ts := range timestamps {
			if ts.After(windowStart) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(l.requests, key)
		} else {
			l.requests[key] = kept
		}
	}
}
