package ratelimit

import (
	"sync"
	"time"
)

// Result describes a fixed-window rate limit check. Count includes attempts
// made after the limit was already exhausted, so callers can escalate on
// sustained over-limit traffic.
type Result struct {
	Allowed   bool
	Remaining int
	Count     int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a process-local fixed-window rate limiter keyed by an arbitrary
// string (typically "<scope>:<ip>").
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewLimiter returns an empty limiter.
func NewLimiter() *Limiter {
	return &Limiter{windows: make(map[string]*window), now: time.Now}
}

// Check records one attempt for the key and reports whether it fits inside
// the current window of maxRequests per windowSize.
func (l *Limiter) Check(key string, maxRequests int, windowSize time.Duration) Result {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !w.resetAt.After(now) {
		w = &window{count: 0, resetAt: now.Add(windowSize)}
		l.windows[key] = w
	}
	w.count++

	remaining := maxRequests - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   w.count <= maxRequests,
		Remaining: remaining,
		Count:     w.count,
		ResetAt:   w.resetAt,
	}
}

// ClearExpired removes windows whose reset time has passed. Idempotent; safe
// to run on a background tick.
func (l *Limiter) ClearExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if !w.resetAt.After(now) {
			delete(l.windows, key)
		}
	}
}
