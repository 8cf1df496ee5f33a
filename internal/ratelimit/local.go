package ratelimit

import (
	"context"
	"sync"
	"time"
)

const BackendLocal = "local"

// bucket holds one identity's fixed window: start timestamp and count.
// Expired buckets are replaced in place, never merged.
type bucket struct {
	windowStart time.Time
	count       int
}

// LocalLimiter is the in-process fixed-window backend. Check-and-increment
// runs inside the critical section, so two racing requests on the same key
// cannot both take the last slot. Each process has an independent limit; that
// is the accepted weaker guarantee of this backend.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	window  time.Duration
	limit   int
	now     func() time.Time
}

// NewLocalLimiter creates an in-process limiter with the given window and
// per-identity limit.
func NewLocalLimiter(window time.Duration, limit int) *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*bucket),
		window:  window,
		limit:   limit,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Backend() string { return BackendLocal }

// Allow admits the request if the identity has remaining slots in its current
// window, starting a fresh window when none exists or the old one elapsed.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.window {
		l.buckets[key] = &bucket{windowStart: now, count: 1}
		return Decision{Allowed: true, Remaining: l.limit - 1, Backend: BackendLocal}, nil
	}

	if b.count < l.limit {
		b.count++
		return Decision{Allowed: true, Remaining: l.limit - b.count, Backend: BackendLocal}, nil
	}

	remaining := b.windowStart.Add(l.window).Sub(now)
	return Decision{
		Allowed:           false,
		RetryAfterSeconds: retryAfterSeconds(remaining),
		Backend:           BackendLocal,
	}, nil
}

// Reset clears all buckets.
func (l *LocalLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}
