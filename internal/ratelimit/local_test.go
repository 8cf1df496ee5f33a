package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"alumni-match/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests step through windows deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLocalLimiter(window time.Duration, limit int) (*LocalLimiter, *fakeClock) {
	l := NewLocalLimiter(window, limit)
	clock := newFakeClock()
	l.now = clock.now
	return l, clock
}

func TestLocalLimiterAdmitsExactlyLimit(t *testing.T) {
	const limit = 5
	l, _ := newTestLocalLimiter(time.Hour, limit)
	ctx := context.Background()

	for i := 0; i < limit; i++ {
		d, err := l.Allow(ctx, "user:a")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, limit-i-1, d.Remaining)
	}

	d, err := l.Allow(ctx, "user:a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfterSeconds, 0)
	assert.LessOrEqual(t, d.RetryAfterSeconds, 3600)
}

func TestLocalLimiterWindowReset(t *testing.T) {
	l, clock := newTestLocalLimiter(time.Hour, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "user:a")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, _ := l.Allow(ctx, "user:a")
	require.False(t, d.Allowed)

	clock.advance(time.Hour)

	d, err := l.Allow(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "fresh window should admit")
	assert.Equal(t, 1, d.Remaining)
}

func TestLocalLimiterRetryAfterShrinks(t *testing.T) {
	l, clock := newTestLocalLimiter(time.Hour, 1)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "user:a")
	require.True(t, d.Allowed)

	d, _ = l.Allow(ctx, "user:a")
	require.False(t, d.Allowed)
	assert.Equal(t, 3600, d.RetryAfterSeconds)

	clock.advance(59 * time.Minute)
	d, _ = l.Allow(ctx, "user:a")
	require.False(t, d.Allowed)
	assert.Equal(t, 60, d.RetryAfterSeconds)
}

func TestLocalLimiterRetryAfterRoundsUp(t *testing.T) {
	l, clock := newTestLocalLimiter(time.Hour, 1)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "user:a")
	require.True(t, d.Allowed)

	clock.advance(59*time.Minute + 59*time.Second + 500*time.Millisecond)
	d, _ = l.Allow(ctx, "user:a")
	require.False(t, d.Allowed)
	assert.Equal(t, 1, d.RetryAfterSeconds)
}

func TestLocalLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLocalLimiter(time.Hour, 1)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "user:a")
	require.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "user:a")
	require.False(t, d.Allowed)

	d, _ = l.Allow(ctx, "user:b")
	assert.True(t, d.Allowed, "another identity has its own bucket")
}

// Concurrent requests racing on the same identity must not over-admit.
func TestLocalLimiterConcurrentAdmission(t *testing.T) {
	const limit = 50
	const goroutines = 200
	l, _ := newTestLocalLimiter(time.Hour, limit)
	ctx := context.Background()

	var admitted int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "user:hot")
			if err == nil && d.Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted)
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name         string
		subject      string
		forwardedFor string
		remoteAddr   string
		expected     string
	}{
		{"authenticated", "u-42", "", "10.0.0.1:1234", "user:u-42"},
		{"forwarded for", "", "203.0.113.7, 10.0.0.1", "10.0.0.1:1234", "ip:203.0.113.7"},
		{"remote addr", "", "", "192.0.2.4:9999", "ip:192.0.2.4"},
		{"anonymous", "", "", "", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *identity.Claims
			if tt.subject != "" {
				claims = &identity.Claims{SubjectID: tt.subject}
			}
			assert.Equal(t, tt.expected, KeyFor(claims, tt.forwardedFor, tt.remoteAddr))
		})
	}
}
