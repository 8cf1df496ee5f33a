package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const BackendRedis = "redis"

const redisKeyPrefix = "ratelimit:"

// RedisLimiter is the shared-store fixed-window backend: one global limit
// across all processes. The window starts on the first request for a key
// (INCR creates the counter, the TTL bounds the window) and atomicity is
// delegated to Redis.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int
}

// NewRedisLimiter creates a shared limiter on an existing Redis client.
func NewRedisLimiter(client *redis.Client, window time.Duration, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, window: window, limit: limit}
}

func (l *RedisLimiter) Backend() string { return BackendRedis }

// Allow performs an atomic increment-and-get for the key's current window.
// Errors are returned to the caller so the controller can apply its fallback
// policy; this backend never decides open-vs-closed itself.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := redisKeyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit increment failed: %w", err)
	}

	count := incr.Val()
	if count <= int64(l.limit) {
		return Decision{
			Allowed:   true,
			Remaining: l.limit - int(count),
			Backend:   BackendRedis,
		}, nil
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		// Counter without a deadline would deny forever; bound it by one window.
		ttl = l.window
	}
	return Decision{
		Allowed:           false,
		RetryAfterSeconds: retryAfterSeconds(ttl),
		Backend:           BackendRedis,
	}, nil
}

// Ping verifies store connectivity.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
