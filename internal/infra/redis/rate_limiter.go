package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"utme-prep-service/internal/ratelimit"
)

// RateLimiter is a fixed-window limiter backed by a shared Redis counter, so
// multiple app instances enforce one budget per client.
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	clock  func() time.Time
}

func NewRateLimiter(client *redis.Client, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, max: max, window: window, clock: time.Now}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	redisKey := "ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return ratelimit.Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	resetAt := l.clock().Add(l.window)
	if ttl, err := l.client.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
		resetAt = l.clock().Add(ttl)
	}

	decision := ratelimit.Decision{
		Limit:   l.max,
		ResetAt: resetAt,
	}
	if count > int64(l.max) {
		return decision, nil
	}
	decision.Allowed = true
	decision.Remaining = l.max - int(count)
	return decision, nil
}
