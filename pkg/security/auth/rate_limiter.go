package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter defines an interface for rate limiting functionality
type RateLimiter interface {
	// Allow counts a request against key
	Allow(ctx context.Context, key string) (Decision, error)
	// Reset resets the counter for a specific key
	Reset(ctx context.Context, key string) error
}

// RedisRateLimiter is a fixed-window counter kept in Redis.
type RedisRateLimiter struct {
	client      *redis.Client
	prefix      string
	window      time.Duration
	maxRequests int64
}

// NewRedisRateLimiter allows maxRequests per window for each key.
func NewRedisRateLimiter(client *redis.Client, prefix string, window time.Duration, maxRequests int64) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		prefix:      prefix + "ratelimit:",
		window:      window,
		maxRequests: maxRequests,
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := rl.prefix + key
	windowStart := time.Now().Truncate(rl.window)
	resetAt := windowStart.Add(rl.window)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, resetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limiter error: %w", err)
	}

	count := incr.Val()
	remaining := rl.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= rl.maxRequests,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}, nil
}

func (rl *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.prefix+key).Err()
}
