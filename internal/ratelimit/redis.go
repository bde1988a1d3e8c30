package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window limiter backed by Redis, so counters are
// shared between replicas and survive restarts.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	rate   int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(rdb redis.Cmdable, prefix string, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		rate:   rate,
		window: window,
		now:    time.Now,
	}
}

func (rl *RedisLimiter) Limit() int            { return rl.rate }
func (rl *RedisLimiter) Window() time.Duration { return rl.window }

func (rl *RedisLimiter) windowKey(key string, now time.Time) (string, time.Time) {
	start := now.Truncate(rl.window)
	return fmt.Sprintf("ratelimit:%s:%s:%d", rl.prefix, key, start.Unix()), start.Add(rl.window)
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey, resetAt := rl.windowKey(key, rl.now())

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	result := Result{
		Limit:   rl.rate,
		ResetAt: resetAt,
	}
	if count > rl.rate {
		return result, nil
	}
	result.Allowed = true
	result.Remaining = rl.rate - count
	return result, nil
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}
