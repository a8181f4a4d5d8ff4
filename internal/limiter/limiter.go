package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter caps how often a key may be tried within a window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

func NewRedisLimiter(client *redis.Client, limit int64, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RedisLimiter is a fixed-window counter.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// Allow counts the attempt and sets the window TTL in one MULTI/EXEC. The
// first hit opens the window; later hits leave the TTL alone.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, limiterKey(key))
		pipe.ExpireNX(ctx, limiterKey(key), l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis attempt count failed: %w", err)
	}

	return incr.Val() <= l.limit, nil
}

func limiterKey(key string) string {
	return fmt.Sprintf("confirm-attempts:%s", key)
}

// Noop allows everything. Used when no redis is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) {
	return true, nil
}
