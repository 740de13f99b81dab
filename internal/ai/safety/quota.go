package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether a user may run another skill right now.
type RateLimiter interface {
	Allow(ctx context.Context, userID, skill string) (bool, error)
}

// TierPolicy decides whether a user's subscription covers a skill.
type TierPolicy interface {
	Permits(ctx context.Context, userID, role, skill string) (bool, error)
}

// AllowAll satisfies both RateLimiter and TierPolicy and never refuses.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string, string) (bool, error) { return true, nil }

func (AllowAll) Permits(context.Context, string, string, string) (bool, error) { return true, nil }

// RedisRateLimiter counts skill executions per user in fixed hourly windows.
type RedisRateLimiter struct {
	redis *redis.Client
	limit int64
	now   func() time.Time
}

// NewRedisRateLimiter allows limit executions per user per clock hour.
func NewRedisRateLimiter(client *redis.Client, limit int) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, errors.New("safety: redis client cannot be nil")
	}
	if limit <= 0 {
		return nil, errors.New("safety: rate limit must be positive")
	}
	return &RedisRateLimiter{redis: client, limit: int64(limit), now: time.Now}, nil
}

func (l *RedisRateLimiter) Allow(ctx context.Context, userID, _ string) (bool, error) {
	window := l.now().UTC().Truncate(time.Hour)
	key := quotaKey(userID, window)

	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Hour+time.Minute)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("safety: quota increment: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

func quotaKey(userID string, window time.Time) string {
	return fmt.Sprintf("ai:quota:%s:%s", userID, window.Format("2006010215"))
}
