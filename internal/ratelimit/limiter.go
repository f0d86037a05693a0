// Package ratelimit throttles cart mutations per session.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter registers a hit for key and decides whether it fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error)
}

// SlidingWindow is a sliding window limiter backed by Redis sorted sets. It
// is shared by every replica pointing at the same Redis.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
}

// Allow records a hit for key and reports whether it fits in limit per window.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	now := time.Now()
	reset := now.Add(window)
	if l.Client == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit, Reset: reset}, nil
	}

	redisKey := l.Prefix + key
	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%d", now.Add(-window).UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Reset: reset}, err
	}

	current := int(count.Val())
	return Decision{Allowed: current <= limit, Remaining: max(0, limit-current), Reset: reset}, nil
}

// Memory is a fixed window limiter kept in process memory, used when no
// Redis is configured.
type Memory struct {
	store limiter.Store
}

// NewMemory returns an in-process limiter.
func NewMemory() *Memory {
	return &Memory{store: memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "cart-ratelimit",
		CleanUpInterval: time.Minute,
	})}
}

// Allow counts a hit for key against limit per window.
func (m *Memory) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	if limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit, Reset: time.Now().Add(window)}, nil
	}
	l := limiter.New(m.store, limiter.Rate{Period: window, Limit: int64(limit)})
	res, err := l.Get(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed:   !res.Reached,
		Remaining: int(res.Remaining),
		Reset:     time.Unix(res.Reset, 0),
	}, nil
}
