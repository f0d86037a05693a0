package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores raw payloads in Redis strings.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot constructs a slot. A non-positive ttl keeps keys until deleted.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisSlot{client: client, ttl: ttl}
}

// Load returns the stored payload or ErrNotFound.
func (s *RedisSlot) Load(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("storage: redis client not configured")
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the payload with the configured TTL.
func (s *RedisSlot) Save(ctx context.Context, key string, data []byte) error {
	if s == nil || s.client == nil {
		return errors.New("storage: redis client not configured")
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Delete removes the key. Missing keys are not an error.
func (s *RedisSlot) Delete(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return errors.New("storage: redis client not configured")
	}
	return s.client.Del(ctx, key).Err()
}

// Ping probes the backing Redis within timeout.
func (s *RedisSlot) Ping(ctx context.Context, timeout time.Duration) error {
	if s == nil || s.client == nil {
		return errors.New("storage: redis client not configured")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.client.Ping(ctx).Err()
}
