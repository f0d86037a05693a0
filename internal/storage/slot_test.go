package storage_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bandar-cart/internal/storage"
)

func TestRedisSlotRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	slot := storage.NewRedisSlot(client, time.Minute)

	_, err = slot.Load(ctx, "s1:cart")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, slot.Save(ctx, "s1:cart", []byte(`[]`)))
	data, err := slot.Load(ctx, "s1:cart")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))
	require.Equal(t, time.Minute, mr.TTL("s1:cart"))

	mr.FastForward(2 * time.Minute)
	_, err = slot.Load(ctx, "s1:cart")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, slot.Save(ctx, "s1:cart", []byte(`[1]`)))
	require.NoError(t, slot.Delete(ctx, "s1:cart"))
	_, err = slot.Load(ctx, "s1:cart")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, slot.Ping(ctx, 100*time.Millisecond))
}

func TestRedisSlotWithoutTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	slot := storage.NewRedisSlot(client, 0)
	require.NoError(t, slot.Save(context.Background(), "k", []byte("v")))
	require.Zero(t, mr.TTL("k"))
}

func TestMemorySlotExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	slot := storage.NewMemorySlot(time.Minute)
	slot.Now = func() time.Time { return now }
	ctx := context.Background()

	payload := []byte("abc")
	require.NoError(t, slot.Save(ctx, "k", payload))
	payload[0] = 'x'

	data, err := slot.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))

	now = now.Add(time.Minute)
	_, err = slot.Load(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
