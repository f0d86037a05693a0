package cart

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bandar-cart/internal/storage"
)

func TestRegistryIsolatesSessions(t *testing.T) {
	slot := storage.NewMemorySlot(0)
	reg := NewRegistry(Config{Slot: slot, Policy: testPolicy(), Currency: "SAR"})
	ctx := context.Background()

	_, err := reg.Open(ctx, "")
	require.Error(t, err)

	a, err := reg.Open(ctx, "alice")
	require.NoError(t, err)
	b, err := reg.Open(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, "alice:"+DefaultKey, a.Key())

	_, err = a.AddItem(ctx, Candidate{ID: 1, Name: "A", Price: 1})
	require.NoError(t, err)
	require.Equal(t, 1, a.TotalItemCount())
	require.Zero(t, b.TotalItemCount())

	again, err := reg.Open(ctx, "alice")
	require.NoError(t, err)
	require.Same(t, a, again)
	require.Equal(t, 2, reg.Len())

	_, err = slot.Load(ctx, "alice:"+DefaultKey)
	require.NoError(t, err)
}

func TestRegistrySweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	slot := storage.NewMemorySlot(0)
	reg := NewRegistry(Config{Slot: slot, Policy: testPolicy(), Now: func() time.Time { return now }})
	ctx := context.Background()

	a, err := reg.Open(ctx, "alice")
	require.NoError(t, err)
	_, err = a.AddItem(ctx, Candidate{ID: "x", Name: "X", Price: 2, Quantity: 3})
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	_, err = reg.Open(ctx, "bob")
	require.NoError(t, err)

	require.Equal(t, 1, reg.Sweep(5*time.Minute))
	require.Equal(t, 1, reg.Len())

	reopened, err := reg.Open(ctx, "alice")
	require.NoError(t, err)
	require.NotSame(t, a, reopened)
	require.Equal(t, 3, reopened.TotalItemCount())
}

// gatedSlot blocks loads of keys under the "slow:" prefix until release is
// closed.
type gatedSlot struct {
	*storage.MemorySlot
	release chan struct{}
	entered chan struct{}
	loads   atomic.Int32
}

func (s *gatedSlot) Load(ctx context.Context, key string) ([]byte, error) {
	if strings.HasPrefix(key, "slow:") {
		s.loads.Add(1)
		select {
		case s.entered <- struct{}{}:
		default:
		}
		<-s.release
	}
	return s.MemorySlot.Load(ctx, key)
}

func TestRegistryHydratesOutsideLock(t *testing.T) {
	slot := &gatedSlot{
		MemorySlot: storage.NewMemorySlot(0),
		release:    make(chan struct{}),
		entered:    make(chan struct{}, 1),
	}
	reg := NewRegistry(Config{Slot: slot, Policy: testPolicy()})
	ctx := context.Background()

	var wg sync.WaitGroup
	stores := make([]*Store, 4)
	errs := make([]error, len(stores))
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i], errs[i] = reg.Open(ctx, "slow")
		}(i)
	}
	<-slot.entered

	done := make(chan error, 1)
	go func() {
		_, err := reg.Open(ctx, "fast")
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("open of another session blocked behind a cold hydration")
	}

	close(slot.release)
	wg.Wait()
	for i := range stores {
		require.NoError(t, errs[i])
		require.Same(t, stores[0], stores[i])
	}
	require.Equal(t, int32(1), slot.loads.Load())
	require.Equal(t, 2, reg.Len())
}
