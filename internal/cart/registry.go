package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/bandar-cart/internal/obs"
	"github.com/noah-isme/bandar-cart/internal/session"
)

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per session, hydrating it on first use.
type Registry struct {
	base Config
	cold singleflight.Group

	mu     sync.Mutex
	stores map[string]*registryEntry
}

// NewRegistry returns a registry whose stores are built from base. base.Key
// is the per-session slot name; it is prefixed with the session id.
func NewRegistry(base Config) *Registry {
	if base.Key == "" {
		base.Key = DefaultKey
	}
	return &Registry{base: base, stores: map[string]*registryEntry{}}
}

func (r *Registry) now() time.Time {
	if r.base.Now != nil {
		return r.base.Now()
	}
	return time.Now()
}

// Open returns the store of sessionID, constructing it when needed.
// Hydration runs outside the registry lock; concurrent opens of the same cold
// session share one hydration.
func (r *Registry) Open(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, errors.New("cart: session is required")
	}
	if store, ok := r.lookup(sessionID); ok {
		return store, nil
	}
	v, err, _ := r.cold.Do(sessionID, func() (any, error) {
		if store, ok := r.lookup(sessionID); ok {
			return store, nil
		}
		cfg := r.base
		cfg.Session = sessionID
		cfg.Key = session.PrefixKey(sessionID, r.base.Key)
		store, err := NewStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stores[sessionID] = &registryEntry{store: store, lastUsed: r.now()}
		r.reportLocked()
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (r *Registry) lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.stores[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastUsed = r.now()
	return entry.store, true
}

// Len reports the number of open stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep drops stores unused for longer than idle. Their state stays in
// storage and is hydrated again on the next Open.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, entry := range r.stores {
		if entry.lastUsed.Before(cutoff) {
			delete(r.stores, id)
			dropped++
		}
	}
	r.reportLocked()
	return dropped
}

func (r *Registry) reportLocked() {
	if obs.CartSessionsOpen != nil {
		obs.CartSessionsOpen.Set(float64(len(r.stores)))
	}
}
