package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemorySlot keeps payloads in process memory. It backs local development
// and tests when no Redis is configured.
type MemorySlot struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemorySlot constructs an empty in-memory slot.
func NewMemorySlot(ttl time.Duration) *MemorySlot {
	return &MemorySlot{TTL: ttl, entries: map[string]memoryEntry{}}
}

func (s *MemorySlot) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Load returns a copy of the stored payload or ErrNotFound.
func (s *MemorySlot) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expires.IsZero() && !s.now().Before(entry.expires) {
		delete(s.entries, key)
		return nil, ErrNotFound
	}
	return append([]byte(nil), entry.data...), nil
}

// Save stores a copy of data.
func (s *MemorySlot) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = map[string]memoryEntry{}
	}
	entry := memoryEntry{data: append([]byte(nil), data...)}
	if s.TTL > 0 {
		entry.expires = s.now().Add(s.TTL)
	}
	s.entries[key] = entry
	return nil
}

// Delete removes key.
func (s *MemorySlot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
