package memory

import (
	"context"
	"sync"
	"time"
)

// CacheBackend keeps cache entries in process memory with per-entry expiry.
type CacheBackend struct {
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedEntry
}

type cachedEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewCacheBackend() *CacheBackend {
	return NewCacheBackendWithClock(time.Now)
}

// NewCacheBackendWithClock allows tests to drive expiry deterministically.
func NewCacheBackendWithClock(clock func() time.Time) *CacheBackend {
	return &CacheBackend{
		clock:   clock,
		entries: make(map[string]cachedEntry),
	}
}

func (b *CacheBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := b.clock()

	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.After(now) {
		b.mu.Lock()
		if current, ok := b.entries[key]; ok && !current.expiresAt.After(now) {
			delete(b.entries, key)
		}
		b.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (b *CacheBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	b.entries[key] = cachedEntry{value: value, expiresAt: b.clock().Add(ttl)}
	b.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (b *CacheBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
