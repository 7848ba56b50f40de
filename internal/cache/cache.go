package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"totem-quiz-bot/internal/logger"
)

// DefaultTTL bounds how stale a cached reference record may get.
const DefaultTTL = 300 * time.Second

// Backend stores opaque cache entries with an expiry (in-memory, Redis, etc).
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is a read-through cache in front of a slower source of truth.
// Backend failures degrade to a direct load; they never fail the read.
type Cache struct {
	backend Backend
	ttl     time.Duration
	log     *logger.Logger
	sf      singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(backend Backend, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		backend: backend,
		ttl:     ttl,
		log:     log.With("component", "cache"),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// entry also records misses so "none" answers are cached like values.
type entry[T any] struct {
	Found bool `json:"found"`
	Value T    `json:"value"`
}

// Fetch returns the cached value for key, or calls load on a miss and stores the result.
// Concurrent misses for the same key share one load.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, bool, error)) (T, bool, error) {
	if e, ok := lookup[T](ctx, c, key); ok {
		return e.Value, e.Found, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if e, ok := lookup[T](ctx, c, key); ok {
			return e, nil
		}
		value, found, err := load(ctx)
		if err != nil {
			return nil, err
		}
		e := entry[T]{Found: found, Value: value}
		c.store(ctx, key, e)
		return e, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	e := result.(entry[T])
	return e.Value, e.Found, nil
}

func lookup[T any](ctx context.Context, c *Cache, key string) (entry[T], bool) {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache get failed", "key", key, "error", err)
		return entry[T]{}, false
	}
	if !ok {
		return entry[T]{}, false
	}
	var e entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn("cache entry unreadable", "key", key, "error", err)
		return entry[T]{}, false
	}
	return e, true
}

func (c *Cache) store(ctx context.Context, key string, e interface{}) {
	raw, err := json.Marshal(e)
	if err != nil {
		c.log.Warn("cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, raw, c.ttlWithJitter()); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

// ttlWithJitter shortens the TTL by up to 10% to spread expirations without exceeding the bound.
func (c *Cache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	jitter := c.rnd.Int63n(jitterMax + 1)
	c.mu.Unlock()
	return c.ttl - time.Duration(jitter)
}
