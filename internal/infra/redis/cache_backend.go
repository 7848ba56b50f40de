package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheBackend stores cache entries as plain Redis strings with EX expiry,
// so several bot instances share one warm cache.
type CacheBackend struct {
	client *redis.Client
	prefix string
}

func NewCacheBackend(client *redis.Client) *CacheBackend {
	return &CacheBackend{client: client, prefix: "totem:cache:"}
}

func (b *CacheBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (b *CacheBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+key, value, ttl).Err()
}
