package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCacheBackendRoundTripAndExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	backend := NewCacheBackend(newClient(mr))
	ctx := context.Background()

	if _, ok, err := backend.Get(ctx, "active_quiz"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := backend.Set(ctx, "active_quiz", []byte(`{"found":true}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("totem:cache:active_quiz") {
		t.Fatalf("expected prefixed key in redis")
	}
	raw, ok, err := backend.Get(ctx, "active_quiz")
	if err != nil || !ok || string(raw) != `{"found":true}` {
		t.Fatalf("unexpected get result %q ok=%v err=%v", raw, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := backend.Get(ctx, "active_quiz"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
