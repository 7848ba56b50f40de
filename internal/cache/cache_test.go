package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"totem-quiz-bot/internal/cache"
	"totem-quiz-bot/internal/infra/memory"
)

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestFetchCachesMisses(t *testing.T) {
	c := cache.New(memory.NewCacheBackend(), time.Minute, nil)
	ctx := context.Background()
	var loads int

	load := func(context.Context) (string, bool, error) {
		loads++
		return "", false, nil
	}
	for i := 0; i < 3; i++ {
		_, found, err := cache.Fetch(ctx, c, "missing", load)
		if err != nil || found {
			t.Fatalf("expected cached miss, got found=%v err=%v", found, err)
		}
	}
	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := cache.New(memory.NewCacheBackend(), time.Minute, nil)
	ctx := context.Background()
	var loads int

	load := func(context.Context) (int, bool, error) {
		loads++
		if loads == 1 {
			return 0, false, errors.New("db down")
		}
		return 42, true, nil
	}
	if _, _, err := cache.Fetch(ctx, c, "k", load); err == nil {
		t.Fatalf("expected load error")
	}
	v, found, err := cache.Fetch(ctx, c, "k", load)
	if err != nil || !found || v != 42 {
		t.Fatalf("got %d %v %v", v, found, err)
	}
}

func TestFetchSharesConcurrentLoads(t *testing.T) {
	c := cache.New(memory.NewCacheBackend(), time.Minute, nil)
	ctx := context.Background()
	var loads int32
	release := make(chan struct{})

	load := func(context.Context) (int, bool, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return 7, true, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, _, err := cache.Fetch(ctx, c, "shared", load); err != nil || v != 7 {
				t.Errorf("got %d %v", v, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("expected one shared load, got %d", n)
	}
}

func TestFetchSurvivesBrokenBackend(t *testing.T) {
	c := cache.New(brokenBackend{}, time.Minute, nil)
	v, found, err := cache.Fetch(context.Background(), c, "k", func(context.Context) (string, bool, error) {
		return "fresh", true, nil
	})
	if err != nil || !found || v != "fresh" {
		t.Fatalf("got %q %v %v", v, found, err)
	}
}

func TestDefaultTTL(t *testing.T) {
	if got := cache.New(memory.NewCacheBackend(), 0, nil).TTL(); got != cache.DefaultTTL {
		t.Fatalf("expected default TTL, got %s", got)
	}
}
