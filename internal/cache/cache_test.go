package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "tools:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "tools:all", []byte(`[{"name":"drill"}]`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := c.Get(ctx, "tools:all")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != `[{"name":"drill"}]` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := c.Delete(ctx, "tools:all"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "tools:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	c := NewRedisCache(client, "")
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "tools:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "tools:all", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := c.Get(ctx, "tools:all")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "payload" {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := c.Delete(ctx, "tools:all"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "tools:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestRedisCacheKeysAreNamespaced(t *testing.T) {
	c, srv := newRedisCache(t)

	if err := c.Set(context.Background(), "tools:all", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !srv.Exists("toolforge:cache:tools:all") {
		t.Fatalf("expected prefixed key in redis, got keys %v", srv.Keys())
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	c, srv := newRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	srv.FastForward(2 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}
