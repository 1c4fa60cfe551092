package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"newshub/internal/infra/cache"
)

func newTestRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewRedisCacheWithClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

/* ─────────────────────────── 1. Set / Get ─────────────────────────── */

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "news:article:1", []byte(`{"id":1}`), time.Hour); err != nil {
		t.Fatalf("Set err=%v", err)
	}

	got, err := c.Get(ctx, "news:article:1")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if string(got) != `{"id":1}` {
		t.Fatalf("Get got=%q", got)
	}
}

func TestRedisCache_Get_Miss(t *testing.T) {
	c, _ := newTestRedisCache(t)

	_, err := c.Get(context.Background(), "news:article:404")
	if !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get err=%v, want ErrMiss", err)
	}
}

/* ─────────────────────────── 2. TTL ─────────────────────────── */

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "news:latest:1:10", []byte("[]"), 5*time.Minute); err != nil {
		t.Fatalf("Set err=%v", err)
	}

	// TTL内はヒット
	if _, err := c.Get(ctx, "news:latest:1:10"); err != nil {
		t.Fatalf("Get before expiry err=%v", err)
	}

	mr.FastForward(5*time.Minute + time.Second)

	if _, err := c.Get(ctx, "news:latest:1:10"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get after expiry err=%v, want ErrMiss", err)
	}
}

/* ─────────────────────────── 3. Delete ─────────────────────────── */

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("a still cached, err=%v", err)
	}
}

func TestRedisCache_Delete_NoKeys(t *testing.T) {
	c, _ := newTestRedisCache(t)

	// 空のキー列は no-op
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
}
