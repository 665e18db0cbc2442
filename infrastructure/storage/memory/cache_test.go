package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/goap/domain/cache"
	"github.com/felixgeelhaar/goap/infrastructure/storage/cachetest"
	"github.com/felixgeelhaar/goap/infrastructure/storage/memory"
)

func TestCache_Contract(t *testing.T) {
	t.Parallel()

	cachetest.Run(t, func(*testing.T) cache.Cache { return memory.NewCache() })
}

func TestNewCache_MaxSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []memory.CacheOption
		want int64
	}{
		{"default", nil, memory.DefaultMaxSize},
		{"custom", []memory.CacheOption{memory.WithMaxSize(5)}, 5},
		{"non-positive ignored", []memory.CacheOption{memory.WithMaxSize(0)}, memory.DefaultMaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := memory.NewCache(tt.opts...).Stats().MaxSize; got != tt.want {
				t.Errorf("MaxSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCache_LRUEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := memory.NewCache(memory.WithMaxSize(2))

	_ = c.Set(ctx, "a", []byte("1"), cache.SetOptions{})
	_ = c.Set(ctx, "b", []byte("2"), cache.SetOptions{})
	_, _, _ = c.Get(ctx, "a") // b is now least recently used
	_ = c.Set(ctx, "c", []byte("3"), cache.SetOptions{})

	if ok, _ := c.Exists(ctx, "b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if ok, _ := c.Exists(ctx, k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if size := c.Stats().Size; size != 2 {
		t.Errorf("Size = %d, want 2", size)
	}
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := memory.NewCache(memory.WithClock(func() time.Time { return now }))

	_ = c.Set(ctx, "short", []byte("v"), cache.SetOptions{TTL: time.Minute})
	_ = c.Set(ctx, "forever", []byte("v"), cache.SetOptions{})

	if _, ok, _ := c.Get(ctx, "short"); !ok {
		t.Fatal("short should be cached before expiry")
	}

	now = now.Add(2 * time.Minute)

	if ok, _ := c.Exists(ctx, "short"); ok {
		t.Error("Exists(short) after expiry = true")
	}
	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("entry without TTL expired")
	}
}

func TestCache_StatsAndIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := memory.NewCache()

	buf := []byte("plan")
	_ = c.Set(ctx, "k", buf, cache.SetOptions{})
	buf[0] = 'X'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "plan" {
		t.Errorf("stored value mutated through caller buffer: %q", got)
	}
	got[0] = 'Y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "plan" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
	_, _, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v, want 2 hits 1 miss size 1", stats)
	}
}
