// Package cachetest holds a behavioural suite shared by the plan memo backends.
package cachetest

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/goap/domain/cache"
)

// Run exercises the cache.Cache contract against caches built by newCache.
// Each subtest gets a fresh, empty cache.
func Run(t *testing.T, newCache func(t *testing.T) cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("miss on empty", func(t *testing.T) {
		c := newCache(t)
		v, ok, err := c.Get(ctx, "absent")
		if err != nil || ok || v != nil {
			t.Fatalf("Get() = %q, %v, %v; want miss", v, ok, err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		c := newCache(t)
		if err := c.Set(ctx, "plan", []byte(`{"steps":[]}`), cache.SetOptions{}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, ok, err := c.Get(ctx, "plan")
		if err != nil || !ok {
			t.Fatalf("Get() = %v, %v; want hit", ok, err)
		}
		if string(v) != `{"steps":[]}` {
			t.Errorf("Get() = %q", v)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		c := newCache(t)
		_ = c.Set(ctx, "k", []byte("one"), cache.SetOptions{})
		if err := c.Set(ctx, "k", []byte("two"), cache.SetOptions{}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, _, _ := c.Get(ctx, "k")
		if string(v) != "two" {
			t.Errorf("Get() = %q, want two", v)
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		c := newCache(t)
		if err := c.Set(ctx, "", []byte("v"), cache.SetOptions{}); !errors.Is(err, cache.ErrInvalidKey) {
			t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("exists and delete", func(t *testing.T) {
		c := newCache(t)
		_ = c.Set(ctx, "k", []byte("v"), cache.SetOptions{})
		if ok, err := c.Exists(ctx, "k"); err != nil || !ok {
			t.Fatalf("Exists() = %v, %v; want true", ok, err)
		}
		if err := c.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if ok, _ := c.Exists(ctx, "k"); ok {
			t.Error("Exists() after Delete = true")
		}
		if err := c.Delete(ctx, "k"); err != nil {
			t.Errorf("Delete() of missing key error = %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		c := newCache(t)
		for _, k := range []string{"a", "b", "c"} {
			_ = c.Set(ctx, k, []byte(k), cache.SetOptions{})
		}
		if err := c.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		for _, k := range []string{"a", "b", "c"} {
			if _, ok, _ := c.Get(ctx, k); ok {
				t.Errorf("Get(%q) after Clear hit", k)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newCache(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, _, err := c.Get(cctx, "k"); !errors.Is(err, context.Canceled) {
			t.Errorf("Get() error = %v, want context.Canceled", err)
		}
	})
}
