package resilience

import (
	"context"

	"github.com/felixgeelhaar/goap/domain/cache"
)

// Cache is a cache.Cache whose backend calls go through an Executor.
type Cache struct {
	next cache.Cache
	exec *Executor
}

// WrapCache guards every call to c with exec.
func WrapCache(c cache.Cache, exec *Executor) *Cache {
	if exec == nil {
		exec = NewDefaultExecutor()
	}
	return &Cache{next: c, exec: exec}
}

// Get implements cache.Cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r, err := c.exec.execute(ctx, func(ctx context.Context) (result, error) {
		v, ok, err := c.next.Get(ctx, key)
		return result{value: v, found: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	return r.value, r.found, nil
}

// Set implements cache.Cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	_, err := c.exec.execute(ctx, func(ctx context.Context) (result, error) {
		return result{}, c.next.Set(ctx, key, value, opts)
	})
	return err
}

// Delete implements cache.Cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := c.exec.execute(ctx, func(ctx context.Context) (result, error) {
		return result{}, c.next.Delete(ctx, key)
	})
	return err
}

// Exists implements cache.Cache.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	r, err := c.exec.execute(ctx, func(ctx context.Context) (result, error) {
		ok, err := c.next.Exists(ctx, key)
		return result{found: ok}, err
	})
	return r.found, err
}

// Clear implements cache.Cache.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.exec.execute(ctx, func(ctx context.Context) (result, error) {
		return result{}, c.next.Clear(ctx)
	})
	return err
}

// Stats forwards to the wrapped cache when it reports statistics.
func (c *Cache) Stats() cache.Stats {
	if sp, ok := c.next.(cache.StatsProvider); ok {
		return sp.Stats()
	}
	return cache.Stats{}
}

// Unwrap returns the guarded cache.
func (c *Cache) Unwrap() cache.Cache {
	return c.next
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
