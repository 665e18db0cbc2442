package redis

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/goap/domain/cache"
)

const scanBatch = 100

// Cache is a Redis implementation of cache.Cache. TTLs map to key expiry.
type Cache struct {
	client    redis.UniversalClient
	namespace string
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache connects and pings the server.
func NewCache(cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	options, err := cfg.Options()
	if err != nil {
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}

	client := redis.NewClient(options)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}

	return NewCacheFromClient(client, cfg.Namespace), nil
}

// NewCacheFromClient wraps an existing client, which may be a cluster or
// sentinel client.
func NewCacheFromClient(client redis.UniversalClient, namespace string) *Cache {
	return &Cache{client: client, namespace: namespace}
}

func (c *Cache) key(k string) string {
	return c.namespace + k
}

func (c *Cache) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.client == nil {
		return cache.ErrConnectionFailed
	}
	return nil
}

// Get retrieves a value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.ready(ctx); err != nil {
		return nil, false, err
	}

	v, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, wrapError(err)
	}
	c.hits.Add(1)
	return v, true, nil
}

// Set stores a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if err := c.ready(ctx); err != nil {
		return err
	}
	ttl := max(opts.TTL, 0)
	return wrapError(c.client.Set(ctx, c.key(key), value, ttl).Err())
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	return wrapError(c.client.Del(ctx, c.key(key)).Err())
}

// Exists reports whether key is present.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := c.ready(ctx); err != nil {
		return false, err
	}
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, wrapError(err)
	}
	return n > 0, nil
}

// Clear deletes every key in the namespace using SCAN, never KEYS.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, c.namespace+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := c.client.Del(ctx, batch...).Err()
		batch = batch[:0]
		return wrapError(err)
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return wrapError(err)
	}
	return flush()
}

// Stats returns hit and miss counts. Size is not tracked.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close closes the client.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
	_ cache.Closer        = (*Cache)(nil)
)
