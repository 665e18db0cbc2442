package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/goap/domain/cache"
)

// Cache is a PostgreSQL implementation of cache.Cache.
type Cache struct {
	pool      *pgxpool.Pool
	table     string
	namespace string
	owned     bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache connects, creates the table when missing and returns the memo.
func NewCache(ctx context.Context, cfg Config, opts ...Option) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	pc, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	c := NewCacheFromPool(pool, cfg.Schema, cfg.Namespace)
	c.owned = true
	if err := c.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// NewCacheFromPool wraps an existing pool. Close leaves the pool open.
func NewCacheFromPool(pool *pgxpool.Pool, schema, namespace string) *Cache {
	return &Cache{
		pool:      pool,
		table:     tableName(schema),
		namespace: namespace,
	}
}

func tableName(schema string) string {
	if schema == "" {
		schema = "public"
	}
	return pgx.Identifier{schema, "goap_plans"}.Sanitize()
}

// Migrate creates the memo table.
func (c *Cache) Migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			namespace  TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			value      BYTEA       NOT NULL,
			expires_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (namespace, key)
		)`, c.table))
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

func (c *Cache) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.pool == nil {
		return cache.ErrConnectionFailed
	}
	return nil
}

// Get retrieves a live value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.ready(ctx); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT value FROM %s
		WHERE namespace = $1 AND key = $2 AND (expires_at IS NULL OR expires_at > now())`, c.table),
		c.namespace, key,
	).Scan(&value)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	c.hits.Add(1)
	return value, true, nil
}

// Set upserts a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if err := c.ready(ctx); err != nil {
		return err
	}

	var expiresAt *time.Time
	if opts.TTL > 0 {
		t := time.Now().Add(opts.TTL)
		expiresAt = &t
	}
	if value == nil {
		value = []byte{}
	}

	_, err := c.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (namespace, key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`, c.table),
		c.namespace, key, value, expiresAt,
	)
	return err
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	_, err := c.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE namespace = $1 AND key = $2`, c.table),
		c.namespace, key)
	return err
}

// Exists reports whether key holds a live value.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := c.ready(ctx); err != nil {
		return false, err
	}
	var ok bool
	err := c.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE namespace = $1 AND key = $2 AND (expires_at IS NULL OR expires_at > now())
		)`, c.table),
		c.namespace, key,
	).Scan(&ok)
	return ok, err
}

// Clear removes every row in the namespace.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	_, err := c.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE namespace = $1`, c.table), c.namespace)
	return err
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close closes the pool when the cache opened it.
func (c *Cache) Close() error {
	if c.owned && c.pool != nil {
		c.pool.Close()
	}
	return nil
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
	_ cache.Closer        = (*Cache)(nil)
)
