package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/goap/domain/cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS goap_plans (
	namespace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	expires_at INTEGER,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE INDEX IF NOT EXISTS idx_goap_plans_expires_at ON goap_plans(expires_at);
`

// Cache is a SQLite implementation of cache.Cache. Expiry is stored in
// unix nanoseconds and checked on read.
type Cache struct {
	db        *sql.DB
	namespace string
	owned     bool
	now       func() time.Time
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache opens the database, creates the table and returns the memo.
func NewCache(cfg Config, opts ...Option) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	c, err := NewCacheFromDB(db, cfg.Namespace)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

// NewCacheFromDB uses an existing connection pool. Close leaves db open.
func NewCacheFromDB(db *sql.DB, namespace string) (*Cache, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}
	return &Cache{db: db, namespace: namespace, now: time.Now}, nil
}

// Get retrieves a value. Expired rows are removed lazily.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM goap_plans WHERE namespace = ? AND key = ?`,
		c.namespace, key,
	).Scan(&value, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		c.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	if expiresAt.Valid && expiresAt.Int64 <= c.now().UnixNano() {
		_ = c.Delete(ctx, key)
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set upserts a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	now := c.now()
	var expiresAt sql.NullInt64
	if opts.TTL > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(opts.TTL).UnixNano(), Valid: true}
	}
	if value == nil {
		value = []byte{}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO goap_plans (namespace, key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		c.namespace, key, value, expiresAt, now.UnixNano(),
	)
	return err
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM goap_plans WHERE namespace = ? AND key = ?`, c.namespace, key)
	return err
}

// Exists reports whether key holds a live value.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var n int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM goap_plans
		WHERE namespace = ? AND key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		c.namespace, key, c.now().UnixNano(),
	).Scan(&n)
	return n > 0, err
}

// Clear removes every row in the namespace.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM goap_plans WHERE namespace = ?`, c.namespace)
	return err
}

// Cleanup deletes expired rows and returns how many were removed.
func (c *Cache) Cleanup(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM goap_plans WHERE namespace = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		c.namespace, c.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	var size int64
	_ = c.db.QueryRow(`SELECT COUNT(*) FROM goap_plans WHERE namespace = ?`, c.namespace).Scan(&size)
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// Close closes the database when the cache opened it.
func (c *Cache) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
	_ cache.Closer        = (*Cache)(nil)
)
