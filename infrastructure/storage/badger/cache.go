package badger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/goap/domain/cache"
)

// Cache is a BadgerDB implementation of cache.Cache. TTLs use badger's
// native entry expiry.
type Cache struct {
	db     *badger.DB
	prefix []byte
	hits   atomic.Int64
	misses atomic.Int64

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewCache opens a database and returns a memo backed by it.
func NewCache(cfg Config, opts ...Option) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	c := NewCacheFromDB(db, cfg.Namespace)
	if cfg.GCInterval > 0 && !cfg.InMemory {
		c.wg.Add(1)
		go c.collect(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return c, nil
}

// NewCacheFromDB wraps an already open database.
func NewCacheFromDB(db *badger.DB, namespace string) *Cache {
	return &Cache{
		db:     db,
		prefix: []byte(namespace),
		stop:   make(chan struct{}),
	}
}

func (c *Cache) collect(interval time.Duration, ratio float64) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			// RunValueLogGC returns an error once nothing is left to rewrite.
			for c.db.RunValueLogGC(ratio) == nil {
			}
		}
	}
}

func (c *Cache) key(k string) []byte {
	out := make([]byte, 0, len(c.prefix)+len(k))
	return append(append(out, c.prefix...), k...)
}

// Get retrieves a value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		c.misses.Add(1)
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set stores a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	e := badger.NewEntry(c.key(key), value)
	if opts.TTL > 0 {
		e = e.WithTTL(opts.TTL)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
}

// Exists reports whether key holds a live value.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Clear drops every key in the namespace.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.DropPrefix(c.prefix)
}

// Keys lists the memo keys, without namespace.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = c.prefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(c.prefix):]))
		}
		return nil
	})
	return keys, err
}

// Stats returns cache statistics. Size counts live keys in the namespace.
func (c *Cache) Stats() cache.Stats {
	keys, _ := c.Keys(context.Background())
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   int64(len(keys)),
	}
}

// DB returns the underlying database.
func (c *Cache) DB() *badger.DB {
	return c.db
}

// Close stops garbage collection and closes the database.
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.stop) })
	c.wg.Wait()
	return c.db.Close()
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
	_ cache.Closer        = (*Cache)(nil)
)
