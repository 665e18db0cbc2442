// Package storage selects a plan memo backend by name.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/goap/domain/cache"
	"github.com/felixgeelhaar/goap/infrastructure/storage/badger"
	"github.com/felixgeelhaar/goap/infrastructure/storage/dynamodb"
	"github.com/felixgeelhaar/goap/infrastructure/storage/memory"
	"github.com/felixgeelhaar/goap/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/goap/infrastructure/storage/redis"
	"github.com/felixgeelhaar/goap/infrastructure/storage/sqlite"
)

// Backend names accepted by Open.
const (
	Memory   = "memory"
	Badger   = "badger"
	Redis    = "redis"
	SQLite   = "sqlite"
	Postgres = "postgres"
	DynamoDB = "dynamodb"
)

// Backends lists the backend names accepted by Open.
func Backends() []string {
	return []string{Memory, Badger, Redis, SQLite, Postgres, DynamoDB}
}

// Open creates the named backend. The meaning of dsn depends on the backend:
//
//	memory    ignored
//	badger    data directory; empty keeps the database in memory
//	redis     redis:// URL; empty uses localhost:6379
//	sqlite    go-sqlite3 DSN; empty uses ":memory:"
//	postgres  libpq URL or key=value string
//	dynamodb  dynamodb://<table>?region=..&endpoint=..&namespace=..
//
// Callers should close the returned cache when it implements cache.Closer.
func Open(ctx context.Context, backend, dsn string) (cache.Cache, error) {
	switch strings.ToLower(backend) {
	case "", Memory:
		return memory.NewCache(), nil

	case Badger:
		opts := []badger.Option{badger.WithDir(dsn)}
		if dsn == "" {
			opts = []badger.Option{badger.WithInMemory()}
		}
		return badger.NewCache(badger.DefaultConfig(), opts...)

	case Redis:
		var opts []redis.ConfigOption
		if dsn != "" {
			opts = append(opts, redis.WithURL(dsn))
		}
		return redis.NewCache(redis.DefaultConfig(), opts...)

	case SQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return sqlite.NewCache(sqlite.DefaultConfig(), sqlite.WithDSN(dsn))

	case Postgres:
		return postgres.NewCache(ctx, postgres.DefaultConfig(), postgres.WithDSN(dsn))

	case DynamoDB:
		cfg, err := DynamoDBConfig(dsn)
		if err != nil {
			return nil, err
		}
		return dynamodb.NewCache(ctx, cfg)

	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", cache.ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
}

// DynamoDBConfig parses a dynamodb://<table>?region=..&endpoint=..&namespace=.. DSN.
func DynamoDBConfig(dsn string) (dynamodb.Config, error) {
	cfg := dynamodb.DefaultConfig()
	if dsn == "" {
		return cfg, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return cfg, fmt.Errorf("parse dynamodb dsn: %w", err)
	}
	if u.Scheme != "" && u.Scheme != DynamoDB {
		return cfg, fmt.Errorf("parse dynamodb dsn: unexpected scheme %q", u.Scheme)
	}
	if u.Host != "" {
		cfg.Table = u.Host
	}
	q := u.Query()
	if v := q.Get("region"); v != "" {
		cfg.Region = v
	}
	if v := q.Get("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v := q.Get("namespace"); v != "" {
		cfg.Namespace = v
	}
	return cfg, nil
}
