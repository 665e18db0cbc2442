package application

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/goap/domain/cache"
	"github.com/felixgeelhaar/goap/domain/telemetry"
	"github.com/felixgeelhaar/goap/infrastructure/planner"
	"github.com/felixgeelhaar/goap/infrastructure/resilience"
	plantelemetry "github.com/felixgeelhaar/goap/infrastructure/telemetry"
)

// Config holds the collaborators of a Service.
type Config struct {
	Planner       planner.Planner
	Cache         cache.Cache
	CacheBackend  string
	CacheTTL      time.Duration
	Executor      *resilience.Executor
	MaxConcurrent int
	Metrics       plantelemetry.Metrics
	Tracer        telemetry.Tracer
	Logger        *bolt.Logger
	NewID         func() string
}

// Option configures the service.
type Option func(*Config)

// WithPlanner replaces the search engine.
func WithPlanner(p planner.Planner) Option {
	return func(c *Config) {
		c.Planner = p
	}
}

// WithCache memoizes plans in c. A zero ttl keeps entries until evicted.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cfg *Config) {
		cfg.Cache = c
		cfg.CacheTTL = ttl
	}
}

// WithCacheBackend names the memo backend in logs and metrics.
func WithCacheBackend(name string) Option {
	return func(c *Config) {
		c.CacheBackend = name
	}
}

// WithExecutor sets the executor guarding memo backend calls.
func WithExecutor(e *resilience.Executor) Option {
	return func(c *Config) {
		c.Executor = e
	}
}

// WithMaxConcurrent bounds PlanBatch concurrency.
func WithMaxConcurrent(n int) Option {
	return func(c *Config) {
		c.MaxConcurrent = n
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m plantelemetry.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t telemetry.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// WithLogger sets the logger. The process-wide logger is used otherwise.
func WithLogger(l *bolt.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithIDGenerator replaces the request ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Config) {
		c.NewID = fn
	}
}
