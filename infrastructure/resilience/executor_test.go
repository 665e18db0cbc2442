package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/goap/domain/cache"
	"github.com/felixgeelhaar/goap/domain/planning"
)

// flakyCache is a map-backed cache.Cache that fails the first failures calls.
type flakyCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	failures int
	calls    int
	err      error
}

func newFlakyCache(failures int, err error) *flakyCache {
	return &flakyCache{data: map[string][]byte{}, failures: failures, err: err}
}

func (f *flakyCache) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, false, err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *flakyCache) Set(_ context.Context, key string, value []byte, _ cache.SetOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.data[key] = value
	return nil
}

func (f *flakyCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	delete(f.data, key)
	return nil
}

func (f *flakyCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return false, err
	}
	_, ok := f.data[key]
	return ok, nil
}

func (f *flakyCache) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return err
	}
	f.data = map[string][]byte{}
	return nil
}

func (f *flakyCache) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastConfig() ExecutorConfig {
	config := DefaultExecutorConfig()
	config.RetryInitialDelay = time.Millisecond
	config.DefaultTimeout = time.Second
	return config
}

func TestDefaultExecutorConfig(t *testing.T) {
	t.Parallel()

	config := DefaultExecutorConfig()

	if config.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", config.MaxConcurrent)
	}
	if config.CircuitBreakerThreshold != 5 {
		t.Errorf("CircuitBreakerThreshold = %d, want 5", config.CircuitBreakerThreshold)
	}
	if config.RetryMaxAttempts != 2 {
		t.Errorf("RetryMaxAttempts = %d, want 2", config.RetryMaxAttempts)
	}
	if config.DefaultTimeout != 2*time.Second {
		t.Errorf("DefaultTimeout = %v, want 2s", config.DefaultTimeout)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := WrapCache(newFlakyCache(0, nil), NewExecutor(fastConfig()))

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get() on empty cache = %v, %v", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("plan"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "plan" {
		t.Fatalf("Get() = %q, %v, %v", got, ok, err)
	}
	if exists, _ := c.Exists(ctx, "k"); !exists {
		t.Error("Exists() = false, want true")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if exists, _ := c.Exists(ctx, "k"); exists {
		t.Error("Exists() after delete = true")
	}
	if err := c.Clear(ctx); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
}

func TestCache_RetriesTransientFailure(t *testing.T) {
	t.Parallel()

	backend := newFlakyCache(1, cache.ErrConnectionFailed)
	c := WrapCache(backend, NewExecutor(fastConfig()))

	if err := c.Set(context.Background(), "k", []byte("v"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v, want success after retry", err)
	}
	if got := backend.callCount(); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}

func TestCache_MissIsNotFailure(t *testing.T) {
	t.Parallel()

	config := fastConfig()
	config.CircuitBreakerThreshold = 1
	exec := NewExecutor(config)
	c := WrapCache(newFlakyCache(0, nil), exec)

	for range 5 {
		if _, ok, err := c.Get(context.Background(), "absent"); err != nil || ok {
			t.Fatalf("Get() = %v, %v", ok, err)
		}
	}
	if state := exec.CircuitBreakerState(); state != "closed" {
		t.Errorf("CircuitBreakerState() = %q, want closed", state)
	}
}

func TestCache_CircuitOpens(t *testing.T) {
	t.Parallel()

	config := fastConfig()
	config.CircuitBreakerThreshold = 2
	config.RetryMaxAttempts = 1
	config.CircuitBreakerTimeout = time.Minute
	exec := NewExecutor(config)
	backend := newFlakyCache(100, cache.ErrConnectionFailed)
	c := WrapCache(backend, exec)

	for range 2 {
		if _, _, err := c.Get(context.Background(), "k"); err == nil {
			t.Fatal("Get() expected error")
		}
	}
	if state := exec.CircuitBreakerState(); state != "open" {
		t.Fatalf("CircuitBreakerState() = %q, want open", state)
	}

	before := backend.callCount()
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Error("Get() with open circuit expected error")
	}
	if backend.callCount() != before {
		t.Error("open circuit should not reach the backend")
	}
}

func TestCache_InvalidKeyNotRetried(t *testing.T) {
	t.Parallel()

	backend := newFlakyCache(100, cache.ErrInvalidKey)
	config := fastConfig()
	config.RetryMaxAttempts = 3
	c := WrapCache(backend, NewExecutor(config))

	err := c.Set(context.Background(), "", nil, cache.SetOptions{})
	if !errors.Is(err, cache.ErrInvalidKey) {
		t.Fatalf("Set() error = %v, want ErrInvalidKey", err)
	}
	if got := backend.callCount(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
}

func TestCache_NilExecutorUsesDefault(t *testing.T) {
	t.Parallel()

	backend := newFlakyCache(0, nil)
	c := WrapCache(backend, nil)
	if c.exec == nil {
		t.Fatal("WrapCache(nil) left executor unset")
	}
	if c.Unwrap() != backend {
		t.Error("Unwrap() did not return the wrapped cache")
	}
	if s := c.Stats(); s != (cache.Stats{}) {
		t.Errorf("Stats() = %+v, want zero for a backend without stats", s)
	}
}

func TestPool_RunPreservesOrder(t *testing.T) {
	t.Parallel()

	pool := NewPool(3)
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) (*planning.Plan, error) {
			if i == 4 {
				return nil, errors.New("boom")
			}
			return &planning.Plan{Stats: planning.Stats{Expanded: i}}, nil
		}
	}

	out := pool.Run(context.Background(), jobs)
	if len(out) != len(jobs) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(jobs))
	}
	for i, o := range out {
		if i == 4 {
			if o.Err == nil {
				t.Errorf("out[4].Err = nil, want error")
			}
			continue
		}
		if o.Err != nil {
			t.Errorf("out[%d].Err = %v", i, o.Err)
			continue
		}
		if o.Plan.Stats.Expanded != i {
			t.Errorf("out[%d] = %d, want %d", i, o.Plan.Stats.Expanded, i)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	const limit = 2
	pool := NewPool(limit)

	var active, peak atomic.Int32
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = func(context.Context) (*planning.Plan, error) {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return &planning.Plan{}, nil
		}
	}

	for i, o := range pool.Run(context.Background(), jobs) {
		if o.Err != nil {
			t.Errorf("out[%d].Err = %v", i, o.Err)
		}
	}
	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency = %d, want <= %d", got, limit)
	}
}

func TestPool_Empty(t *testing.T) {
	t.Parallel()

	if out := NewPool(0).Run(context.Background(), nil); len(out) != 0 {
		t.Errorf("Run(nil) = %v, want empty", out)
	}
}
