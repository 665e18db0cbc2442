package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/goap/domain/cache"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestCache_key(t *testing.T) {
	t.Parallel()

	tests := []struct {
		namespace, key, want string
	}{
		{DefaultNamespace, "abc", "goap:plan:abc"},
		{"", "abc", "abc"},
		{"game:", "", "game:"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace+tt.key, func(t *testing.T) {
			t.Parallel()

			c := NewCacheFromClient(nil, tt.namespace)
			if got := c.key(tt.key); got != tt.want {
				t.Errorf("key(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestCache_NilClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewCacheFromClient(nil, "t:")

	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, cache.ErrConnectionFailed) {
		t.Errorf("Get() error = %v, want ErrConnectionFailed", err)
	}
	if err := c.Set(ctx, "k", nil, cache.SetOptions{}); !errors.Is(err, cache.ErrConnectionFailed) {
		t.Errorf("Set() error = %v, want ErrConnectionFailed", err)
	}
	if err := c.Set(ctx, "", nil, cache.SetOptions{}); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCache_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCacheFromClient(nil, "")

	checks := map[string]error{
		"get":    func() error { _, _, err := c.Get(ctx, "k"); return err }(),
		"delete": c.Delete(ctx, "k"),
		"exists": func() error { _, err := c.Exists(ctx, "k"); return err }(),
		"clear":  c.Clear(ctx),
	}
	for op, err := range checks {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s error = %v, want context.Canceled", op, err)
		}
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")
	tests := []struct {
		name    string
		err     error
		timeout bool
	}{
		{"nil", nil, false},
		{"plain", plain, false},
		{"deadline", context.DeadlineExceeded, true},
		{"net timeout", fmt.Errorf("read: %w", timeoutErr{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := wrapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("wrapError(nil) = %v", got)
				}
				return
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("wrapped error lost cause: %v", got)
			}
			if errors.Is(got, cache.ErrOperationTimeout) != tt.timeout {
				t.Errorf("timeout classification = %v, want %v", !tt.timeout, tt.timeout)
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	t.Run("address", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		for _, opt := range []ConfigOption{WithAddress("cache:6380"), WithDB(2), WithPassword("pw"), WithTimeouts(time.Second, 2*time.Second, 3*time.Second)} {
			opt(&cfg)
		}
		opts, err := cfg.Options()
		if err != nil {
			t.Fatalf("Options() error = %v", err)
		}
		if opts.Addr != "cache:6380" || opts.DB != 2 || opts.Password != "pw" {
			t.Errorf("Options() = %+v", opts)
		}
		if opts.ReadTimeout != 2*time.Second || opts.PoolSize != 10 {
			t.Errorf("timeouts/pool not applied: %+v", opts)
		}
	})

	t.Run("url", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		WithURL("redis://:secret@memo.internal:6390/3")(&cfg)
		opts, err := cfg.Options()
		if err != nil {
			t.Fatalf("Options() error = %v", err)
		}
		if opts.Addr != "memo.internal:6390" || opts.DB != 3 || opts.Password != "secret" {
			t.Errorf("Options() = %+v", opts)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		WithURL("http://nope")(&cfg)
		if _, err := cfg.Options(); err == nil {
			t.Error("Options() expected error for non-redis scheme")
		}
	})
}

func TestNewCache_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := NewCache(DefaultConfig(),
		WithAddress("127.0.0.1:1"),
		WithTimeouts(100*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond))
	if !errors.Is(err, cache.ErrConnectionFailed) {
		t.Errorf("NewCache() error = %v, want ErrConnectionFailed", err)
	}
}
