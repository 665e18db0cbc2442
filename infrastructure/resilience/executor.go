// Package resilience guards plan memo backends and batch planning with fortify.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/goap/domain/cache"
)

// ExecutorConfig configures the resilient executor.
type ExecutorConfig struct {
	// MaxConcurrent limits concurrent planning calls in a batch.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive backend failures before opening.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// RetryMaxAttempts is the maximum number of attempts per backend call.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// DefaultTimeout bounds a single backend call.
	DefaultTimeout time.Duration
}

// DefaultExecutorConfig returns a configuration with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:           8,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        2,
		RetryInitialDelay:       20 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		DefaultTimeout:          2 * time.Second,
	}
}

// result is what a guarded backend call produces.
type result struct {
	value []byte
	found bool
}

// Executor wraps memo backend calls with timeout, circuit breaker and retry.
type Executor struct {
	breaker circuitbreaker.CircuitBreaker[result]
	retry   retry.Retry[result]
	timeout time.Duration
}

// NewExecutor creates a new resilient executor.
func NewExecutor(config ExecutorConfig) *Executor {
	threshold := config.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = DefaultExecutorConfig().CircuitBreakerThreshold
	}
	attempts := config.RetryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := config.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultExecutorConfig().DefaultTimeout
	}

	return &Executor{
		breaker: circuitbreaker.New[result](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is positive
			},
		}),
		retry: retry.New[result](retry.Config{
			MaxAttempts:        attempts,
			InitialDelay:       config.RetryInitialDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         config.RetryBackoffMultiplier,
			NonRetryableErrors: []error{cache.ErrInvalidKey, context.Canceled},
		}),
		timeout: timeout,
	}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

// execute runs fn under timeout, circuit breaker and retry, in that order.
func (e *Executor) execute(ctx context.Context, fn func(context.Context) (result, error)) (result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.breaker.Execute(ctx, func(ctx context.Context) (result, error) {
		return e.retry.Do(ctx, fn)
	})
}

// CircuitBreakerState returns the current circuit breaker state name.
func (e *Executor) CircuitBreakerState() string {
	return e.breaker.State().String()
}
