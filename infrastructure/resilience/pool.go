package resilience

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/fortify/bulkhead"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Pool runs planning jobs with bounded concurrency.
type Pool struct {
	bulkhead bulkhead.Bulkhead[*planning.Plan]
	workers  int
}

// NewPool creates a pool running at most maxConcurrent jobs at once.
func NewPool(maxConcurrent int) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultExecutorConfig().MaxConcurrent
	}
	return &Pool{
		bulkhead: bulkhead.New[*planning.Plan](bulkhead.Config{MaxConcurrent: maxConcurrent}),
		workers:  maxConcurrent,
	}
}

// Job produces one plan.
type Job func(ctx context.Context) (*planning.Plan, error)

// Outcome is the result of one job.
type Outcome struct {
	Plan *planning.Plan
	Err  error
}

// Run executes every job and returns outcomes in job order. Workers never
// exceed the bulkhead capacity, so jobs wait for a slot instead of being
// rejected.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Outcome {
	out := make([]Outcome, len(jobs))
	next := make(chan int)

	var wg sync.WaitGroup
	for range min(p.workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				plan, err := p.bulkhead.Execute(ctx, func(ctx context.Context) (*planning.Plan, error) {
					return jobs[i](ctx)
				})
				out[i] = Outcome{Plan: plan, Err: err}
			}
		}()
	}

	for i := range jobs {
		next <- i
	}
	close(next)
	wg.Wait()
	return out
}
