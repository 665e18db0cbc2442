package planner

import (
	"context"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Planner produces plans for requests.
type Planner interface {
	Plan(ctx context.Context, req planning.Request) (*planning.Plan, error)
}

// Func adapts a function to the Planner interface.
type Func func(ctx context.Context, req planning.Request) (*planning.Plan, error)

// Plan calls f.
func (f Func) Plan(ctx context.Context, req planning.Request) (*planning.Plan, error) {
	return f(ctx, req)
}

// Engine is the Planner backed by the search in this package.
type Engine struct {
	schedule *planning.HybridSchedule
}

// Option configures an Engine.
type Option func(*Engine)

// WithHybridSchedule sets the schedule used for Hybrid requests that do
// not carry their own.
func WithHybridSchedule(s planning.HybridSchedule) Option {
	return func(e *Engine) {
		e.schedule = &s
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan runs the search for req. The search itself is not preemptible;
// ctx is only consulted before it starts.
func (e *Engine) Plan(ctx context.Context, req planning.Request) (*planning.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Schedule == nil && e.schedule != nil {
		req.Schedule = e.schedule
	}
	return Plan(req)
}

var (
	_ Planner = (*Engine)(nil)
	_ Planner = Func(nil)
)
