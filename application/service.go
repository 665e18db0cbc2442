// Package application runs planning requests with memoization, lifecycle
// tracking and telemetry around the search engine.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/goap/domain/cache"
	"github.com/felixgeelhaar/goap/domain/planning"
	"github.com/felixgeelhaar/goap/domain/telemetry"
	"github.com/felixgeelhaar/goap/infrastructure/logging"
	"github.com/felixgeelhaar/goap/infrastructure/observability"
	"github.com/felixgeelhaar/goap/infrastructure/planner"
	"github.com/felixgeelhaar/goap/infrastructure/resilience"
	"github.com/felixgeelhaar/goap/infrastructure/statemachine"
	plantelemetry "github.com/felixgeelhaar/goap/infrastructure/telemetry"
)

// Service plans requests. It is safe for concurrent use.
type Service struct {
	planner  planner.Planner
	memo     cache.Cache
	backend  string
	ttl      time.Duration
	executor *resilience.Executor
	pool     *resilience.Pool
	metrics  plantelemetry.Metrics
	tracer   telemetry.Tracer
	logger   *bolt.Logger
	newID    func() string
}

// NewService creates a service. Without options it runs the default engine
// with no memo and no-op telemetry.
func NewService(opts ...Option) *Service {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Service{
		backend:  cfg.CacheBackend,
		ttl:      cfg.CacheTTL,
		executor: cfg.Executor,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		logger:   cfg.Logger,
		newID:    cfg.NewID,
	}
	if s.metrics == nil {
		s.metrics = plantelemetry.NoopMetricsProvider{}
	}
	if s.tracer == nil {
		s.tracer = observability.NewNoopTracer()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.executor == nil {
		s.executor = resilience.NewDefaultExecutor()
	}
	s.pool = resilience.NewPool(cfg.MaxConcurrent)

	engine := cfg.Planner
	if engine == nil {
		engine = planner.New()
	}
	s.planner = observability.Chain(engine,
		observability.TracingMiddleware(s.tracer),
		observability.MetricsMiddleware(s.metrics),
	)

	if cfg.Cache != nil {
		if s.backend == "" {
			s.backend = backendName(cfg.Cache)
		}
		s.memo = resilience.WrapCache(cfg.Cache, s.executor)
	}
	return s
}

// backendName derives a label such as "memory" from the cache type.
func backendName(c cache.Cache) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", c), "*")
	if pkg, _, ok := strings.Cut(name, "."); ok {
		return pkg
	}
	return name
}

func (s *Service) log() *bolt.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.Get()
}

// Plan runs one planning call. Validation errors and *planning.Failure are
// returned unchanged; memo backend errors are logged and never fail the call.
func (s *Service) Plan(ctx context.Context, req planning.Request) (*planning.Plan, error) {
	id := s.newID()
	ctx, span := s.tracer.StartSpan(ctx, "goap.plan",
		telemetry.WithAttributes(append(observability.RequestAttributes(req),
			telemetry.String(telemetry.KeyRequestID, id))...),
		telemetry.WithSpanKind(telemetry.SpanKindInternal),
	)
	defer span.End()

	s.metrics.IncrementActive(ctx)
	defer s.metrics.DecrementActive(ctx)

	lc, err := s.lifecycle(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(telemetry.StatusCodeError, err.Error())
		return nil, err
	}
	defer lc.Stop()

	start := time.Now()
	plan, cached, err := s.run(ctx, lc, req)
	elapsed := time.Since(start)

	outcome := outcomeOf(plan, err)
	s.metrics.RecordRequest(ctx, req, outcome)
	span.SetAttributes(telemetry.Bool(telemetry.KeyCached, cached))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(telemetry.StatusCodeError, err.Error())
		logging.NewEvent(s.log().Warn()).
			Add(logging.RequestID(id)).
			Add(logging.Algorithm(req.Algorithm)).
			Add(logging.Mode(req.Mode)).
			Add(logging.Str("outcome", string(outcome))).
			Add(logging.Duration(elapsed)).
			Add(logging.ErrorField(err)).
			Msg("planning failed")
		return nil, err
	}

	span.SetAttributes(observability.PlanAttributes(plan)...)
	span.SetStatus(telemetry.StatusCodeOK, "")
	logging.NewEvent(s.log().Info()).
		Add(logging.RequestID(id)).
		Add(logging.Algorithm(req.Algorithm)).
		Add(logging.Mode(req.Mode)).
		Add(logging.Bound(req.Bound)).
		Add(logging.PlanLength(plan.Len())).
		Add(logging.Discontentment(plan.Discontentment())).
		Add(logging.Complete(plan.Complete)).
		Add(logging.Stats(plan.Stats)).
		Add(logging.Cached(cached)).
		Add(logging.Duration(elapsed)).
		Msg("plan ready")
	return plan, nil
}

func (s *Service) lifecycle(ctx context.Context, id string) (*statemachine.Lifecycle, error) {
	mctx := statemachine.NewContext(id)
	mctx.OnTransition = func(t statemachine.Transition) {
		s.metrics.RecordTransition(ctx, string(t.From), string(t.To))
		logging.NewEvent(s.log().Debug()).
			Add(logging.RequestID(id)).
			Add(logging.FromState(string(t.From))).
			Add(logging.ToState(string(t.To))).
			Add(logging.Str("reason", t.Reason)).
			Msg("lifecycle transition")
	}
	lc, err := statemachine.NewLifecycle(mctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLifecycle, err)
	}
	return lc, nil
}

func (s *Service) run(ctx context.Context, lc *statemachine.Lifecycle, req planning.Request) (*planning.Plan, bool, error) {
	if err := lc.Transition(statemachine.PhaseValidating, "request received"); err != nil {
		return nil, false, err
	}
	if err := req.Validate(); err != nil {
		lc.Fail(err.Error())
		return nil, false, err
	}

	var key string
	if s.memo != nil {
		key = RequestKey(req)
		if plan, ok := s.lookup(ctx, key); ok {
			if err := lc.Transition(statemachine.PhaseSucceeded, "memo hit"); err != nil {
				return nil, false, err
			}
			return plan, true, nil
		}
	}

	if err := lc.Transition(statemachine.PhaseSearching, "searching"); err != nil {
		return nil, false, err
	}
	plan, err := s.planner.Plan(ctx, req)
	if err != nil {
		lc.Fail(err.Error())
		return nil, false, err
	}

	if s.memo != nil {
		s.store(ctx, key, plan)
	}
	if err := lc.Transition(statemachine.PhaseSucceeded, "plan found"); err != nil {
		return nil, false, err
	}
	return plan, false, nil
}

func (s *Service) lookup(ctx context.Context, key string) (*planning.Plan, bool) {
	data, ok, err := s.memo.Get(ctx, key)
	if err != nil {
		s.metrics.RecordCacheError(ctx, s.backend, "get")
		s.memoWarning(key, "get", err)
		return nil, false
	}
	if !ok {
		s.metrics.RecordCacheMiss(ctx, s.backend)
		return nil, false
	}

	plan, err := decodePlan(data)
	if err != nil {
		s.metrics.RecordCacheError(ctx, s.backend, "decode")
		s.memoWarning(key, "decode", err)
		_ = s.memo.Delete(ctx, key)
		return nil, false
	}
	s.metrics.RecordCacheHit(ctx, s.backend)
	return plan, true
}

func (s *Service) store(ctx context.Context, key string, plan *planning.Plan) {
	data, err := encodePlan(plan)
	if err == nil {
		err = s.memo.Set(ctx, key, data, cache.SetOptions{TTL: s.ttl})
	}
	if err != nil {
		s.metrics.RecordCacheError(ctx, s.backend, "set")
		s.memoWarning(key, "set", err)
	}
}

func (s *Service) memoWarning(key, op string, err error) {
	logging.NewEvent(s.log().Warn()).
		Add(logging.Backend(s.backend)).
		Add(logging.CacheKey(key)).
		Add(logging.Str("op", op)).
		Add(logging.ErrorField(err)).
		Msg("plan memo unavailable")
}

func outcomeOf(plan *planning.Plan, err error) plantelemetry.Outcome {
	var failure *planning.Failure
	switch {
	case err == nil && plan.Complete:
		return plantelemetry.OutcomeComplete
	case err == nil:
		return plantelemetry.OutcomePartial
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return plantelemetry.OutcomeCancelled
	case errors.As(err, &failure):
		return plantelemetry.OutcomeFailed
	default:
		return plantelemetry.OutcomeInvalid
	}
}

// BatchResult is the outcome of one request of a batch.
type BatchResult struct {
	Plan *planning.Plan
	Err  error
}

// PlanBatch plans every request concurrently, bounded by the configured
// concurrency. Results are in request order; one failure does not affect
// the others.
func (s *Service) PlanBatch(ctx context.Context, reqs []planning.Request) []BatchResult {
	jobs := make([]resilience.Job, len(reqs))
	for i, req := range reqs {
		jobs[i] = func(ctx context.Context) (*planning.Plan, error) {
			return s.Plan(ctx, req)
		}
	}

	outcomes := s.pool.Run(ctx, jobs)
	results := make([]BatchResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = BatchResult{Plan: o.Plan, Err: o.Err}
	}
	return results
}

// Close releases the memo backend when it holds resources.
func (s *Service) Close() error {
	if s.memo == nil {
		return nil
	}
	if c, ok := s.memo.(*resilience.Cache); ok {
		if closer, ok := c.Unwrap().(cache.Closer); ok {
			return closer.Close()
		}
	}
	return nil
}
