// Package telemetry records OpenTelemetry metrics for planning calls.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Outcome labels a finished planning call.
type Outcome string

// Planning call outcomes.
const (
	OutcomeComplete  Outcome = "complete"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeCancelled Outcome = "cancelled"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	requests    metric.Int64Counter
	transitions metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	cacheErrors metric.Int64Counter

	searchDuration metric.Float64Histogram
	expanded       metric.Int64Histogram
	planLength     metric.Int64Histogram

	active metric.Int64UpDownCounter

	initErr error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/goap").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// MeterProvider supplies the meter; the global provider when nil.
	MeterProvider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/goap",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}
	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	mp := &MetricsProvider{
		meter: provider.Meter(config.MeterName, metric.WithInstrumentationVersion(config.MeterVersion)),
	}
	mp.initErr = mp.initInstruments()
	return mp
}

func (mp *MetricsProvider) initInstruments() error {
	var err error

	if mp.requests, err = mp.meter.Int64Counter(
		"goap.plan.requests",
		metric.WithDescription("Number of planning calls by outcome"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	if mp.transitions, err = mp.meter.Int64Counter(
		"goap.lifecycle.transitions",
		metric.WithDescription("Number of planning lifecycle transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return err
	}

	if mp.cacheHits, err = mp.meter.Int64Counter(
		"goap.cache.hits",
		metric.WithDescription("Plans served from the memo"),
		metric.WithUnit("{hit}"),
	); err != nil {
		return err
	}

	if mp.cacheMisses, err = mp.meter.Int64Counter(
		"goap.cache.misses",
		metric.WithDescription("Memo lookups that required a search"),
		metric.WithUnit("{miss}"),
	); err != nil {
		return err
	}

	if mp.cacheErrors, err = mp.meter.Int64Counter(
		"goap.cache.errors",
		metric.WithDescription("Memo backend failures"),
		metric.WithUnit("{error}"),
	); err != nil {
		return err
	}

	if mp.searchDuration, err = mp.meter.Float64Histogram(
		"goap.search.duration",
		metric.WithDescription("Wall-clock duration of searches"),
		metric.WithUnit("ms"),
	); err != nil {
		return err
	}

	if mp.expanded, err = mp.meter.Int64Histogram(
		"goap.search.expanded",
		metric.WithDescription("Nodes expanded per search"),
		metric.WithUnit("{node}"),
	); err != nil {
		return err
	}

	if mp.planLength, err = mp.meter.Int64Histogram(
		"goap.plan.length",
		metric.WithDescription("Steps per returned plan"),
		metric.WithUnit("{step}"),
	); err != nil {
		return err
	}

	mp.active, err = mp.meter.Int64UpDownCounter(
		"goap.plan.active",
		metric.WithDescription("Planning calls in progress"),
		metric.WithUnit("{request}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

func requestAttrs(req planning.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("goap.algorithm", req.Algorithm.String()),
		attribute.String("goap.mode", req.Mode.String()),
	}
}

// RecordRequest records a finished planning call.
func (mp *MetricsProvider) RecordRequest(ctx context.Context, req planning.Request, outcome Outcome) {
	attrs := append(requestAttrs(req), attribute.String("goap.outcome", string(outcome)))
	mp.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSearch records the work done by one search.
func (mp *MetricsProvider) RecordSearch(ctx context.Context, req planning.Request, stats planning.Stats, elapsed time.Duration) {
	opt := metric.WithAttributes(requestAttrs(req)...)
	mp.searchDuration.Record(ctx, float64(elapsed.Microseconds())/1000, opt)
	mp.expanded.Record(ctx, int64(stats.Expanded), opt)
}

// RecordPlan records the length of a returned plan.
func (mp *MetricsProvider) RecordPlan(ctx context.Context, req planning.Request, plan *planning.Plan) {
	attrs := append(requestAttrs(req), attribute.Bool("goap.complete", plan.Complete))
	mp.planLength.Record(ctx, int64(plan.Len()), metric.WithAttributes(attrs...))
}

// RecordTransition records a lifecycle transition.
func (mp *MetricsProvider) RecordTransition(ctx context.Context, from, to string) {
	mp.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state.from", from),
		attribute.String("state.to", to),
	))
}

// RecordCacheHit records a memo hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, backend string) {
	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.backend", backend)))
}

// RecordCacheMiss records a memo miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, backend string) {
	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.backend", backend)))
}

// RecordCacheError records a memo backend failure.
func (mp *MetricsProvider) RecordCacheError(ctx context.Context, backend, op string) {
	mp.cacheErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.backend", backend),
		attribute.String("cache.op", op),
	))
}

// IncrementActive increments the in-progress counter.
func (mp *MetricsProvider) IncrementActive(ctx context.Context) {
	mp.active.Add(ctx, 1)
}

// DecrementActive decrements the in-progress counter.
func (mp *MetricsProvider) DecrementActive(ctx context.Context) {
	mp.active.Add(ctx, -1)
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

func (NoopMetricsProvider) RecordRequest(context.Context, planning.Request, Outcome)     {}
func (NoopMetricsProvider) RecordPlan(context.Context, planning.Request, *planning.Plan) {}
func (NoopMetricsProvider) RecordTransition(context.Context, string, string)             {}
func (NoopMetricsProvider) RecordCacheHit(context.Context, string)                       {}
func (NoopMetricsProvider) RecordCacheMiss(context.Context, string)                      {}
func (NoopMetricsProvider) RecordCacheError(context.Context, string, string)             {}
func (NoopMetricsProvider) IncrementActive(context.Context)                              {}
func (NoopMetricsProvider) DecrementActive(context.Context)                              {}
func (NoopMetricsProvider) RecordSearch(context.Context, planning.Request, planning.Stats, time.Duration) {
}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordRequest(ctx context.Context, req planning.Request, outcome Outcome)
	RecordSearch(ctx context.Context, req planning.Request, stats planning.Stats, elapsed time.Duration)
	RecordPlan(ctx context.Context, req planning.Request, plan *planning.Plan)
	RecordTransition(ctx context.Context, from, to string)
	RecordCacheHit(ctx context.Context, backend string)
	RecordCacheMiss(ctx context.Context, backend string)
	RecordCacheError(ctx context.Context, backend, op string)
	IncrementActive(ctx context.Context)
	DecrementActive(ctx context.Context)
}

var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetricsProvider{}
)
