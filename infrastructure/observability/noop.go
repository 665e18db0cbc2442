package observability

import (
	"context"

	"github.com/felixgeelhaar/goap/domain/telemetry"
)

// NoopTracer is a no-op tracer implementation.
type NoopTracer struct{}

// NewNoopTracer creates a new no-op tracer.
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{}
}

// StartSpan implements telemetry.Tracer.
func (t *NoopTracer) StartSpan(ctx context.Context, _ string, _ ...telemetry.SpanOption) (context.Context, telemetry.Span) {
	return ctx, noopSpan{}
}

var _ telemetry.Tracer = (*NoopTracer)(nil)

type noopSpan struct{}

func (noopSpan) End()                                    {}
func (noopSpan) SetAttributes(...telemetry.Attribute)    {}
func (noopSpan) RecordError(error)                       {}
func (noopSpan) SetStatus(telemetry.StatusCode, string)  {}
func (noopSpan) AddEvent(string, ...telemetry.Attribute) {}

var _ telemetry.Span = noopSpan{}
