package observability

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/goap/domain/planning"
	"github.com/felixgeelhaar/goap/domain/telemetry"
	"github.com/felixgeelhaar/goap/infrastructure/planner"
	plantelemetry "github.com/felixgeelhaar/goap/infrastructure/telemetry"
)

// Middleware decorates a planner.
type Middleware func(planner.Planner) planner.Planner

// Chain wraps p with mws; the first middleware is the outermost.
func Chain(p planner.Planner, mws ...Middleware) planner.Planner {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// RequestAttributes describes a request for span attributes.
func RequestAttributes(req planning.Request) []telemetry.Attribute {
	return []telemetry.Attribute{
		telemetry.String(telemetry.KeyAlgorithm, req.Algorithm.String()),
		telemetry.String(telemetry.KeyMode, req.Mode.String()),
		telemetry.Int(telemetry.KeyBound, req.Bound),
		telemetry.Int(telemetry.KeyActions, req.Actions.Len()),
		telemetry.Int(telemetry.KeyGoals, len(req.Goals)),
	}
}

// PlanAttributes describes a plan for span attributes.
func PlanAttributes(plan *planning.Plan) []telemetry.Attribute {
	return []telemetry.Attribute{
		telemetry.Int(telemetry.KeySteps, plan.Len()),
		telemetry.Bool(telemetry.KeyComplete, plan.Complete),
		telemetry.Float64(telemetry.KeyDiscontentment, plan.Discontentment()),
		telemetry.Int(telemetry.KeyExpanded, plan.Stats.Expanded),
		telemetry.Int(telemetry.KeyMaxDepth, plan.Stats.MaxDepth),
	}
}

// TracingMiddleware records each search as a "goap.search" span.
func TracingMiddleware(tracer telemetry.Tracer) Middleware {
	return func(next planner.Planner) planner.Planner {
		return planner.Func(func(ctx context.Context, req planning.Request) (*planning.Plan, error) {
			ctx, span := tracer.StartSpan(ctx, "goap.search",
				telemetry.WithAttributes(RequestAttributes(req)...),
				telemetry.WithSpanKind(telemetry.SpanKindInternal),
			)
			defer span.End()

			plan, err := next.Plan(ctx, req)
			if err != nil {
				var failure *planning.Failure
				if errors.As(err, &failure) {
					span.SetAttributes(
						telemetry.Int(telemetry.KeyExpanded, failure.Expanded),
						telemetry.Int(telemetry.KeyMaxDepth, failure.MaxDepth),
					)
				}
				span.RecordError(err)
				span.SetStatus(telemetry.StatusCodeError, err.Error())
				return nil, err
			}

			span.SetAttributes(PlanAttributes(plan)...)
			span.SetStatus(telemetry.StatusCodeOK, "")
			return plan, nil
		})
	}
}

// MetricsMiddleware records search duration and expansions.
func MetricsMiddleware(metrics plantelemetry.Metrics) Middleware {
	return func(next planner.Planner) planner.Planner {
		return planner.Func(func(ctx context.Context, req planning.Request) (*planning.Plan, error) {
			start := time.Now()
			plan, err := next.Plan(ctx, req)
			elapsed := time.Since(start)

			var stats planning.Stats
			var failure *planning.Failure
			switch {
			case err == nil:
				stats = plan.Stats
				metrics.RecordPlan(ctx, req, plan)
			case errors.As(err, &failure):
				stats = planning.Stats{Expanded: failure.Expanded, MaxDepth: failure.MaxDepth}
			default:
				return nil, err
			}
			metrics.RecordSearch(ctx, req, stats, elapsed)
			return plan, err
		})
	}
}
