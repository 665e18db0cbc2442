package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metric exporters accepted by NewExporter.
const (
	ExporterNone       = "none"
	ExporterPrometheus = "prometheus"
	ExporterStdout     = "stdout"
)

// ErrUnknownMetricExporter is returned for an unsupported exporter name.
var ErrUnknownMetricExporter = errors.New("unknown metric exporter")

// Exporter owns a meter provider and, for Prometheus, its scrape handler.
type Exporter struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

// NewExporter creates a meter provider for the named exporter. Prometheus
// metrics go to a private registry served by Handler. Stdout metrics are
// written to w on Shutdown.
func NewExporter(name string, w io.Writer) (*Exporter, error) {
	switch name {
	case "", ExporterNone:
		return &Exporter{}, nil
	case ExporterPrometheus:
		registry := prometheus.NewRegistry()
		reader, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		return &Exporter{
			provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
			handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}, nil
	case ExporterStdout:
		if w == nil {
			w = os.Stderr
		}
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		return &Exporter{
			provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp))),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetricExporter, name)
	}
}

// Metrics returns the planning metrics recorder for this exporter. With no
// exporter configured it records nothing.
func (e *Exporter) Metrics() Metrics {
	if e.provider == nil {
		return NoopMetricsProvider{}
	}
	cfg := DefaultMetricsConfig()
	cfg.MeterProvider = e.provider
	return NewMetricsProvider(cfg)
}

// Handler returns the Prometheus scrape handler, or nil.
func (e *Exporter) Handler() http.Handler {
	return e.handler
}

// Shutdown flushes and stops the meter provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.provider == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}
