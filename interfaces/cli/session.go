package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goap/application"
	"github.com/felixgeelhaar/goap/infrastructure/logging"
	"github.com/felixgeelhaar/goap/infrastructure/mcp"
	"github.com/felixgeelhaar/goap/infrastructure/observability"
	"github.com/felixgeelhaar/goap/infrastructure/storage"
	"github.com/felixgeelhaar/goap/infrastructure/telemetry"
)

// serviceOptions are the flags shared by commands that plan.
type serviceOptions struct {
	cache        string
	cacheDSN     string
	cacheTTL     time.Duration
	trace        string
	otlpEndpoint string
	metrics      string
	metricsAddr  string
	remote       string
}

func (o *serviceOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.cache, "cache", "", "Plan memo backend: "+strings.Join(storage.Backends(), ", ")+" (env "+EnvCache+")")
	f.StringVar(&o.cacheDSN, "cache-dsn", "", "Plan memo connection string (env "+EnvCacheDSN+")")
	f.DurationVar(&o.cacheTTL, "cache-ttl", 0, "Plan memo entry lifetime (0 keeps entries until evicted)")
	f.StringVar(&o.trace, "trace", "", "Trace exporter: none, stdout or otlp")
	f.StringVar(&o.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint (env "+EnvOTLPEndpoint+")")
	f.StringVar(&o.metrics, "metrics", "", "Metric exporter: none, stdout or prometheus")
	f.StringVar(&o.metricsAddr, "metrics-addr", ":9464", "Listen address for the prometheus scrape endpoint")
	f.StringVar(&o.remote, "remote", "", "Plan through a remote MCP planner started with this command, e.g. \"goap mcp\"")
}

// session owns a Service and the resources behind it.
type session struct {
	service  *application.Service
	tracing  *observability.Provider
	exporter *telemetry.Exporter
	client   *mcp.Client
	server   *http.Server
}

func (a *App) openSession(ctx context.Context, o *serviceOptions) (*session, error) {
	s := &session{}
	opts := []application.Option{application.WithLogger(logging.Get())}

	exporter, ok := observability.ParseExporter(o.trace)
	if !ok {
		s.close(ctx)
		return nil, fmt.Errorf("unknown trace exporter %q", o.trace)
	}
	if exporter != observability.ExporterNoop {
		tracing, err := observability.New(
			observability.WithServiceVersion(Version),
			observability.WithTracing(exporter, envOr(o.otlpEndpoint, EnvOTLPEndpoint)),
			observability.WithTracingInsecure(),
		)
		if err != nil {
			s.close(ctx)
			return nil, err
		}
		s.tracing = tracing
		opts = append(opts, application.WithTracer(tracing.Tracer()))
	}

	metrics, err := telemetry.NewExporter(o.metrics, a.stderr)
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	s.exporter = metrics
	opts = append(opts, application.WithMetrics(metrics.Metrics()))
	if h := metrics.Handler(); h != nil {
		if err := s.serveMetrics(o.metricsAddr, h); err != nil {
			s.close(ctx)
			return nil, err
		}
	}

	if o.remote != "" {
		client := mcp.NewClient(
			mcp.WithClientName("goap"),
			mcp.WithClientVersion(Version),
			mcp.WithServerCommand(strings.Fields(o.remote)...),
		)
		if err := client.Connect(ctx); err != nil {
			s.close(ctx)
			return nil, err
		}
		s.client = client
		opts = append(opts, application.WithPlanner(mcp.NewRemotePlanner(client)))
	}

	if backend := envOr(o.cache, EnvCache); backend != "" {
		memo, err := storage.Open(ctx, backend, envOr(o.cacheDSN, EnvCacheDSN))
		if err != nil {
			s.close(ctx)
			return nil, fmt.Errorf("open plan memo: %w", err)
		}
		opts = append(opts, application.WithCache(memo, o.cacheTTL), application.WithCacheBackend(backend))
	}

	// service.Close closes the memo.
	s.service = application.NewService(opts...)
	return s, nil
}

func (s *session) serveMetrics(addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn().Add(logging.ErrorField(err)).Msg("metrics server stopped")
		}
	}()
	logging.Info().Add(logging.Str("addr", ln.Addr().String())).Msg("serving metrics")
	return nil
}

func (s *session) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	warn := func(what string, err error) {
		if err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg(what)
		}
	}
	if s.service != nil {
		warn("close plan memo", s.service.Close())
	}
	if s.client != nil {
		warn("close remote planner", s.client.Close())
	}
	if s.server != nil {
		warn("stop metrics server", s.server.Shutdown(ctx))
	}
	if s.exporter != nil {
		warn("flush metrics", s.exporter.Shutdown(ctx))
	}
	if s.tracing != nil {
		warn("flush traces", s.tracing.Shutdown(ctx))
	}
}
