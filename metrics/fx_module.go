package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
)

// Logger is the subset of logger.Logger used for server lifecycle messages.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *Metrics, MetricsCollector and *TracingMetrics, and runs
// the metrics servers for the lifetime of the application.
//
//	app := fx.New(
//	    metrics.FXModule,
//	    fx.Provide(func() metrics.Config { return cfg.Metrics }),
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) MetricsCollector { return m },
			fx.As(new(MetricsCollector)),
		),
		func(m *Metrics) *TracingMetrics { return NewTracingMetrics(m, m.Namespace()) },
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// MetricsLifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type MetricsLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the configured servers on start and shuts
// them down on stop.
func RegisterMetricsLifecycle(params MetricsLifecycleParams) {
	m, log := params.Metrics, params.Logger

	serve := func(name string, srv *http.Server) {
		if log != nil {
			log.Info("Starting metrics server", nil, map[string]interface{}{
				"endpoint": name,
				"address":  srv.Addr,
			})
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
			log.Error("Metrics server failed", err, map[string]interface{}{"endpoint": name})
		}
	}
	shutdown := func(ctx context.Context, name string, srv *http.Server) {
		if err := srv.Shutdown(ctx); err != nil && log != nil {
			log.Error("Error shutting down metrics server", err, map[string]interface{}{"endpoint": name})
		}
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if m.SystemServer != nil {
				go serve("system", m.SystemServer)
			}
			if m.ApplicationServer != nil {
				go serve("application", m.ApplicationServer)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if m.SystemServer != nil {
				shutdown(ctx, "system", m.SystemServer)
			}
			if m.ApplicationServer != nil {
				shutdown(ctx, "application", m.ApplicationServer)
			}
			return nil
		},
	})
}
