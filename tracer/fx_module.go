package tracer

import (
	"context"

	"github.com/aalemi-dev/sockettrace/observability"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
)

// FXModule provides *Exporter and flushes it on application stop.
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return cfg }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(NewExporterWithDI),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies needed to create an Exporter.
type TracerParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewExporterWithDI creates an Exporter from injected dependencies.
func NewExporterWithDI(params TracerParams) (*Exporter, error) {
	e, err := NewExporter(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		e.logger = params.Logger
	}
	if params.Observer != nil {
		e.observer = params.Observer
	}
	return e, nil
}

// RegisterTracerLifecycle routes OTLP export errors to the exporter's logger
// and shuts the provider down when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, exporter *Exporter) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if exporter.logger != nil && exporter.cfg.EnableExport {
				otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
					exporter.logger.ErrorWithContext(context.Background(), "OTLP export failed", err)
				}))
			}
			exporter.logInfo(ctx, "OTLP record exporter started", map[string]interface{}{
				"protocol": exporter.cfg.Protocol,
				"endpoint": exporter.cfg.Endpoint,
				"export":   exporter.cfg.EnableExport,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			exporter.logInfo(ctx, "Shutting down OTLP record exporter", nil)
			return exporter.Shutdown(ctx)
		},
	})
}

func (e *Exporter) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}
