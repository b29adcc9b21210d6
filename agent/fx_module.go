package agent

import (
	"context"

	"github.com/aalemi-dev/sockettrace/config"
	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/interceptor"
	"github.com/aalemi-dev/sockettrace/kafka"
	"github.com/aalemi-dev/sockettrace/logger"
	"github.com/aalemi-dev/sockettrace/metrics"
	"github.com/aalemi-dev/sockettrace/minio"
	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/propagation"
	"github.com/aalemi-dev/sockettrace/record"
	"github.com/aalemi-dev/sockettrace/recordstore"
	"github.com/aalemi-dev/sockettrace/registry"
	"github.com/aalemi-dev/sockettrace/schema_registry"
	"github.com/aalemi-dev/sockettrace/sink"
	"github.com/aalemi-dev/sockettrace/socket"
	"github.com/aalemi-dev/sockettrace/threadctx"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/aalemi-dev/sockettrace/tracer"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// sinkGroup collects every configured record.Sink.
const sinkGroup = `group:"record_sinks"`

// Options assembles the whole tracer from cfg: logger, metrics, the sinks
// named in cfg.Sinks behind one asynchronous pipeline, and the interceptor
// with its shim. cfg must be validated.
func Options(cfg *config.Config) fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			func(c *config.Config) logger.Config { return c.Log },
			func(c *config.Config) metrics.Config { return c.Metrics },
		),
		logger.FXModule,
		fx.Provide(fx.Annotate(
			func(l *logger.LoggerClient) *logger.LoggerClient { return l },
			fx.As(
				new(metrics.Logger),
				new(kafka.Logger),
				new(tracer.Logger),
				new(recordstore.Logger),
				new(schema_registry.Logger),
				new(minio.Logger),
			),
		)),
		metrics.FXModule,
		fx.Provide(NewObserver),
		fx.Provide(fx.Annotate(NewLogSink, fx.ResultTags(sinkGroup))),
	}

	if cfg.HasSink(config.SinkKafka) {
		opts = append(opts,
			fx.Provide(func(c *config.Config) kafka.Config { return c.Kafka }),
			kafka.FXModule,
			fx.Provide(fx.Annotate(func(s *kafka.Sink) record.Sink { return s }, fx.ResultTags(sinkGroup))),
		)
		if cfg.SchemaRegistry.URL != "" {
			opts = append(opts,
				fx.Provide(func(c *config.Config) schema_registry.Config { return c.SchemaRegistry }),
				schema_registry.FXModule,
				fx.Provide(NewKafkaSerializer),
			)
		}
	}
	if cfg.HasSink(config.SinkOTLP) {
		opts = append(opts,
			fx.Provide(func(c *config.Config) tracer.Config { return c.OTLP }),
			tracer.FXModule,
			fx.Provide(fx.Annotate(func(e *tracer.Exporter) record.Sink { return e }, fx.ResultTags(sinkGroup))),
		)
	}
	if cfg.HasSink(config.SinkStore) {
		opts = append(opts,
			fx.Provide(func(c *config.Config) recordstore.Config { return c.Store }),
			recordstore.FXModule,
			fx.Provide(fx.Annotate(func(s *recordstore.Store) record.Sink { return s }, fx.ResultTags(sinkGroup))),
		)
	}

	if cfg.HasSink(config.SinkArchive) {
		opts = append(opts,
			fx.Provide(func(c *config.Config) minio.Config { return c.Archive }),
			minio.FXModule,
			fx.Provide(fx.Annotate(func(a *minio.Archive) record.Sink { return a }, fx.ResultTags(sinkGroup))),
		)
	}

	opts = append(opts,
		fx.Provide(
			NewPipeline,
			NewSampler,
			NewResolver,
			NewHooks,
			NewRegistry,
			NewInterceptor,
			NewShim,
		),
		fx.Invoke(RegisterAgentLifecycle),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
	)

	return fx.Module("agent", opts...)
}

// NewKafkaSerializer frames Kafka values with the registry schema ID.
func NewKafkaSerializer(cfg *config.Config, registry schema_registry.Registry) (kafka.Serializer, error) {
	return schema_registry.NewRecordSerializer(registry, cfg.SchemaRegistry.Subject)
}

// NewObserver feeds every component event into the tracing metrics.
func NewObserver(tm *metrics.TracingMetrics) observability.Observer {
	return observability.Funnel{tm}
}

// LogSinkParams groups the dependencies of NewLogSink.
type LogSinkParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
}

// NewLogSink opens the record log when the log sink is enabled and syncs it on
// stop. Otherwise it returns nil, which sink.Multi skips.
func NewLogSink(params LogSinkParams) (record.Sink, error) {
	if !params.Config.HasSink(config.SinkLog) {
		return nil, nil
	}
	s, err := sink.NewLogSink(params.Config.RecordOutput)
	if err != nil {
		return nil, err
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = s.Sync()
			return nil
		},
	})
	return s, nil
}

// PipelineParams groups the dependencies of NewPipeline.
type PipelineParams struct {
	fx.In

	Config   *config.Config
	Sinks    []record.Sink `group:"record_sinks"`
	Logger   *logger.LoggerClient
	Observer observability.Observer
}

// NewPipeline queues records in front of all configured sinks.
func NewPipeline(params PipelineParams) *sink.Async {
	return sink.NewAsync(sink.Multi(params.Sinks), params.Config.SinkBuffer).
		WithLogger(params.Logger).
		WithObserver(params.Observer)
}

// NewSampler builds the frontend sampler from cfg.SampleRate.
func NewSampler(cfg *config.Config) (*tracecontext.Sampler, error) {
	return tracecontext.NewSampler(cfg.SampleRate)
}

// NewResolver builds the endpoint resolver over the real socket calls and the
// configured services table.
func NewResolver(cfg *config.Config) (*endpoint.Resolver, error) {
	services, err := cfg.ServicesTable()
	if err != nil {
		return nil, err
	}
	return endpoint.NewResolver(interceptor.Originals(), services), nil
}

// HooksParams groups the dependencies of NewHooks.
type HooksParams struct {
	fx.In

	Config   *config.Config
	Sampler  *tracecontext.Sampler
	Resolver *endpoint.Resolver
	Pipeline *sink.Async
	Logger   *logger.LoggerClient
	Observer observability.Observer
}

// NewHooks builds the per-request state machine hooks. Only backends read a
// propagated context.
func NewHooks(params HooksParams) *socket.Hooks {
	cfg := params.Config
	sys := interceptor.Originals()

	var receiver *propagation.Receiver
	if cfg.Kind() == socket.Backend {
		receiver = propagation.NewReceiver(sys, cfg.RecvAttempts)
	}

	return socket.NewHooks(
		socket.Config{ServiceName: cfg.ServiceName, Kind: cfg.Kind()},
		params.Sampler,
		params.Resolver,
		propagation.NewSender(sys, cfg.SendAttempts, cfg.SendPollTimeout),
		receiver,
		params.Pipeline,
	).WithLogger(params.Logger).WithObserver(params.Observer)
}

// NewRegistry builds the descriptor registry.
func NewRegistry(l *logger.LoggerClient, observer observability.Observer) *registry.Registry[socket.Record] {
	return registry.New[socket.Record]().WithLogger(l).WithObserver(observer)
}

// InterceptorParams groups the dependencies of NewInterceptor.
type InterceptorParams struct {
	fx.In

	Hooks    *socket.Hooks
	Registry *registry.Registry[socket.Record]
	Logger   *logger.LoggerClient
	Observer observability.Observer
}

// NewInterceptor binds the hooks to the real socket calls.
func NewInterceptor(params InterceptorParams) *interceptor.Interceptor {
	return interceptor.New(interceptor.Originals(), params.Hooks, params.Registry).
		WithLogger(params.Logger).
		WithObserver(params.Observer)
}

// NewShim wraps the interceptor with a per-thread context store.
func NewShim(i *interceptor.Interceptor) *interceptor.Shim {
	return interceptor.NewShim(i, threadctx.NewStore())
}

// AgentLifecycleParams groups the dependencies of RegisterAgentLifecycle.
type AgentLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Resolver  *endpoint.Resolver
	Pipeline  *sink.Async
	Shim      *interceptor.Shim
	Logger    *logger.LoggerClient
}

// RegisterAgentLifecycle starts the services watcher when configured and
// drains the pipeline on stop. Its stop hook runs before the sinks close.
func RegisterAgentLifecycle(params AgentLifecycleParams) error {
	cfg, log := params.Config, params.Logger

	var watcher *endpoint.ServicesWatcher
	if cfg.WatchServices {
		inline, err := cfg.InlineServices()
		if err != nil {
			return err
		}
		watcher, err = endpoint.NewServicesWatcher(cfg.ServicesFile, inline, params.Resolver)
		if err != nil {
			return err
		}
		watcher.WithLogger(log)
	}
	watchCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.InfoWithContext(ctx, "Socket tracer started", nil, map[string]interface{}{
				"service":     cfg.ServiceName,
				"server_kind": cfg.ServerKind,
				"sample_rate": cfg.SampleRate,
				"sinks":       cfg.Sinks,
				"services":    params.Resolver.Services().Len(),
			})
			if watcher != nil {
				go func() { _ = watcher.Run(watchCtx) }()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			err := params.Pipeline.Close(ctx)
			log.InfoWithContext(ctx, "Socket tracer stopped", err, map[string]interface{}{
				"tracked_sockets": params.Shim.Interceptor().Registry().Len(),
				"dropped":         params.Pipeline.Dropped(),
			})
			return err
		},
	})
	return nil
}
