package tracer

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/aalemi-dev/sockettrace/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// instrumentationName names the tracer that owns every exported span.
const instrumentationName = "github.com/aalemi-dev/sockettrace"

// Logger is the subset of the logger package used by the exporter.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Exporter turns request records into OTLP spans. It implements record.Sink.
type Exporter struct {
	cfg      Config
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	conn     *grpc.ClientConn

	logger   Logger
	observer observability.Observer
}

// NewExporter builds an exporter from cfg. With EnableExport set, spans are
// batched to an OTLP collector over cfg.Protocol; otherwise they are built and
// dropped.
func NewExporter(cfg Config) (*Exporter, error) {
	return newExporterWithContext(context.Background(), cfg)
}

func newExporterWithContext(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.EnableExport {
		return newExporter(cfg, nil, nil), nil
	}

	var conn *grpc.ClientConn
	var client otlptrace.Client
	switch cfg.Protocol {
	case "", ProtocolHTTP:
		client = otlptracehttp.NewClient(httpOptions(cfg)...)
	case ProtocolGRPC:
		var err error
		conn, err = dialCollector(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		client = otlptracegrpc.NewClient(
			otlptracegrpc.WithGRPCConn(conn),
			otlptracegrpc.WithHeaders(cfg.Headers),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, cfg.Protocol)
	}

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
	}

	e := newExporter(cfg, sdktrace.WithBatcher(exporter), conn)
	return e, nil
}

// NewExporterWithSpanExporter builds an exporter that hands every span
// synchronously to exp. It ignores EnableExport and the transport settings.
func NewExporterWithSpanExporter(cfg Config, exp sdktrace.SpanExporter) *Exporter {
	return newExporter(cfg, sdktrace.WithSyncer(exp), nil)
}

func newExporter(cfg Config, processor sdktrace.TracerProviderOption, conn *grpc.ClientConn) *Exporter {
	options := []sdktrace.TracerProviderOption{
		sdktrace.WithIDGenerator(pinnedIDGenerator{}),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.AppEnv),
			attribute.String("environment", cfg.AppEnv),
		)),
	}
	if processor != nil {
		options = append(options, processor)
	}

	tp := sdktrace.NewTracerProvider(options...)
	return &Exporter{
		cfg:      cfg,
		provider: tp,
		tracer:   tp.Tracer(instrumentationName),
		conn:     conn,
	}
}

func httpOptions(cfg Config) []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return opts
}

func dialCollector(cfg Config) (*grpc.ClientConn, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}
	return grpc.NewClient(endpoint, grpc.WithTransportCredentials(creds))
}

// WithLogger attaches a logger for lifecycle events and export failures.
func (e *Exporter) WithLogger(logger Logger) *Exporter {
	e.logger = logger
	return e
}

// WithObserver attaches an observer notified of every exported record.
func (e *Exporter) WithObserver(observer observability.Observer) *Exporter {
	e.observer = observer
	return e
}

// Config returns the exporter configuration.
func (e *Exporter) Config() Config {
	return e.cfg
}

// ForceFlush exports all spans still queued in the batcher.
func (e *Exporter) ForceFlush(ctx context.Context) error {
	return e.provider.ForceFlush(ctx)
}

// Shutdown flushes pending spans and releases the collector connection.
func (e *Exporter) Shutdown(ctx context.Context) error {
	err := e.provider.Shutdown(ctx)
	if e.conn != nil {
		if cerr := e.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
