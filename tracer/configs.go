package tracer

// Protocol values accepted in Config.Protocol.
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// Config defines how request records are exported as OTLP spans.
type Config struct {
	// ServiceName is set as the service.name resource attribute.
	ServiceName string `yaml:"service_name" split_words:"true"`

	// AppEnv sets the "deployment.environment" and "environment" resource
	// attributes. Common values include "development", "staging", "production".
	AppEnv string `yaml:"app_env" split_words:"true"`

	// EnableExport controls whether spans leave the process. When false the
	// exporter still builds spans, which keeps the pipeline testable, but
	// nothing is sent.
	EnableExport bool `yaml:"enable_export" split_words:"true"`

	// Protocol selects the OTLP transport: "http" (default) or "grpc".
	Protocol string `yaml:"protocol"`

	// Endpoint is the collector address, host:port without scheme. Empty
	// leaves the exporter's own default and OTEL_EXPORTER_OTLP_* variables in
	// charge.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Headers are sent with every export request.
	Headers map[string]string `yaml:"headers"`
}
