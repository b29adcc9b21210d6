package metrics

// Default listen addresses of the two metrics endpoints.
const (
	DefaultSystemMetricsAddress      = ":9090"
	DefaultApplicationMetricsAddress = ":9091"
)

// DefaultNamespace prefixes every tracing metric.
const DefaultNamespace = "socktrace"

// Config controls the Prometheus endpoints.
//
// The system endpoint serves Go runtime, process and build info collectors.
// The application endpoint serves the tracing metrics. A nil address uses the
// default, a pointer to "" disables the HTTP server (metrics are still
// collected and can be gathered from the registry).
type Config struct {
	SystemMetricsAddress      *string `yaml:"system_metrics_address" split_words:"true"`
	ApplicationMetricsAddress *string `yaml:"application_metrics_address" split_words:"true"`

	// ServiceName is added as a constant "service" label.
	ServiceName string `yaml:"service_name" split_words:"true"`

	// Namespace prefixes the tracing metric names. Defaults to socktrace.
	Namespace string `yaml:"namespace"`
}

// Ptr returns a pointer to s, for disabling an endpoint:
//
//	metrics.Config{SystemMetricsAddress: metrics.Ptr("")}
func Ptr(s string) *string {
	return &s
}
