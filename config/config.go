package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aalemi-dev/sockettrace/kafka"
	"github.com/aalemi-dev/sockettrace/logger"
	"github.com/aalemi-dev/sockettrace/metrics"
	"github.com/aalemi-dev/sockettrace/minio"
	"github.com/aalemi-dev/sockettrace/propagation"
	"github.com/aalemi-dev/sockettrace/recordstore"
	"github.com/aalemi-dev/sockettrace/schema_registry"
	"github.com/aalemi-dev/sockettrace/sink"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/aalemi-dev/sockettrace/tracer"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable, e.g. SOCKTRACE_SAMPLE_RATE.
const EnvPrefix = "SOCKTRACE"

// FileEnv names the optional YAML file read before the environment.
const FileEnv = EnvPrefix + "_CONFIG_FILE"

// Record sink names accepted in Config.Sinks.
const (
	SinkLog     = "log"
	SinkKafka   = "kafka"
	SinkOTLP    = "otlp"
	SinkStore   = "store"
	SinkArchive = "archive"
)

// Config is the complete configuration of a traced process.
type Config struct {
	// ServiceName is stamped on records and used as the logger and metrics
	// service label.
	ServiceName string `yaml:"service_name" split_words:"true"`

	// ServerKind is frontend (servers sample) or backend (servers read the
	// propagated context).
	ServerKind string `yaml:"server_kind" split_words:"true"`

	// SampleRate is the fraction of frontend requests traced, in [0, 1].
	SampleRate float64 `yaml:"sample_rate" split_words:"true"`

	// ServicesFile is a YAML side-table of instrumented services.
	ServicesFile string `yaml:"services_file" split_words:"true"`

	// Services is the inline side-table "ip=name,ip=name". It overrides
	// entries of ServicesFile.
	Services string `yaml:"services"`

	// WatchServices reloads ServicesFile when it changes.
	WatchServices bool `yaml:"watch_services" split_words:"true"`

	SendAttempts    int           `yaml:"send_attempts" split_words:"true"`
	RecvAttempts    int           `yaml:"recv_attempts" split_words:"true"`
	SendPollTimeout time.Duration `yaml:"send_poll_timeout" split_words:"true"`

	// Sinks lists where request records go: log, kafka, otlp, store, archive.
	Sinks []string `yaml:"sinks"`

	// SinkBuffer is the queue length in front of the sinks.
	SinkBuffer int `yaml:"sink_buffer" split_words:"true"`

	// RecordOutput is where the log sink writes: stdout, stderr or a path.
	RecordOutput string `yaml:"record_output" split_words:"true"`

	Log     logger.Config      `yaml:"log"`
	Metrics metrics.Config     `yaml:"metrics"`
	Kafka   kafka.Config       `yaml:"kafka"`
	OTLP    tracer.Config      `yaml:"otlp"`
	Store   recordstore.Config `yaml:"store"`
	Archive minio.Config       `yaml:"archive"`

	// SchemaRegistry frames Kafka values with a Confluent schema ID when its
	// URL is set.
	SchemaRegistry schema_registry.Config `yaml:"schema_registry" split_words:"true"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServerKind:      "frontend",
		SampleRate:      tracecontext.DefaultSampleRate,
		SendAttempts:    propagation.DefaultSendAttempts,
		RecvAttempts:    propagation.DefaultRecvAttempts,
		SendPollTimeout: propagation.DefaultSendPollTimeout,
		Sinks:           []string{SinkLog},
		SinkBuffer:      sink.DefaultBufferSize,
		RecordOutput:    sink.DefaultLogOutput,
		Log: logger.Config{
			Level:         logger.Info,
			EnableTracing: true,
		},
		Metrics: metrics.Config{
			ApplicationMetricsAddress: metrics.Ptr(""),
			SystemMetricsAddress:      metrics.Ptr(""),
		},
		Kafka: kafka.Config{
			Topic: "socktrace.records",
			Async: true,
		},
		OTLP: tracer.Config{
			Protocol:     tracer.ProtocolHTTP,
			EnableExport: true,
		},
		Store: recordstore.Config{
			Driver:      recordstore.DriverPostgres,
			AutoMigrate: true,
		},
		Archive: minio.Config{
			Bucket: minio.DefaultBucket,
			Prefix: minio.DefaultPrefix,
		},
	}
}

// Load builds the configuration from Default, then the YAML file named by
// SOCKTRACE_CONFIG_FILE if set, then SOCKTRACE_* variables, and validates it.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	cfg.propagateServiceName()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load with an explicit YAML file. Environment variables still
// take precedence over the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	cfg.propagateServiceName()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault returns Load's result, or Default when loading fails. A
// tracer that cannot read its configuration still must not break its host.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// propagateServiceName fills the per-component service names left empty.
func (c *Config) propagateServiceName() {
	if c.Log.ServiceName == "" {
		c.Log.ServiceName = c.ServiceName
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.ServiceName
	}
	if c.OTLP.ServiceName == "" {
		c.OTLP.ServiceName = c.ServiceName
	}
	if c.SchemaRegistry.Subject == "" && c.Kafka.Topic != "" {
		c.SchemaRegistry.Subject = c.Kafka.Topic + "-value"
	}
}

// Marshal renders c as YAML with secrets blanked.
func (c *Config) Marshal() ([]byte, error) {
	redacted := *c
	if redacted.Kafka.SASL.Password != "" {
		redacted.Kafka.SASL.Password = redactedValue
	}
	if redacted.Store.Connection.Password != "" {
		redacted.Store.Connection.Password = redactedValue
	}
	if redacted.Archive.Connection.SecretAccessKey != "" {
		redacted.Archive.Connection.SecretAccessKey = redactedValue
	}
	if redacted.SchemaRegistry.Password != "" {
		redacted.SchemaRegistry.Password = redactedValue
	}
	if len(redacted.OTLP.Headers) > 0 {
		headers := make(map[string]string, len(redacted.OTLP.Headers))
		for k := range redacted.OTLP.Headers {
			headers[k] = redactedValue
		}
		redacted.OTLP.Headers = headers
	}
	return yaml.Marshal(&redacted)
}

const redactedValue = "[redacted]"
