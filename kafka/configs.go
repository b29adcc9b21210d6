package kafka

import (
	"context"
	"time"
)

// Config defines the producer side of the Kafka record sink.
type Config struct {
	// Brokers is a list of Kafka broker addresses
	Brokers []string `yaml:"brokers"`

	// Topic receives one message per request record
	Topic string `yaml:"topic"`

	// RequiredAcks determines how many replica acknowledgments to wait for
	// Options:
	//   RequireNone (0): Don't wait for acknowledgment
	//   RequireOne (1): Wait for leader only
	//   RequireAll (-1): Wait for all in-sync replicas
	// Default: RequireAll (-1)
	RequiredAcks int `yaml:"required_acks" split_words:"true"`

	// WriteTimeout bounds a single publish, including acknowledgment
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`

	// Async enables batched fire-and-forget writes
	// Default: false
	Async bool `yaml:"async"`

	// BatchSize is the maximum number of messages to batch together
	// Only used when Async is true
	// Default: 100
	BatchSize int `yaml:"batch_size" split_words:"true"`

	// BatchTimeout is the maximum time to wait before sending a batch
	// Only used when Async is true
	// Default: 1s
	BatchTimeout time.Duration `yaml:"batch_timeout" split_words:"true"`

	// CompressionCodec specifies the compression algorithm to use
	// Options: "" (none), gzip, snappy, lz4, zstd
	CompressionCodec string `yaml:"compression_codec" split_words:"true"`

	// MaxAttempts is the maximum number of attempts to deliver a message
	// Default: 10
	MaxAttempts int `yaml:"max_attempts" split_words:"true"`

	// AllowAutoTopicCreation lets the writer create Topic on first publish
	AllowAutoTopicCreation bool `yaml:"allow_auto_topic_creation" split_words:"true"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls"`

	// SASL contains SASL authentication configuration
	SASL SASLConfig `yaml:"sasl"`
}

// Logger is the subset of the logger package used by the sink.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CACertPath is the file path to the CA certificate for verifying the broker
	CACertPath string `yaml:"ca_cert_path" split_words:"true"`

	ClientCertPath string `yaml:"client_cert_path" split_words:"true"`
	ClientKeyPath  string `yaml:"client_key_path" split_words:"true"`

	// InsecureSkipVerify should only be used in testing
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" split_words:"true"`
}

// SASLConfig contains SASL authentication configuration parameters.
type SASLConfig struct {
	Enabled bool `yaml:"enabled"`

	// Mechanism is one of "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"
	Mechanism string `yaml:"mechanism"`

	Username string `yaml:"username"`
	Password string `yaml:"password"` //nolint:gosec
}

// Default values for configuration
const (
	DefaultRequiredAcks = -1
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 1 * time.Second
	DefaultMaxAttempts  = 10
	DefaultWriteTimeout = 10 * time.Second

	RequireNone = 0
	RequireOne  = 1
	RequireAll  = -1
)

// Header keys set on every published record.
const (
	HeaderRole    = "role"
	HeaderService = "service"
	HeaderSpanID  = "span_id"
)
