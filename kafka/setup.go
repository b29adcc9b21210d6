package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Writer is the part of *kafka.Writer the sink depends on.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink publishes request records to a Kafka topic. It implements record.Sink.
type Sink struct {
	cfg Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional logging for lifecycle and publish failures
	logger Logger

	writer     Writer
	serializer Serializer

	// mu protects writer against concurrent shutdown
	mu sync.RWMutex

	closeOnce sync.Once
}

// NewSink creates a Sink with a producer configured from cfg.
//
// Example:
//
//	s, err := kafka.NewSink(config)
//	if err != nil {
//		return nil, err
//	}
//	defer s.GracefulShutdown()
func NewSink(cfg Config) (*Sink, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, ErrInvalidConfig
	}
	cfg = applyDefaults(cfg)

	s := &Sink{
		cfg:        cfg,
		serializer: &JSONSerializer{},
	}

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	s.writer = createWriter(cfg, tlsConfig, mechanism, s)
	return s, nil
}

// newSinkWithWriter builds a Sink around an existing writer.
func newSinkWithWriter(cfg Config, w Writer) *Sink {
	return &Sink{
		cfg:        applyDefaults(cfg),
		writer:     w,
		serializer: &JSONSerializer{},
	}
}

func applyDefaults(cfg Config) Config {
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = DefaultRequiredAcks
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	return cfg
}

// WithObserver attaches an observer notified of every publish.
func (s *Sink) WithObserver(observer observability.Observer) *Sink {
	s.observer = observer
	return s
}

// WithLogger attaches a logger for lifecycle events and publish failures.
func (s *Sink) WithLogger(logger Logger) *Sink {
	s.logger = logger
	return s
}

// WithSerializer replaces the default JSON serializer.
func (s *Sink) WithSerializer(serializer Serializer) *Sink {
	if serializer != nil {
		s.serializer = serializer
	}
	return s
}

// Config returns the effective configuration after defaults.
func (s *Sink) Config() Config {
	return s.cfg
}

func (s *Sink) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (s *Sink) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

// createErrorLogger routes kafka-go internal errors to the sink's logger.
func createErrorLogger(s *Sink) kafka.LoggerFunc {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		if s.logger == nil {
			return
		}
		formatted := msg
		if len(args) > 0 {
			formatted = fmt.Sprintf(msg, args...)
		}
		s.logger.ErrorWithContext(context.Background(), "Kafka internal error", nil, map[string]interface{}{
			"error": formatted,
			"topic": s.cfg.Topic,
		})
	})
}

func createWriter(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism, s *Sink) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cfg.MaxAttempts,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreation,
		ErrorLogger:            createErrorLogger(s),
		Transport: &kafka.Transport{
			TLS:  tlsConfig,
			SASL: mechanism,
		},
	}

	if cfg.Async {
		w.Async = true
		w.BatchSize = cfg.BatchSize
		w.BatchTimeout = cfg.BatchTimeout
		w.Completion = func(messages []kafka.Message, err error) {
			if err != nil {
				err = s.TranslateError(err)
				s.logWarn(context.Background(), "Async record batch failed", err, s.failureFields(err, map[string]interface{}{
					"topic":    cfg.Topic,
					"messages": len(messages),
				}))
			}
		}
	}

	switch cfg.CompressionCodec {
	case "gzip":
		w.Compression = compress.Gzip
	case "snappy":
		w.Compression = compress.Snappy
	case "lz4":
		w.Compression = compress.Lz4
	case "zstd":
		w.Compression = compress.Zstd
	}

	return w
}

func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}
