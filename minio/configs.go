package minio

import (
	"context"
	"time"
)

// Default values for configuration
const (
	DefaultBucket        = "socktrace"
	DefaultPrefix        = "records"
	DefaultBatchSize     = 1000
	DefaultFlushInterval = 30 * time.Second
	DefaultQueueSize     = 8192

	// ContentType is the MIME type of uploaded record batches.
	ContentType = "application/x-ndjson"
)

// Config configures the object storage archive of request records.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Bucket receives the record batches. It is created on start when
	// CreateBucket is set.
	Bucket       string `yaml:"bucket"`
	CreateBucket bool   `yaml:"create_bucket" split_words:"true"`

	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix"`

	// BatchSize is the number of records per object.
	BatchSize int `yaml:"batch_size" split_words:"true"`

	// FlushInterval uploads a partial batch after this long.
	FlushInterval time.Duration `yaml:"flush_interval" split_words:"true"`

	// QueueSize bounds the records waiting for the uploader.
	QueueSize int `yaml:"queue_size" split_words:"true"`
}

// ConnectionConfig contains the S3-compatible server connection details.
type ConnectionConfig struct {
	// Endpoint is the server address, e.g. "minio.example.com:9000".
	Endpoint string `yaml:"endpoint"`

	AccessKeyID     string `yaml:"access_key_id" split_words:"true"`
	SecretAccessKey string `yaml:"secret_access_key" split_words:"true"` //nolint:gosec

	UseSSL bool   `yaml:"use_ssl" split_words:"true"`
	Region string `yaml:"region"`
}

// Logger is the subset of the logger package used by the archive.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

func applyDefaults(cfg Config) Config {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return cfg
}
