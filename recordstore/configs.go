package recordstore

import (
	"context"
	"time"
)

// Supported values of Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config defines the database connection and batching behavior of a Store.
type Config struct {
	// Driver is DriverPostgres (default) or DriverMySQL. MariaDB uses DriverMySQL.
	Driver string `yaml:"driver"`

	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details" split_words:"true"`

	// Table receives the records. Default: request_records
	Table string `yaml:"table"`

	// BatchSize is the number of rows written per INSERT. Default: 100
	BatchSize int `yaml:"batch_size" split_words:"true"`

	// FlushInterval bounds how long a queued record waits for its batch. Default: 1s
	FlushInterval time.Duration `yaml:"flush_interval" split_words:"true"`

	// QueueSize is the number of records Log can buffer before dropping. Default: 4096
	QueueSize int `yaml:"queue_size" split_words:"true"`

	// AutoMigrate creates or updates Table on startup.
	AutoMigrate bool `yaml:"auto_migrate" split_words:"true"`
}

// Connection holds the parameters used to build the driver DSN.
type Connection struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `json:"-" yaml:"password"` //nolint:gosec
	DbName   string `yaml:"db_name" split_words:"true"`

	// SSLMode applies to PostgreSQL only ("disable", "require", "verify-ca", "verify-full").
	SSLMode string `yaml:"ssl_mode" split_words:"true"`

	// Charset applies to MySQL only. Default: utf8mb4
	Charset string `yaml:"charset"`
}

// ConnectionDetails holds connection pool settings. Zero values use the
// package defaults.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" split_words:"true"`
}

// Logger is the subset of the logger package used by the store.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultTable           = "request_records"
	DefaultBatchSize       = 100
	DefaultFlushInterval   = 1 * time.Second
	DefaultQueueSize       = 4096
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 1 * time.Minute
	DefaultHealthInterval  = 10 * time.Second
)

func applyDefaults(cfg Config) Config {
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
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
	if cfg.ConnectionDetails.MaxOpenConns == 0 {
		cfg.ConnectionDetails.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.ConnectionDetails.MaxIdleConns == 0 {
		cfg.ConnectionDetails.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.ConnectionDetails.ConnMaxLifetime == 0 {
		cfg.ConnectionDetails.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if cfg.Connection.Charset == "" {
		cfg.Connection.Charset = "utf8mb4"
	}
	return cfg
}
