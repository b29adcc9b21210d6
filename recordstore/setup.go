package recordstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// insertFunc writes one batch of rows.
type insertFunc func(ctx context.Context, rows []Row) error

// Store batches request records into a SQL table. It implements record.Sink.
//
// The active *gorm.DB is held in an atomic pointer so the connection monitor
// can swap it after a reconnect without blocking writers.
type Store struct {
	cfg      Config
	client   atomic.Pointer[gorm.DB]
	insert   insertFunc
	observer observability.Observer
	logger   Logger

	queue   chan record.RequestRecord
	flushes chan chan error
	done    chan struct{}
	stopped chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64

	closeOnce sync.Once
}

// NewStore connects to the configured database, migrates the table when
// AutoMigrate is set and starts the batch collector.
func NewStore(cfg Config) (*Store, error) {
	cfg = applyDefaults(cfg)

	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to record store: %w", err)
	}

	if cfg.AutoMigrate {
		if err := conn.Table(cfg.Table).AutoMigrate(&Row{}); err != nil {
			return nil, fmt.Errorf("failed to migrate %s: %w", cfg.Table, err)
		}
	}

	s := newStore(cfg, nil)
	s.client.Store(conn)
	s.insert = s.insertRows
	s.start()
	return s, nil
}

// newStore builds a Store around insert without connecting. The collector is
// not started.
func newStore(cfg Config, insert insertFunc) *Store {
	cfg = applyDefaults(cfg)
	return &Store{
		cfg:     cfg,
		insert:  insert,
		queue:   make(chan record.RequestRecord, cfg.QueueSize),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *Store) start() {
	go s.collect()
}

// dialector picks the gorm driver for cfg.Driver.
func dialector(cfg Config) (gorm.Dialector, error) {
	c := cfg.Connection
	switch cfg.Driver {
	case DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DbName, sslMode)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DbName, c.Charset)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func connect(cfg Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	database, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s database instance: %w", cfg.Driver, err)
	}
	sqlDB.SetMaxOpenConns(cfg.ConnectionDetails.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.ConnectionDetails.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnectionDetails.ConnMaxLifetime)

	return database, nil
}

// DB returns the active connection.
func (s *Store) DB() *gorm.DB {
	return s.client.Load()
}

// Config returns the effective configuration after defaults.
func (s *Store) Config() Config {
	return s.cfg
}

// WithObserver attaches an observer notified of every batch and query.
func (s *Store) WithObserver(observer observability.Observer) *Store {
	s.observer = observer
	return s
}

// WithLogger attaches a logger for lifecycle events and write failures.
func (s *Store) WithLogger(logger Logger) *Store {
	s.logger = logger
	return s
}

// MonitorConnection pings the database every interval and reconnects when the
// ping fails. It returns when ctx is done or the store is closed.
func (s *Store) MonitorConnection(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.healthCheck(ctx)
			if err == nil {
				continue
			}
			s.logWarn(ctx, "Record store health check failed", err, nil)
			conn, err := connect(s.cfg)
			if err != nil {
				s.logError(ctx, "Record store reconnection failed", err, nil)
				continue
			}
			if old := s.client.Swap(conn); old != nil {
				if sqlDB, err := old.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}
			s.logInfo(ctx, "Successfully reconnected to record store", nil)
		}
	}
}

// healthCheck pings the current connection with a 5 second timeout.
func (s *Store) healthCheck(ctx context.Context) error {
	db := s.DB()
	if db == nil {
		return ErrStoreClosed
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}
	return nil
}

func (s *Store) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (s *Store) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (s *Store) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
