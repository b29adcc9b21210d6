package minio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// putFunc uploads one object.
type putFunc func(ctx context.Context, key string, body []byte) error

// Archive uploads request records to an S3-compatible bucket as JSON lines,
// one object per batch. It implements record.Sink.
type Archive struct {
	cfg      Config
	client   *minio.Client
	put      putFunc
	observer observability.Observer
	logger   Logger

	queue   chan record.RequestRecord
	flushes chan chan error
	done    chan struct{}
	stopped chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	seq     atomic.Uint64

	closeOnce sync.Once
}

// NewArchive connects to cfg.Connection.Endpoint and starts the uploader. The
// bucket is checked, or created, by EnsureBucket.
func NewArchive(cfg Config) (*Archive, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	client, err := minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	a := newArchive(cfg, nil)
	a.client = client
	a.put = a.putObject
	a.start()
	return a, nil
}

// newArchive builds an Archive around put without connecting. The uploader is
// not started.
func newArchive(cfg Config, put putFunc) *Archive {
	cfg = applyDefaults(cfg)
	return &Archive{
		cfg:     cfg,
		put:     put,
		queue:   make(chan record.RequestRecord, cfg.QueueSize),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (a *Archive) start() {
	go a.collect()
}

// WithObserver attaches an observer notified of every upload.
func (a *Archive) WithObserver(observer observability.Observer) *Archive {
	a.observer = observer
	return a
}

// WithLogger attaches a logger for lifecycle events and upload failures.
func (a *Archive) WithLogger(logger Logger) *Archive {
	a.logger = logger
	return a
}

// Config returns the effective configuration after defaults.
func (a *Archive) Config() Config {
	return a.cfg
}

// EnsureBucket checks that the bucket exists and creates it when
// CreateBucket is set.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", TranslateError(err))
	}
	if exists {
		return nil
	}
	if !a.cfg.CreateBucket {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, a.cfg.Bucket)
	}
	if err := a.client.MakeBucket(ctx, a.cfg.Bucket, minio.MakeBucketOptions{Region: a.cfg.Connection.Region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", TranslateError(err))
	}
	a.logInfo(ctx, "Created record archive bucket", map[string]interface{}{
		"bucket": a.cfg.Bucket,
	})
	return nil
}

func (a *Archive) putObject(ctx context.Context, key string, body []byte) error {
	_, err := a.client.PutObject(ctx, a.cfg.Bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: ContentType,
	})
	return TranslateError(err)
}

func (a *Archive) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (a *Archive) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (a *Archive) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
