package minio

import (
	"context"

	"github.com/aalemi-dev/sockettrace/observability"
	"go.uber.org/fx"
)

// FXModule provides *Archive, checks its bucket on start and uploads the
// remaining records on stop.
//
//	app := fx.New(
//	    minio.FXModule,
//	    fx.Provide(func() minio.Config { return cfg.Archive }),
//	)
var FXModule = fx.Module("minio",
	fx.Provide(NewArchiveWithDI),
	fx.Invoke(RegisterArchiveLifecycle),
)

// ArchiveParams groups the dependencies needed to create an Archive.
type ArchiveParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewArchiveWithDI creates an Archive from injected dependencies.
func NewArchiveWithDI(params ArchiveParams) (*Archive, error) {
	a, err := NewArchive(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		a.logger = params.Logger
	}
	if params.Observer != nil {
		a.observer = params.Observer
	}
	return a, nil
}

// RegisterArchiveLifecycle checks the bucket on start and closes the archive
// on stop.
func RegisterArchiveLifecycle(lc fx.Lifecycle, a *Archive) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := a.EnsureBucket(ctx); err != nil {
				return err
			}
			a.logInfo(ctx, "Record archive started", map[string]interface{}{
				"endpoint": a.cfg.Connection.Endpoint,
				"bucket":   a.cfg.Bucket,
				"prefix":   a.cfg.Prefix,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			a.logInfo(ctx, "Closing record archive", map[string]interface{}{
				"dropped": a.Dropped(),
			})
			return a.Close(ctx)
		},
	})
}
