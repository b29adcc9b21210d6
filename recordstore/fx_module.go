package recordstore

import (
	"context"

	"github.com/aalemi-dev/sockettrace/observability"
	"go.uber.org/fx"
)

// FXModule provides *Store, starts its connection monitor and closes it when
// the application stops.
var FXModule = fx.Module("recordstore",
	fx.Provide(NewStoreWithDI),
	fx.Invoke(RegisterStoreLifecycle),
)

// StoreParams groups the dependencies needed to create a Store.
type StoreParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewStoreWithDI creates a Store from injected dependencies.
func NewStoreWithDI(params StoreParams) (*Store, error) {
	s, err := NewStore(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		s.logger = params.Logger
	}
	if params.Observer != nil {
		s.observer = params.Observer
	}
	return s, nil
}

// StoreLifecycleParams groups the dependencies needed for lifecycle management.
type StoreLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Store     *Store
}

// RegisterStoreLifecycle runs MonitorConnection for the lifetime of the
// application and flushes and closes the store on stop.
func RegisterStoreLifecycle(params StoreLifecycleParams) {
	monitorCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Store.logInfo(ctx, "Record store started", map[string]interface{}{
				"driver": params.Store.cfg.Driver,
				"table":  params.Store.cfg.Table,
			})
			go params.Store.MonitorConnection(monitorCtx, DefaultHealthInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			params.Store.logInfo(ctx, "Closing record store", map[string]interface{}{
				"dropped": params.Store.Dropped(),
			})
			return params.Store.Close(ctx)
		},
	})
}
