package agent

import (
	"context"
	"fmt"

	"github.com/aalemi-dev/sockettrace/config"
	"github.com/aalemi-dev/sockettrace/interceptor"
	"go.uber.org/fx"
)

// Agent is a started tracer. The preload entry points call through Shim.
type Agent struct {
	app  *fx.App
	shim *interceptor.Shim
}

// Start builds the tracer described by cfg and starts it. A nil cfg is loaded
// with config.LoadOrDefault.
func Start(ctx context.Context, cfg *config.Config, extra ...fx.Option) (*Agent, error) {
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{}
	opts := append([]fx.Option{Options(cfg), fx.Populate(&a.shim)}, extra...)
	a.app = fx.New(opts...)
	if err := a.app.Err(); err != nil {
		return nil, fmt.Errorf("failed to build socket tracer: %w", err)
	}
	if err := a.app.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start socket tracer: %w", err)
	}
	return a, nil
}

// Shim returns the intercepted socket entry points.
func (a *Agent) Shim() *interceptor.Shim {
	return a.shim
}

// Stop drains queued records and closes every sink.
func (a *Agent) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}
