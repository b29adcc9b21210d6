package schema_registry

import (
	"context"

	"github.com/aalemi-dev/sockettrace/observability"
	"go.uber.org/fx"
)

// FXModule provides *Client and Registry.
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(func() schema_registry.Config { return cfg.SchemaRegistry }),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *Client) Registry { return c },
			fx.As(new(Registry)),
		),
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Client.
type SchemaRegistryParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Client from injected dependencies.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		client.logger = params.Logger
	}
	if params.Observer != nil {
		client.observer = params.Observer
	}
	return client, nil
}

// RegisterSchemaRegistryLifecycle logs the registry in use on start. The HTTP
// client needs no cleanup.
func RegisterSchemaRegistryLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if client.logger != nil {
				client.logger.InfoWithContext(ctx, "Schema registry client initialized", nil, map[string]interface{}{
					"url": client.url,
				})
			}
			return nil
		},
	})
}
