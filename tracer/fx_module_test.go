package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestFXModule_ProvidesExporter(t *testing.T) {
	t.Parallel()
	var exporter *Exporter

	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() Config {
			return Config{ServiceName: "fx-test", AppEnv: "test", EnableExport: false}
		}),
		fx.Populate(&exporter),
	)

	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, exporter)
	assert.Equal(t, "fx-test", exporter.Config().ServiceName)
}

func TestFXModule_InvalidConfigFails(t *testing.T) {
	t.Parallel()
	app := fx.New(
		FXModule,
		fx.NopLogger,
		fx.Provide(func() Config {
			return Config{EnableExport: true, Protocol: "smtp"}
		}),
		fx.Invoke(func(*Exporter) {}),
	)

	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "unknown OTLP protocol")
}
