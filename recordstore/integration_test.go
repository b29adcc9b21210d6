package recordstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/record"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// setupPostgresContainer starts a throwaway PostgreSQL and returns a Config
// pointing at it.
func setupPostgresContainer(ctx context.Context, t *testing.T) Config {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return Config{
		Driver: DriverPostgres,
		Connection: Connection{
			Host:     host,
			Port:     port.Port(),
			User:     "testuser",
			Password: "testpass",
			DbName:   "testdb",
			SSLMode:  "disable",
		},
		AutoMigrate:   true,
		FlushInterval: 50 * time.Millisecond,
	}
}

func TestStore_PostgresRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	cfg := setupPostgresContainer(ctx, t)

	var store *Store
	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() Config { return cfg }),
		fx.Populate(&store),
	)
	app.RequireStart()
	defer app.RequireStop()

	root := tracecontext.NewRoot()
	hop := root.NewSpan()

	first := sampleRecord()
	first.TraceID, first.SpanID, first.ParentSpanID = root.TraceID, root.SpanID, root.ParentSpanID
	second := sampleRecord()
	second.TraceID, second.SpanID, second.ParentSpanID = hop.TraceID, hop.SpanID, hop.ParentSpanID
	second.StartedAt = first.StartedAt.Add(time.Millisecond)
	second.Role = record.RoleClient
	unrelated := sampleRecord()

	store.Log(first)
	store.Log(second)
	store.Log(unrelated)
	require.NoError(t, store.Flush(ctx))

	got, err := store.FindByTrace(ctx, root.TraceID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, root.SpanID, got[0].SpanID)
	assert.Equal(t, hop.SpanID, got[1].SpanID)
	assert.Equal(t, record.RoleClient, got[1].Role)
	assert.Equal(t, first.Endpoint, got[0].Endpoint)
	assert.Equal(t, first.Duration, got[0].Duration)

	removed, err := store.Prune(ctx, first.StartedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	got, err = store.FindByTrace(ctx, root.TraceID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_MissingTable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	cfg := setupPostgresContainer(ctx, t)
	cfg.AutoMigrate = false
	cfg.FlushInterval = time.Hour
	cfg.Table = fmt.Sprintf("missing_%d", time.Now().UnixNano())

	store, err := NewStore(cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close(ctx) }()

	store.Log(sampleRecord())
	assert.ErrorIs(t, store.Flush(ctx), ErrTableNotFound)
}
