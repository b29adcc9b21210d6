package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/recordstore"
	"github.com/aalemi-dev/sockettrace/socket"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// --- Default ---

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, socket.Frontend, cfg.Kind())
	assert.Equal(t, tracecontext.DefaultSampleRate, cfg.SampleRate)
	assert.Equal(t, []string{SinkLog}, cfg.Sinks)
	assert.True(t, cfg.HasSink(SinkLog))
	assert.False(t, cfg.HasSink(SinkKafka))
}

// --- Load ---

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SOCKTRACE_SERVICE_NAME", "orders")
	t.Setenv("SOCKTRACE_SERVER_KIND", "backend")
	t.Setenv("SOCKTRACE_SAMPLE_RATE", "0.25")
	t.Setenv("SOCKTRACE_SERVICES", "10.0.3.17=orders,10.0.4.2=payments")
	t.Setenv("SOCKTRACE_SEND_POLL_TIMEOUT", "25ms")
	t.Setenv("SOCKTRACE_SINKS", "log,kafka")
	t.Setenv("SOCKTRACE_KAFKA_BROKERS", "kafka-0:9092,kafka-1:9092")
	t.Setenv("SOCKTRACE_LOG_LEVEL", "debug")
	t.Setenv("SOCKTRACE_OTLP_HEADERS", "authorization:token")
	t.Setenv("SOCKTRACE_SCHEMA_REGISTRY_URL", "http://registry:8081")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.ServiceName)
	assert.Equal(t, socket.Backend, cfg.Kind())
	assert.Equal(t, 0.25, cfg.SampleRate)
	assert.Equal(t, 25*time.Millisecond, cfg.SendPollTimeout)
	assert.Equal(t, []string{SinkLog, SinkKafka}, cfg.Sinks)
	assert.Equal(t, []string{"kafka-0:9092", "kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "socktrace.records", cfg.Kafka.Topic)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "token", cfg.OTLP.Headers["authorization"])

	assert.Equal(t, "orders", cfg.Log.ServiceName)
	assert.Equal(t, "orders", cfg.Metrics.ServiceName)
	assert.Equal(t, "orders", cfg.OTLP.ServiceName)
	assert.Equal(t, "http://registry:8081", cfg.SchemaRegistry.URL)
	assert.Equal(t, "socktrace.records-value", cfg.SchemaRegistry.Subject)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeFile(t, "socktrace.yaml", `
service_name: gateway
sample_rate: 0.5
sinks: [log, store]
store:
  driver: mysql
  table: hops
  flush_interval: 2s
  connection:
    host: db.internal
    port: "3306"
`)
	t.Setenv(FileEnv, path)
	t.Setenv("SOCKTRACE_SAMPLE_RATE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gateway", cfg.ServiceName)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, recordstore.DriverMySQL, cfg.Store.Driver)
	assert.Equal(t, "hops", cfg.Store.Table)
	assert.Equal(t, 2*time.Second, cfg.Store.FlushInterval)
	assert.Equal(t, "db.internal", cfg.Store.Connection.Host)
	assert.True(t, cfg.Store.AutoMigrate)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("SOCKTRACE_SAMPLE_RATE", "often")

	_, err := Load()
	assert.Error(t, err)
	assert.NotNil(t, LoadOrDefault())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.yaml", "sinks: [\n"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "rate.yaml", "sample_rate: 2\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, tracecontext.ErrInvalidSampleRate)
}

// --- Validate ---

func TestValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"server kind", func(c *Config) { c.ServerKind = "sidecar" }, socket.ErrUnknownServerKind},
		{"negative rate", func(c *Config) { c.SampleRate = -0.1 }, tracecontext.ErrInvalidSampleRate},
		{"unknown sink", func(c *Config) { c.Sinks = []string{"stdout"} }, ErrUnknownSink},
		{"kafka without brokers", func(c *Config) { c.Sinks = []string{SinkKafka} }, ErrInvalidConfig},
		{"store without host", func(c *Config) { c.Sinks = []string{SinkStore} }, ErrInvalidConfig},
		{"store driver", func(c *Config) {
			c.Sinks = []string{SinkStore}
			c.Store.Driver = "oracle"
		}, recordstore.ErrUnknownDriver},
		{"archive without endpoint", func(c *Config) { c.Sinks = []string{SinkArchive} }, ErrInvalidConfig},
		{"watch without file", func(c *Config) { c.WatchServices = true }, ErrInvalidConfig},
		{"inline services", func(c *Config) { c.Services = "orders" }, ErrInvalidConfig},
		{"negative attempts", func(c *Config) { c.SendAttempts = -1 }, ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

// --- Services ---

func TestServicesTable_InlineOverridesFile(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.ServicesFile = writeFile(t, "services.yaml", "services:\n  - name: orders\n    ips: [\"10.0.3.17\", \"10.0.3.18\"]\n")
	cfg.Services = "10.0.3.18=orders-canary"

	table, err := cfg.ServicesTable()
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "orders", table.Name("10.0.3.17"))
	assert.Equal(t, "orders-canary", table.Name("10.0.3.18"))
}

func TestServicesTable_Empty(t *testing.T) {
	t.Parallel()
	table, err := Default().ServicesTable()
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

// --- Marshal ---

func TestMarshal_RedactsSecrets(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Kafka.SASL.Password = "kafka-secret"
	cfg.Store.Connection.Password = "db-secret"
	cfg.OTLP.Headers = map[string]string{"authorization": "Bearer abc"}
	cfg.SchemaRegistry.Password = "registry-secret"
	cfg.Archive.Connection.SecretAccessKey = "s3-secret"

	out, err := cfg.Marshal()
	require.NoError(t, err)

	assert.NotContains(t, string(out), "kafka-secret")
	assert.NotContains(t, string(out), "db-secret")
	assert.NotContains(t, string(out), "Bearer abc")
	assert.NotContains(t, string(out), "registry-secret")
	assert.NotContains(t, string(out), "s3-secret")
	assert.Equal(t, "kafka-secret", cfg.Kafka.SASL.Password)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg.SampleRate, back.SampleRate)
	assert.Equal(t, cfg.SendPollTimeout, back.SendPollTimeout)
}
