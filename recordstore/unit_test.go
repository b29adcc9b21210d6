package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeInserter struct {
	mu      sync.Mutex
	batches [][]Row
	err     error
}

func (f *fakeInserter) insert(_ context.Context, rows []Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, rows)
	return nil
}

func (f *fakeInserter) sizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.batches))
	for i, b := range f.batches {
		out[i] = len(b)
	}
	return out
}

func (f *fakeInserter) total() int {
	n := 0
	for _, s := range f.sizes() {
		n += s
	}
	return n
}

type opsObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (o *opsObserver) ObserveOperation(ctx observability.OperationContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, ctx)
}

func (o *opsObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.ops))
	for i, op := range o.ops {
		out[i] = op.Operation
	}
	return out
}

func sampleRecord() record.RequestRecord {
	ep := endpoint.Endpoint{LocalIP: "10.0.0.1", LocalPort: 8080, PeerIP: "10.0.0.2", PeerPort: 41000, ClientHost: "web", ServerHost: "api"}
	r := record.Build(record.RoleServer, ep, tracecontext.NewRoot().NewSpan(), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 42*time.Millisecond, 3)
	r.Service = "api"
	return r
}

func startedStore(t *testing.T, cfg Config, f *fakeInserter) *Store {
	t.Helper()
	s := newStore(cfg, f.insert)
	s.start()
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// --- Row mapping ---

func TestRow_RoundTrip(t *testing.T) {
	t.Parallel()
	r := sampleRecord()

	row := FromRecord(r)
	assert.Equal(t, r.TraceID.String(), row.TraceID)
	assert.Equal(t, int64(42*time.Millisecond), row.DurationNs)
	assert.Equal(t, "api", row.ServerHost)

	back, err := row.Record()
	require.NoError(t, err)
	assert.Equal(t, r.Context(), back.Context())
	assert.Equal(t, r.Endpoint, back.Endpoint)
	assert.Equal(t, r.Duration, back.Duration)
	assert.Equal(t, r.TransactionCount, back.TransactionCount)
	assert.True(t, r.StartedAt.Equal(back.StartedAt))
}

func TestRow_RecordRejectsBadHex(t *testing.T) {
	t.Parallel()
	row := FromRecord(sampleRecord())
	row.SpanID = "zz"

	_, err := row.Record()
	assert.Error(t, err)
}

// --- Batching ---

func TestLog_WritesFullBatches(t *testing.T) {
	t.Parallel()
	f := &fakeInserter{}
	s := startedStore(t, Config{BatchSize: 3, FlushInterval: time.Hour}, f)

	for i := 0; i < 7; i++ {
		s.Log(sampleRecord())
	}
	require.Eventually(t, func() bool { return f.total() >= 6 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, []int{3, 3, 1}, f.sizes())
}

func TestLog_FlushIntervalWritesPartialBatch(t *testing.T) {
	t.Parallel()
	f := &fakeInserter{}
	s := startedStore(t, Config{BatchSize: 100, FlushInterval: 20 * time.Millisecond}, f)

	s.Log(sampleRecord())

	assert.Eventually(t, func() bool { return f.total() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestFlush_ReturnsWriteError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	f := &fakeInserter{err: boom}
	obs := &opsObserver{}
	s := newStore(Config{FlushInterval: time.Hour}, f.insert).WithObserver(obs)
	s.start()
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	s.Log(sampleRecord())

	assert.ErrorIs(t, s.Flush(context.Background()), boom)
	assert.Contains(t, obs.names(), "insert")
}

func TestFlush_EmptyQueue(t *testing.T) {
	t.Parallel()
	f := &fakeInserter{}
	s := startedStore(t, Config{}, f)

	require.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, f.sizes())
}

func TestClose_DrainsQueue(t *testing.T) {
	t.Parallel()
	f := &fakeInserter{}
	s := newStore(Config{BatchSize: 50, FlushInterval: time.Hour}, f.insert)
	s.start()

	for i := 0; i < 5; i++ {
		s.Log(sampleRecord())
	}
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, 5, f.total())
	assert.ErrorIs(t, s.Flush(context.Background()), ErrStoreClosed)
}

func TestLog_AfterCloseDrops(t *testing.T) {
	t.Parallel()
	f := &fakeInserter{}
	s := newStore(Config{}, f.insert)
	s.start()
	require.NoError(t, s.Close(context.Background()))

	s.Log(sampleRecord())

	assert.Equal(t, uint64(1), s.Dropped())
	assert.Zero(t, f.total())
}

func TestLog_QueueFullDrops(t *testing.T) {
	t.Parallel()
	f := &fakeInserter{}
	obs := &opsObserver{}
	// Collector not started, so nothing drains the queue.
	s := newStore(Config{QueueSize: 2}, f.insert).WithObserver(obs)

	for i := 0; i < 5; i++ {
		s.Log(sampleRecord())
	}

	assert.Equal(t, uint64(3), s.Dropped())
	assert.Equal(t, []string{"drop", "drop", "drop"}, obs.names())
}

func TestQueries_ClosedStore(t *testing.T) {
	t.Parallel()
	s := newStore(Config{}, nil)

	_, err := s.FindByTrace(context.Background(), tracecontext.NewRoot().TraceID)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = s.Prune(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrStoreClosed)

	assert.ErrorIs(t, s.insertRows(context.Background(), []Row{FromRecord(sampleRecord())}), ErrStoreClosed)
}

// --- Config ---

func TestApplyDefaults(t *testing.T) {
	t.Parallel()
	cfg := applyDefaults(Config{})

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, DefaultTable, cfg.Table)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultFlushInterval, cfg.FlushInterval)
	assert.Equal(t, DefaultQueueSize, cfg.QueueSize)
	assert.Equal(t, DefaultMaxOpenConns, cfg.ConnectionDetails.MaxOpenConns)
	assert.Equal(t, "utf8mb4", cfg.Connection.Charset)
}

func TestDialector(t *testing.T) {
	t.Parallel()
	conn := Connection{Host: "db", Port: "5432", User: "u", Password: "p", DbName: "traces", Charset: "utf8mb4"}

	d, err := dialector(Config{Driver: DriverPostgres, Connection: conn})
	require.NoError(t, err)
	pg, ok := d.(*postgres.Dialector)
	require.True(t, ok)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=traces sslmode=disable", pg.DSN)

	conn.Port = "3306"
	d, err = dialector(Config{Driver: DriverMySQL, Connection: conn})
	require.NoError(t, err)
	my, ok := d.(*gormmysql.Dialector)
	require.True(t, ok)
	assert.Equal(t, "u:p@tcp(db:3306)/traces?charset=utf8mb4&parseTime=True&loc=UTC", my.DSN)

	_, err = dialector(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestNewStore_UnknownDriver(t *testing.T) {
	t.Parallel()
	s, err := NewStore(Config{Driver: "oracle"})

	assert.ErrorIs(t, err, ErrUnknownDriver)
	assert.Nil(t, s)
}

// --- Errors ---

func TestTranslateError(t *testing.T) {
	t.Parallel()
	s := &Store{}

	assert.NoError(t, s.TranslateError(nil))
	assert.ErrorIs(t, s.TranslateError(gorm.ErrDuplicatedKey), ErrDuplicateKey)
	assert.ErrorIs(t, s.TranslateError(fmt.Errorf("wrap: %w", gorm.ErrEmptySlice)), ErrInvalidData)

	assert.ErrorIs(t, s.TranslateError(&pgconn.PgError{Code: "42P01"}), ErrTableNotFound)
	assert.ErrorIs(t, s.TranslateError(&pgconn.PgError{Code: "53300"}), ErrTooManyConnections)
	assert.ErrorIs(t, s.TranslateError(&pgconn.PgError{Code: "08006"}), ErrConnectionLost)

	assert.ErrorIs(t, s.TranslateError(&mysql.MySQLError{Number: 1146}), ErrTableNotFound)
	assert.ErrorIs(t, s.TranslateError(&mysql.MySQLError{Number: 1062}), ErrDuplicateKey)
	assert.ErrorIs(t, s.TranslateError(&mysql.MySQLError{Number: 2013}), ErrConnectionLost)

	assert.ErrorIs(t, s.TranslateError(errors.New("dial tcp: connection refused")), ErrConnectionFailed)
	assert.ErrorIs(t, s.TranslateError(errors.New("sql: database is closed")), ErrStoreClosed)

	other := errors.New("something else")
	assert.Equal(t, other, s.TranslateError(other))
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()
	s := &Store{}

	assert.True(t, s.IsRetryableError(ErrConnectionLost))
	assert.True(t, s.IsRetryableError(ErrQueryTimeout))
	assert.False(t, s.IsRetryableError(ErrTableNotFound))
	assert.False(t, s.IsRetryableError(nil))
}
