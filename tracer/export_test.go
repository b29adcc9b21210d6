package tracer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type opsObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (o *opsObserver) ObserveOperation(ctx observability.OperationContext) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, ctx)
}

func newTestExporter(t *testing.T) (*Exporter, *tracetest.InMemoryExporter) {
	t.Helper()
	mem := tracetest.NewInMemoryExporter()
	e := NewExporterWithSpanExporter(Config{ServiceName: "test", AppEnv: "test"}, mem)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	return e, mem
}

func testEndpoint() endpoint.Endpoint {
	return endpoint.Endpoint{
		LocalIP: "10.0.0.1", LocalPort: 8080,
		PeerIP: "10.0.0.2", PeerPort: 41000,
		ClientHost: "web", ServerHost: "api",
	}
}

func buildRecord(role string, ctx tracecontext.Context) record.RequestRecord {
	return record.Build(role, testEndpoint(), ctx, time.Unix(1700000000, 0), 20*time.Millisecond, 2)
}

// --- Span placement ---

func TestExport_RootServerRecord(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)
	root := tracecontext.NewRoot()

	require.NoError(t, e.Export(context.Background(), buildRecord(record.RoleServer, root)))

	spans := mem.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, root.TraceID, s.SpanContext.TraceID())
	assert.Equal(t, root.SpanID, s.SpanContext.SpanID())
	assert.False(t, s.Parent.IsValid())
	assert.Equal(t, trace.SpanKindServer, s.SpanKind)
	assert.Equal(t, "server api", s.Name)
}

func TestExport_ChildServerRecord(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)
	hop := tracecontext.NewRoot().NewSpan()

	require.NoError(t, e.Export(context.Background(), buildRecord(record.RoleServer, hop)))

	spans := mem.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, hop.TraceID, s.SpanContext.TraceID())
	assert.Equal(t, hop.SpanID, s.SpanContext.SpanID())
	assert.Equal(t, hop.ParentSpanID, s.Parent.SpanID())
	assert.True(t, s.Parent.IsRemote())
}

func TestExport_ClientRecordIsChildOfHop(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)
	hop := tracecontext.NewRoot().NewSpan()

	require.NoError(t, e.Export(context.Background(), buildRecord(record.RoleClient, hop)))

	spans := mem.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, hop.TraceID, s.SpanContext.TraceID())
	assert.Equal(t, hop.SpanID, s.Parent.SpanID())
	assert.NotEqual(t, hop.SpanID, s.SpanContext.SpanID())
	assert.True(t, s.SpanContext.SpanID().IsValid())
	assert.Equal(t, trace.SpanKindClient, s.SpanKind)
}

func TestExport_TimestampsComeFromRecord(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)
	r := buildRecord(record.RoleServer, tracecontext.NewRoot())

	require.NoError(t, e.Export(context.Background(), r))

	s := mem.GetSpans()[0]
	assert.True(t, s.StartTime.Equal(r.StartedAt))
	assert.True(t, s.EndTime.Equal(r.EndedAt()))
}

func TestExport_Attributes(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)
	r := buildRecord(record.RoleServer, tracecontext.NewRoot())
	r.Service = "api"

	require.NoError(t, e.Export(context.Background(), r))

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range mem.GetSpans()[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "server", attrs[AttrRole].AsString())
	assert.Equal(t, "api", attrs[AttrService].AsString())
	assert.Equal(t, int64(2), attrs[AttrTransactionCount].AsInt64())
	assert.Equal(t, "10.0.0.2", attrs["net.sock.peer.addr"].AsString())
	assert.Equal(t, int64(41000), attrs["net.sock.peer.port"].AsInt64())
}

func TestExport_RejectsZeroContext(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)

	err := e.Export(context.Background(), buildRecord(record.RoleServer, tracecontext.Zero()))

	assert.ErrorIs(t, err, ErrNotExportable)
	assert.Empty(t, mem.GetSpans())
}

// --- Sink ---

func TestLog_SatisfiesRecordSink(t *testing.T) {
	t.Parallel()
	e, mem := newTestExporter(t)
	obs := &opsObserver{}
	e.WithObserver(obs)

	var sink record.Sink = e
	sink.Log(buildRecord(record.RoleServer, tracecontext.NewRoot()))
	sink.Log(buildRecord(record.RoleServer, tracecontext.Zero()))

	assert.Len(t, mem.GetSpans(), 1)
	require.Len(t, obs.ops, 2)
	assert.Equal(t, "otlp", obs.ops[0].Component)
	assert.NoError(t, obs.ops[0].Error)
	assert.ErrorIs(t, obs.ops[1].Error, ErrNotExportable)
}

func TestPinnedIDGenerator_FallsBack(t *testing.T) {
	t.Parallel()
	gen := pinnedIDGenerator{}

	tid, sid := gen.NewIDs(context.Background())
	assert.True(t, tid.IsValid())
	assert.True(t, sid.IsValid())
	assert.True(t, gen.NewSpanID(context.Background(), tid).IsValid())

	want := tracecontext.NewRoot()
	ctx := withPinnedIDs(context.Background(), pinnedIDs{traceID: want.TraceID, spanID: want.SpanID})
	tid, sid = gen.NewIDs(ctx)
	assert.Equal(t, want.TraceID, tid)
	assert.Equal(t, want.SpanID, sid)
	assert.Equal(t, want.SpanID, gen.NewSpanID(ctx, tid))
}
