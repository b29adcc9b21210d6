package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_CopiesEverything(t *testing.T) {
	t.Parallel()
	ep := endpoint.Endpoint{LocalIP: "10.0.0.1", LocalPort: 80, PeerIP: "10.0.0.2", PeerPort: 5000, ClientHost: "a", ServerHost: "b"}
	ctx := tracecontext.NewRoot().NewSpan()
	start := time.Now()

	r := Build(RoleServer, ep, ctx, start, 250*time.Millisecond, 3)
	ep.ServerHost = "mutated"

	assert.Equal(t, RoleServer, r.Role)
	assert.Equal(t, "b", r.Endpoint.ServerHost)
	assert.Equal(t, ctx, r.Context())
	assert.Equal(t, uint64(3), r.TransactionCount)
	assert.True(t, r.StartedAt.Equal(start))
	assert.True(t, r.EndedAt().Equal(start.Add(250*time.Millisecond)))
}

func TestRequestRecord_JSONUsesHexIDs(t *testing.T) {
	t.Parallel()
	ctx := tracecontext.NewRoot()
	r := Build(RoleClient, endpoint.Endpoint{}, ctx, time.Unix(100, 0), time.Second, 1)

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ctx.TraceID.String(), decoded["trace_id"])
	assert.Equal(t, ctx.SpanID.String(), decoded["span_id"])
	assert.Equal(t, "client", decoded["role"])
}

func TestFields(t *testing.T) {
	t.Parallel()
	r := Build(RoleClient, endpoint.Endpoint{LocalIP: "127.0.0.1", LocalPort: 1, PeerIP: "127.0.0.1", PeerPort: 2}, tracecontext.NewRoot(), time.Now(), 0, 1)
	f := r.Fields()

	assert.Equal(t, "127.0.0.1:1", f["local"])
	assert.Equal(t, "127.0.0.1:2", f["peer"])
	assert.Equal(t, r.TraceID.String(), f["trace_id"])
}

func TestSinkFunc(t *testing.T) {
	t.Parallel()
	var got []RequestRecord
	var s Sink = SinkFunc(func(r RequestRecord) { got = append(got, r) })

	s.Log(RequestRecord{Role: RoleServer})
	Discard.Log(RequestRecord{})

	assert.Len(t, got, 1)
}
