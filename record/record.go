// Package record defines the immutable snapshot emitted when a traced
// request/response exchange completes, and the Sink contract of whatever
// transports it.
package record

import (
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"go.opentelemetry.io/otel/trace"
)

// Role values carried in RequestRecord.Role.
const (
	RoleClient = "client"
	RoleServer = "server"
)

// RequestRecord is one completed transaction. It holds copies only, so it stays
// valid after the socket it describes is closed or reused.
type RequestRecord struct {
	Role             string            `json:"role"`
	Service          string            `json:"service,omitempty"`
	Endpoint         endpoint.Endpoint `json:"endpoint"`
	TraceID          trace.TraceID     `json:"trace_id"`
	SpanID           trace.SpanID      `json:"span_id"`
	ParentSpanID     trace.SpanID      `json:"parent_span_id"`
	StartedAt        time.Time         `json:"started_at"`
	Duration         time.Duration     `json:"duration_ns"`
	TransactionCount uint64            `json:"transaction_count"`
}

// Build assembles a RequestRecord. The started time is stripped of its monotonic
// reading so the record carries wall-clock time only.
func Build(role string, ep endpoint.Endpoint, ctx tracecontext.Context, startedAt time.Time, duration time.Duration, count uint64) RequestRecord {
	return RequestRecord{
		Role:             role,
		Endpoint:         ep,
		TraceID:          ctx.TraceID,
		SpanID:           ctx.SpanID,
		ParentSpanID:     ctx.ParentSpanID,
		StartedAt:        startedAt.Round(0),
		Duration:         duration,
		TransactionCount: count,
	}
}

// Context returns the trace context the record was emitted under.
func (r RequestRecord) Context() tracecontext.Context {
	return tracecontext.Context{TraceID: r.TraceID, SpanID: r.SpanID, ParentSpanID: r.ParentSpanID}
}

// EndedAt returns the wall-clock end of the transaction.
func (r RequestRecord) EndedAt() time.Time {
	return r.StartedAt.Add(r.Duration)
}

// Fields flattens the record for structured loggers.
func (r RequestRecord) Fields() map[string]interface{} {
	return map[string]interface{}{
		"role":              r.Role,
		"service":           r.Service,
		"trace_id":          r.TraceID.String(),
		"span_id":           r.SpanID.String(),
		"parent_span_id":    r.ParentSpanID.String(),
		"local":             r.Endpoint.Local(),
		"peer":              r.Endpoint.Peer(),
		"client_host":       r.Endpoint.ClientHost,
		"server_host":       r.Endpoint.ServerHost,
		"started_at":        r.StartedAt,
		"duration":          r.Duration,
		"transaction_count": r.TransactionCount,
	}
}
