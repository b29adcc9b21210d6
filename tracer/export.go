package tracer

import (
	"context"
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys specific to socket records.
const (
	AttrRole             = attribute.Key("socktrace.role")
	AttrService          = attribute.Key("socktrace.service")
	AttrTransactionCount = attribute.Key("socktrace.transaction_count")
	AttrClientHost       = attribute.Key("socktrace.client_host")
	AttrServerHost       = attribute.Key("socktrace.server_host")
)

// Log exports r as one span. It implements record.Sink; failures are reported
// to the observer only.
func (e *Exporter) Log(r record.RequestRecord) {
	_ = e.Export(context.Background(), r)
}

// Export creates and ends the span for r. Records without a trace ID are
// rejected with ErrNotExportable.
func (e *Exporter) Export(ctx context.Context, r record.RequestRecord) (err error) {
	start := time.Now()
	defer func() {
		e.observeOperation("export", r.Role, time.Since(start), err)
	}()

	if !r.TraceID.IsValid() {
		return ErrNotExportable
	}

	ctx, opts := spanPlacement(ctx, r)
	opts = append(opts,
		trace.WithTimestamp(r.StartedAt),
		trace.WithAttributes(spanAttributes(r)...),
	)
	_, span := e.tracer.Start(ctx, spanName(r), opts...)
	span.End(trace.WithTimestamp(r.EndedAt()))
	return nil
}

// spanPlacement returns the context the record's span is started under,
// carrying its remote parent and pinned IDs, and the matching start options.
func spanPlacement(ctx context.Context, r record.RequestRecord) (context.Context, []trace.SpanStartOption) {
	if r.Role == record.RoleClient {
		parent := remoteSpanContext(r, r.SpanID)
		return trace.ContextWithRemoteSpanContext(ctx, parent),
			[]trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindClient)}
	}

	ids := pinnedIDs{traceID: r.TraceID, spanID: r.SpanID}
	if r.ParentSpanID == r.SpanID || !r.ParentSpanID.IsValid() {
		return withPinnedIDs(ctx, ids),
			[]trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindServer), trace.WithNewRoot()}
	}
	parent := remoteSpanContext(r, r.ParentSpanID)
	return withPinnedIDs(trace.ContextWithRemoteSpanContext(ctx, parent), ids),
		[]trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindServer)}
}

func remoteSpanContext(r record.RequestRecord, spanID trace.SpanID) trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    r.TraceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
}

func spanName(r record.RequestRecord) string {
	host := r.Endpoint.ServerHost
	if host == "" {
		host = r.Endpoint.PeerIP
	}
	if host == "" {
		return r.Role
	}
	return r.Role + " " + host
}

func spanAttributes(r record.RequestRecord) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrRole.String(r.Role),
		AttrTransactionCount.Int64(int64(r.TransactionCount)),
		AttrClientHost.String(r.Endpoint.ClientHost),
		AttrServerHost.String(r.Endpoint.ServerHost),
	}
	if r.Service != "" {
		attrs = append(attrs, AttrService.String(r.Service))
	}
	if r.Endpoint.PeerIP != "" {
		attrs = append(attrs,
			semconv.NetSockPeerAddrKey.String(r.Endpoint.PeerIP),
			semconv.NetSockPeerPortKey.Int(r.Endpoint.PeerPort),
		)
	}
	if r.Endpoint.LocalIP != "" {
		attrs = append(attrs,
			semconv.NetSockHostAddrKey.String(r.Endpoint.LocalIP),
			semconv.NetSockHostPortKey.Int(r.Endpoint.LocalPort),
		)
	}
	return attrs
}

func (e *Exporter) observeOperation(operation, resource string, duration time.Duration, err error) {
	if e.observer != nil {
		e.observer.ObserveOperation(observability.OperationContext{
			Component: "otlp",
			Operation: operation,
			Resource:  resource,
			Duration:  duration,
			Error:     err,
			Size:      1,
		})
	}
}
