package tracer

import (
	"context"

	"github.com/aalemi-dev/sockettrace/tracecontext"
	"go.opentelemetry.io/otel/trace"
)

type pinnedIDsKey struct{}

// pinnedIDs are the IDs the next span started under the context must carry.
// A zero value field means "generate one".
type pinnedIDs struct {
	traceID trace.TraceID
	spanID  trace.SpanID
}

func withPinnedIDs(ctx context.Context, ids pinnedIDs) context.Context {
	return context.WithValue(ctx, pinnedIDsKey{}, ids)
}

// pinnedIDGenerator hands out the IDs pinned on the context and falls back to
// fresh random IDs.
type pinnedIDGenerator struct{}

func (pinnedIDGenerator) NewIDs(ctx context.Context) (trace.TraceID, trace.SpanID) {
	fresh := tracecontext.NewRoot()
	ids, _ := ctx.Value(pinnedIDsKey{}).(pinnedIDs)
	if ids.traceID.IsValid() {
		fresh.TraceID = ids.traceID
	}
	if ids.spanID.IsValid() {
		fresh.SpanID = ids.spanID
	}
	return fresh.TraceID, fresh.SpanID
}

func (pinnedIDGenerator) NewSpanID(ctx context.Context, _ trace.TraceID) trace.SpanID {
	if ids, ok := ctx.Value(pinnedIDsKey{}).(pinnedIDs); ok && ids.spanID.IsValid() {
		return ids.spanID
	}
	return tracecontext.NewRoot().SpanID
}
