package tracecontext

import (
	"fmt"

	"go.opentelemetry.io/otel/trace"
)

// Context identifies one hop of a causal request chain.
//
// TraceID never changes once a Context is created. NewSpan returns a copy with a
// fresh SpanID whose ParentSpanID is the previous SpanID. A root created by
// NewRoot is self-parented: its ParentSpanID equals its SpanID.
type Context struct {
	TraceID      trace.TraceID `json:"trace_id"`
	SpanID       trace.SpanID  `json:"span_id"`
	ParentSpanID trace.SpanID  `json:"parent_span_id"`
}

// NewRoot creates the context of a request that enters the cluster and has been
// selected for tracing.
func NewRoot() Context {
	span := newSpanID()
	return Context{
		TraceID:      newTraceID(),
		SpanID:       span,
		ParentSpanID: span,
	}
}

// Zero returns the "do not log" sentinel. It carries an all-zero TraceID but a
// real span so that downstream hops keep a structurally consistent chain.
func Zero() Context {
	span := newSpanID()
	return Context{
		SpanID:       span,
		ParentSpanID: span,
	}
}

// NewSpan starts the next hop of the chain.
func (c Context) NewSpan() Context {
	return Context{
		TraceID:      c.TraceID,
		SpanID:       newSpanID(),
		ParentSpanID: c.SpanID,
	}
}

// IsZero reports whether c is the unsampled sentinel.
func (c Context) IsZero() bool {
	return !c.TraceID.IsValid()
}

// IsRoot reports whether c is the first hop of its trace.
func (c Context) IsRoot() bool {
	return c.SpanID == c.ParentSpanID
}

// String renders the context as trace/span/parent hex triplet.
func (c Context) String() string {
	return fmt.Sprintf("%s/%s/%s", c.TraceID, c.SpanID, c.ParentSpanID)
}
