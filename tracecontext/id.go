package tracecontext

import (
	"crypto/rand"

	"go.opentelemetry.io/otel/trace"
)

// newTraceID returns a random, valid (non-zero) trace identifier.
func newTraceID() trace.TraceID {
	var id trace.TraceID
	for !id.IsValid() {
		_, _ = rand.Read(id[:])
	}
	return id
}

// newSpanID returns a random, valid (non-zero) span identifier.
func newSpanID() trace.SpanID {
	var id trace.SpanID
	for !id.IsValid() {
		_, _ = rand.Read(id[:])
	}
	return id
}
