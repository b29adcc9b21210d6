// Package logger is the zap-backed structured logger used by every tracing
// component.
//
// Components accept a narrow Logger interface of their own (usually just the
// WithContext methods they call) and *LoggerClient satisfies each of them.
// Fields are passed as maps:
//
//	log.WarnWithContext(ctx, "context block not delivered", err, map[string]interface{}{
//	    "fd":   fd,
//	    "peer": "10.0.3.7:8080",
//	})
//
// When EnableTracing is set, a context built with tracecontext.NewContext adds
// trace_id, span_id and parent_span_id to the entry. Entries logged under an
// unsampled request get none. OpenTelemetry span contexts are honoured too.
//
// The tracer lives inside the traced process, so OutputPaths usually points at
// a file rather than the application's stderr.
package logger
