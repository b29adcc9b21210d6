package logger

import (
	"context"
)

// Logger is the structured logging API shared by the tracing packages. Each of
// them declares the subset it needs; *LoggerClient satisfies all of them.
//
// There is no Fatal level: the tracer runs inside someone else's process and
// must never terminate it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})

	// The WithContext variants add trace_id, span_id and parent_span_id when
	// ctx carries a sampled request and tracing is enabled.
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
