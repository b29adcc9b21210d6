package tracer

import "errors"

var (
	// ErrUnknownProtocol is returned for a Config.Protocol other than http or grpc.
	ErrUnknownProtocol = errors.New("tracer: unknown OTLP protocol")

	// ErrNotExportable is returned for records without a sampled trace ID.
	ErrNotExportable = errors.New("tracer: record has no trace id")
)
