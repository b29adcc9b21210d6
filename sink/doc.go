// Package sink provides the generic RequestRecord sinks: a buffered
// asynchronous front that keeps I/O paths from ever blocking on export, a
// fan-out, and a JSON-lines sink built on zap.
//
// The transport-specific sinks live in their own packages (kafka, tracer,
// recordstore) and are usually wrapped in an Async:
//
//	out := sink.NewAsync(sink.Multi{logSink, kafkaSink}, 1024)
//	defer out.Close(ctx)
package sink
