// Package tracer exports finished request records as OpenTelemetry spans over
// OTLP, so socket-level traces show up next to application traces in any
// OTLP-compatible backend.
//
// Records already carry their trace, span and parent IDs. The exporter pins
// those IDs on the spans it creates instead of letting the SDK generate them:
//
//   - a server record whose context is a root becomes a root span with the
//     record's trace and span IDs
//   - any other server record becomes a span with the record's span ID under a
//     remote parent built from ParentSpanID
//   - a client record shares its span ID with the server span of the same hop,
//     so it is exported as a CLIENT child of that span with a fresh span ID
//
// Start and end timestamps come from the record, not from the export time.
//
// # Usage
//
//	exp, err := tracer.NewExporter(tracer.Config{
//		ServiceName:  "checkout",
//		AppEnv:       "production",
//		EnableExport: true,
//		Protocol:     tracer.ProtocolGRPC,
//		Endpoint:     "otel-collector:4317",
//		Insecure:     true,
//	})
//	if err != nil {
//		return err
//	}
//	defer exp.Shutdown(context.Background())
//
// With Fx, include tracer.FXModule and provide a tracer.Config.
package tracer
