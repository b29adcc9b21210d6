// Package tracecontext defines the trace context that flows between instrumented
// processes: a trace identifier that is stable for a whole request chain, the
// span identifier of the current hop, and the span identifier of the hop that
// caused it.
//
// Identifiers reuse the OpenTelemetry wire types so that records can be exported
// to any OTLP backend without translation: trace IDs are 16 bytes and span IDs
// are 8 bytes.
//
// A Context is a plain value. It is created in one of three ways:
//
//   - NewRoot, when a frontend accepts a request that the Sampler decided to trace
//   - Zero, when the Sampler decided not to trace; the sentinel still propagates
//     downstream so every hop agrees that nothing should be logged
//   - decoding a block received from a peer, followed by NewSpan
//
// Example:
//
//	sampler, err := tracecontext.NewSampler(0.05)
//	if err != nil {
//	    return err
//	}
//	ctx := sampler.Decide()
//	if !ctx.IsZero() {
//	    child := ctx.NewSpan()
//	    _ = child
//	}
package tracecontext
