package propagation

import (
	"fmt"

	"github.com/aalemi-dev/sockettrace/tracecontext"
)

// BlockSize is the width of an encoded context on the wire.
const BlockSize = 32

const (
	traceOffset  = 0
	spanOffset   = 16
	parentOffset = 24
)

// Encode serializes ctx into its wire block.
func Encode(ctx tracecontext.Context) [BlockSize]byte {
	var b [BlockSize]byte
	copy(b[traceOffset:spanOffset], ctx.TraceID[:])
	copy(b[spanOffset:parentOffset], ctx.SpanID[:])
	copy(b[parentOffset:], ctx.ParentSpanID[:])
	return b
}

// Decode parses a wire block. The trace ID may be all zero (the unsampled
// sentinel) but the span ID must be set.
func Decode(b []byte) (tracecontext.Context, error) {
	if len(b) != BlockSize {
		return tracecontext.Context{}, fmt.Errorf("%w: got %d bytes", ErrShortBlock, len(b))
	}
	var ctx tracecontext.Context
	copy(ctx.TraceID[:], b[traceOffset:spanOffset])
	copy(ctx.SpanID[:], b[spanOffset:parentOffset])
	copy(ctx.ParentSpanID[:], b[parentOffset:])
	if !ctx.SpanID.IsValid() {
		return tracecontext.Context{}, ErrInvalidBlock
	}
	return ctx, nil
}
