package tracecontext

import "context"

type carrierKey struct{}

// NewContext returns a copy of ctx that carries c.
func NewContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, carrierKey{}, c)
}

// FromContext returns the Context stored in ctx by NewContext.
func FromContext(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return Context{}, false
	}
	c, ok := ctx.Value(carrierKey{}).(Context)
	return c, ok
}
