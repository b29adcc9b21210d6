package threadctx

import "errors"

// ErrNoContext is returned when the current context is read before one was set.
var ErrNoContext = errors.New("no trace context set on this execution")
