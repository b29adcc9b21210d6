package interceptor

import "errors"

var (
	// ErrHookPanic wraps a value recovered from a panicking hook.
	ErrHookPanic = errors.New("tracing hook panicked")

	// ErrUntracked is returned by Record for descriptors without a record.
	ErrUntracked = errors.New("descriptor is not traced")
)
