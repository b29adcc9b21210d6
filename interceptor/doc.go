// Package interceptor is the dispatch layer between an intercepted socket call
// and the real implementation.
//
// Every entry point follows the same pattern: look the descriptor up in the
// registry, run the record's Before hook, make the real call through Syscalls,
// run the After hook, and return the real result untouched. Descriptors that are
// not tracked take a single registry lookup and go straight to the real call.
//
// Hook bookkeeping never changes what the application observes. Panics raised
// while tracing are recovered at the hook boundary and logged.
//
// # Executions
//
// Interceptor methods take the *threadctx.Execution of the calling thread
// explicitly. Shim binds them to the OS thread making the call through a
// threadctx.Store, which is what an exported C entry point uses:
//
//	shim := interceptor.NewShim(icpt, threadctx.NewStore())
//	n, err := shim.Read(fd, buf)
//
// Goroutines that call the Shim must hold runtime.LockOSThread for the length
// of a request so the thread id stays stable.
//
// # Event loop
//
// UVAccept registers descriptors accepted by an event loop as non-blocking
// server sockets. UVGetaddrinfo carries the calling thread's context across the
// asynchronous resolution through the Callbacks side-table and restores it on
// the thread that runs the callback.
package interceptor
