package interceptor

import (
	"sync"

	"github.com/aalemi-dev/sockettrace/socket"
	"github.com/aalemi-dev/sockettrace/threadctx"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"golang.org/x/sys/unix"
)

// Handle identifies one outstanding asynchronous request.
type Handle uintptr

// Callback is the completion of an asynchronous request. exec is the execution
// of the thread running the callback.
type Callback func(exec *threadctx.Execution, status int)

// Callbacks maps outstanding requests to the trace context that was current
// when they were issued. Entries are removed when the callback fires or the
// request fails to start.
type Callbacks struct {
	mu      sync.Mutex
	pending map[Handle]tracecontext.Context
}

// NewCallbacks creates an empty side-table.
func NewCallbacks() *Callbacks {
	return &Callbacks{pending: make(map[Handle]tracecontext.Context)}
}

// Capture remembers ctx for h, replacing any previous entry.
func (c *Callbacks) Capture(h Handle, ctx tracecontext.Context) {
	c.mu.Lock()
	c.pending[h] = ctx
	c.mu.Unlock()
}

// Restore removes and returns the context captured for h.
func (c *Callbacks) Restore(h Handle) (tracecontext.Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, ok := c.pending[h]
	if ok {
		delete(c.pending, h)
	}
	return ctx, ok
}

// Discard removes the entry of h, if any.
func (c *Callbacks) Discard(h Handle) {
	c.mu.Lock()
	delete(c.pending, h)
	c.mu.Unlock()
}

// Len returns the number of outstanding entries.
func (c *Callbacks) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// UVAccept runs an event-loop accept and tracks the accepted descriptor as a
// non-blocking server socket. original returns the accepted descriptor.
func (i *Interceptor) UVAccept(exec *threadctx.Execution, original func() (int, error)) (int, error) {
	fd, err := original()
	if err != nil || fd < 0 {
		return fd, err
	}
	sa, serr := i.sys.Getsockname(fd)
	if serr != nil {
		return fd, err
	}
	i.trackAccepted(fd, sa, socket.ModeAsync)
	return fd, err
}

// UVGetaddrinfo starts an asynchronous name resolution. original receives the
// callback to register and returns the event loop's status code; any non-zero
// status means the callback will never run.
func (i *Interceptor) UVGetaddrinfo(exec *threadctx.Execution, h Handle, cb Callback, original func(Callback) int) int {
	var ctx tracecontext.Context
	ok := false
	if exec != nil {
		ctx, ok = exec.Lookup()
	}
	if !ok {
		return original(cb)
	}

	i.callbacks.Capture(h, ctx)
	wrapped := func(cbExec *threadctx.Execution, status int) {
		if restored, ok := i.callbacks.Restore(h); ok && cbExec != nil {
			cbExec.Set(restored)
		}
		cb(cbExec, status)
	}

	rc := original(wrapped)
	if rc != 0 {
		i.callbacks.Discard(h)
	}
	return rc
}

// inetSockname reports whether fd is bound to an inet address.
func inetSockname(sa unix.Sockaddr) bool {
	switch sa.(type) {
	case *unix.SockaddrInet4, *unix.SockaddrInet6:
		return true
	}
	return false
}
