package interceptor

import (
	"context"
	"fmt"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/registry"
	"github.com/aalemi-dev/sockettrace/socket"
	"github.com/aalemi-dev/sockettrace/threadctx"
	"golang.org/x/sys/unix"
)

// Logger is the subset of the logger package used by the interceptor.
type Logger interface {
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Interceptor dispatches intercepted socket calls through the tracing hooks.
type Interceptor struct {
	sys       Syscalls
	hooks     *socket.Hooks
	registry  *registry.Registry[socket.Record]
	callbacks *Callbacks
	logger    Logger
	observer  observability.Observer
}

// New creates an Interceptor. A nil registry selects a fresh one.
func New(sys Syscalls, hooks *socket.Hooks, reg *registry.Registry[socket.Record]) *Interceptor {
	if reg == nil {
		reg = registry.New[socket.Record]()
	}
	return &Interceptor{
		sys:       sys,
		hooks:     hooks,
		registry:  reg,
		callbacks: NewCallbacks(),
	}
}

// WithLogger attaches a logger for contained hook failures.
func (i *Interceptor) WithLogger(logger Logger) *Interceptor {
	i.logger = logger
	return i
}

// WithObserver attaches an observer for registry changes and hook failures.
func (i *Interceptor) WithObserver(observer observability.Observer) *Interceptor {
	i.observer = observer
	return i
}

// Registry exposes the descriptor registry.
func (i *Interceptor) Registry() *registry.Registry[socket.Record] {
	return i.registry
}

// Callbacks exposes the getaddrinfo side-table.
func (i *Interceptor) Callbacks() *Callbacks {
	return i.callbacks
}

// Record returns the tracing record of fd.
func (i *Interceptor) Record(fd int) (*socket.Record, error) {
	r, ok := i.registry.Lookup(fd)
	if !ok {
		return nil, fmt.Errorf("%w: fd %d", ErrUntracked, fd)
	}
	return r, nil
}

// --- Lifecycle calls ---

// Socket creates a socket. Stream sockets of the inet families opened while
// exec carries a trace context are tracked as clients.
func (i *Interceptor) Socket(exec *threadctx.Execution, domain, typ, proto int) (int, error) {
	fd, err := i.sys.Socket(domain, typ, proto)
	if err != nil {
		return fd, err
	}
	if !inetStream(domain, typ) {
		return fd, nil
	}
	i.guard("socket", fd, func() {
		if r, ok := i.hooks.NewClientRecord(exec, fd, modeOf(typ&unix.SOCK_NONBLOCK != 0)); ok {
			i.track(fd, r)
		}
	})
	return fd, nil
}

// Close forgets fd and closes it. The record is removed before the real close
// so a descriptor number recycled by a concurrent accept never finds it.
func (i *Interceptor) Close(fd int) error {
	if _, ok := i.registry.Remove(fd); ok {
		i.observe("registry", "remove", nil)
	}
	return i.sys.Close(fd)
}

// Accept accepts a connection and tracks it as a server socket.
func (i *Interceptor) Accept(exec *threadctx.Execution, fd int) (int, unix.Sockaddr, error) {
	nfd, sa, err := i.sys.Accept(fd)
	if err == nil {
		i.trackAccepted(nfd, sa, socket.ModeBlocking)
	}
	return nfd, sa, err
}

// Accept4 is Accept with flags. SOCK_NONBLOCK makes the socket async.
func (i *Interceptor) Accept4(exec *threadctx.Execution, fd int, flags int) (int, unix.Sockaddr, error) {
	nfd, sa, err := i.sys.Accept4(fd, flags)
	if err == nil {
		i.trackAccepted(nfd, sa, modeOf(flags&unix.SOCK_NONBLOCK != 0))
	}
	return nfd, sa, err
}

// --- Reads ---

// Read reads from fd.
func (i *Interceptor) Read(exec *threadctx.Execution, fd int, p []byte) (int, error) {
	return i.read(exec, fd, true, socket.ReadCall{Size: len(p)}, func() (int, error) {
		return i.sys.Read(fd, p)
	})
}

// Recv receives from a connected socket.
func (i *Interceptor) Recv(exec *threadctx.Execution, fd int, p []byte, flags int) (int, error) {
	n, _, err := i.Recvfrom(exec, fd, p, flags)
	return n, err
}

// Recvfrom receives from fd. MSG_PEEK calls consume a pending context block but
// never advance the state machine.
func (i *Interceptor) Recvfrom(exec *threadctx.Execution, fd int, p []byte, flags int) (int, unix.Sockaddr, error) {
	var from unix.Sockaddr
	n, err := i.read(exec, fd, flags&unix.MSG_PEEK == 0, socket.ReadCall{Size: len(p), Flags: flags}, func() (int, error) {
		var n int
		var err error
		n, from, err = i.sys.Recvfrom(fd, p, flags)
		return n, err
	})
	return n, from, err
}

// --- Writes ---

// Write writes to fd.
func (i *Interceptor) Write(exec *threadctx.Execution, fd int, p []byte) (int, error) {
	return i.write(exec, fd, func() (int, error) {
		return i.sys.Write(fd, p)
	})
}

// Writev writes the buffers to fd in one call.
func (i *Interceptor) Writev(exec *threadctx.Execution, fd int, iovs [][]byte) (int, error) {
	return i.write(exec, fd, func() (int, error) {
		return i.sys.Writev(fd, iovs)
	})
}

// Send sends on a connected socket.
func (i *Interceptor) Send(exec *threadctx.Execution, fd int, p []byte, flags int) (int, error) {
	return i.Sendmsg(exec, fd, p, nil, nil, flags)
}

// Sendto sends to an explicit address. On a connected stream socket the
// address is ignored by the kernel.
func (i *Interceptor) Sendto(exec *threadctx.Execution, fd int, p []byte, flags int, to unix.Sockaddr) (int, error) {
	return i.Sendmsg(exec, fd, p, nil, to, flags)
}

// Sendmsg sends data and ancillary data.
func (i *Interceptor) Sendmsg(exec *threadctx.Execution, fd int, p, oob []byte, to unix.Sockaddr, flags int) (int, error) {
	return i.write(exec, fd, func() (int, error) {
		return i.sys.SendmsgN(fd, p, oob, to, flags)
	})
}

// --- Dispatch ---

func (i *Interceptor) read(exec *threadctx.Execution, fd int, advance bool, rc socket.ReadCall, call func() (int, error)) (int, error) {
	r, ok := i.registry.Lookup(fd)
	if !ok {
		return call()
	}

	v := socket.Verdict{Proceed: true}
	i.guard("before_read", fd, func() {
		v = i.hooks.BeforeRead(exec, r, rc)
	})
	if !v.Proceed {
		i.guard("after_read", fd, func() {
			i.hooks.AfterRead(exec, r, v.N, v.Err)
		})
		return v.N, v.Err
	}

	n, err := call()
	if advance {
		i.guard("after_read", fd, func() {
			i.hooks.AfterRead(exec, r, n, err)
		})
	}
	return n, err
}

func (i *Interceptor) write(exec *threadctx.Execution, fd int, call func() (int, error)) (int, error) {
	r, ok := i.registry.Lookup(fd)
	if !ok {
		return call()
	}

	i.guard("before_write", fd, func() {
		i.hooks.BeforeWrite(exec, r)
	})
	n, err := call()
	i.guard("after_write", fd, func() {
		i.hooks.AfterWrite(exec, r, n, err)
	})
	return n, err
}

func (i *Interceptor) trackAccepted(fd int, sa unix.Sockaddr, mode socket.Mode) {
	if !inetSockname(sa) {
		return
	}
	i.guard("accept", fd, func() {
		i.track(fd, i.hooks.NewServerRecord(fd, mode))
	})
}

// track registers r. A collision is reported by the registry itself and does
// not change the number of tracked sockets.
func (i *Interceptor) track(fd int, r *socket.Record) {
	if !i.registry.Insert(fd, r) {
		i.observe("registry", "insert", nil)
	}
}

// guard runs fn and contains any panic it raises.
func (i *Interceptor) guard(op string, fd int, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: %v", ErrHookPanic, rec)
			if i.logger != nil {
				i.logger.ErrorWithContext(context.Background(), "tracing hook failed", err, map[string]interface{}{
					"fd": fd,
					"op": op,
				})
			}
			i.observe("socket", "hook_panic", err)
		}
	}()
	fn()
}

func (i *Interceptor) observe(component, operation string, err error) {
	if i.observer != nil {
		i.observer.ObserveOperation(observability.OperationContext{
			Component: component,
			Operation: operation,
			Error:     err,
			Size:      1,
		})
	}
}

func inetStream(domain, typ int) bool {
	if domain != unix.AF_INET && domain != unix.AF_INET6 {
		return false
	}
	return typ&^(unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC) == unix.SOCK_STREAM
}

func modeOf(nonblocking bool) socket.Mode {
	if nonblocking {
		return socket.ModeAsync
	}
	return socket.ModeBlocking
}
