package interceptor

import (
	"github.com/aalemi-dev/sockettrace/threadctx"
	"golang.org/x/sys/unix"
)

// Shim exposes the intercepted call surface with the execution resolved from
// the calling OS thread.
type Shim struct {
	interceptor *Interceptor
	store       *threadctx.Store
}

// NewShim binds an Interceptor to a per-thread execution store.
func NewShim(interceptor *Interceptor, store *threadctx.Store) *Shim {
	if store == nil {
		store = threadctx.NewStore()
	}
	return &Shim{interceptor: interceptor, store: store}
}

// Interceptor returns the underlying Interceptor.
func (s *Shim) Interceptor() *Interceptor { return s.interceptor }

// Store returns the per-thread execution store.
func (s *Shim) Store() *threadctx.Store { return s.store }

// ThreadExit drops the execution of the calling thread.
func (s *Shim) ThreadExit() {
	s.store.Release(unix.Gettid())
}

// Socket creates a socket and tracks it when the thread carries a context.
func (s *Shim) Socket(domain, typ, proto int) (int, error) {
	return s.interceptor.Socket(s.store.Current(), domain, typ, proto)
}

// Close untracks fd and closes it.
func (s *Shim) Close(fd int) error {
	return s.interceptor.Close(fd)
}

// Accept accepts a connection and tracks it as a server socket.
func (s *Shim) Accept(fd int) (int, unix.Sockaddr, error) {
	return s.interceptor.Accept(s.store.Current(), fd)
}

// Accept4 is Accept with flags.
func (s *Shim) Accept4(fd int, flags int) (int, unix.Sockaddr, error) {
	return s.interceptor.Accept4(s.store.Current(), fd, flags)
}

// Read reads from fd.
func (s *Shim) Read(fd int, p []byte) (int, error) {
	return s.interceptor.Read(s.store.Current(), fd, p)
}

// Recv receives from a connected socket.
func (s *Shim) Recv(fd int, p []byte, flags int) (int, error) {
	return s.interceptor.Recv(s.store.Current(), fd, p, flags)
}

// Recvfrom receives from fd.
func (s *Shim) Recvfrom(fd int, p []byte, flags int) (int, unix.Sockaddr, error) {
	return s.interceptor.Recvfrom(s.store.Current(), fd, p, flags)
}

// Write writes to fd.
func (s *Shim) Write(fd int, p []byte) (int, error) {
	return s.interceptor.Write(s.store.Current(), fd, p)
}

// Writev writes the buffers to fd in one call.
func (s *Shim) Writev(fd int, iovs [][]byte) (int, error) {
	return s.interceptor.Writev(s.store.Current(), fd, iovs)
}

// Send sends on a connected socket.
func (s *Shim) Send(fd int, p []byte, flags int) (int, error) {
	return s.interceptor.Send(s.store.Current(), fd, p, flags)
}

// Sendto sends to an explicit address.
func (s *Shim) Sendto(fd int, p []byte, flags int, to unix.Sockaddr) (int, error) {
	return s.interceptor.Sendto(s.store.Current(), fd, p, flags, to)
}

// Sendmsg sends data and ancillary data.
func (s *Shim) Sendmsg(fd int, p, oob []byte, to unix.Sockaddr, flags int) (int, error) {
	return s.interceptor.Sendmsg(s.store.Current(), fd, p, oob, to, flags)
}

// UVAccept runs original and tracks the accepted descriptor as async.
func (s *Shim) UVAccept(original func() (int, error)) (int, error) {
	return s.interceptor.UVAccept(s.store.Current(), original)
}

// UVGetaddrinfo wraps cb so that it runs with the context of the thread that
// issued the request, on whichever thread the event loop invokes it.
func (s *Shim) UVGetaddrinfo(h Handle, cb func(status int), original func(cb func(status int)) int) int {
	return s.interceptor.UVGetaddrinfo(s.store.Current(), h,
		func(_ *threadctx.Execution, status int) { cb(status) },
		func(wrapped Callback) int {
			return original(func(status int) { wrapped(s.store.Current(), status) })
		},
	)
}
