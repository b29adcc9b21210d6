package interceptor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Syscalls is the table of original functions the interceptor delegates to. It
// also serves as the raw I/O of context propagation and as the address source of
// endpoint resolution, so those never re-enter the interceptor.
type Syscalls interface {
	Socket(domain, typ, proto int) (int, error)
	Close(fd int) error
	Accept(fd int) (int, unix.Sockaddr, error)
	Accept4(fd int, flags int) (int, unix.Sockaddr, error)
	Read(fd int, p []byte) (int, error)
	Recvfrom(fd int, p []byte, flags int) (int, unix.Sockaddr, error)
	Write(fd int, p []byte) (int, error)
	Writev(fd int, iovs [][]byte) (int, error)
	SendmsgN(fd int, p, oob []byte, to unix.Sockaddr, flags int) (int, error)
	Getsockname(fd int) (unix.Sockaddr, error)
	Getpeername(fd int) (unix.Sockaddr, error)
	Poll(fds []unix.PollFd, timeout int) (int, error)
}

var (
	originalsOnce sync.Once
	originals     Syscalls
)

// Originals returns the process-wide table of real socket calls. It is resolved
// once.
func Originals() Syscalls {
	originalsOnce.Do(func() {
		originals = unixSyscalls{}
	})
	return originals
}

// unixSyscalls issues the raw system calls through x/sys/unix.
type unixSyscalls struct{}

func (unixSyscalls) Socket(domain, typ, proto int) (int, error) {
	return unix.Socket(domain, typ, proto)
}

func (unixSyscalls) Close(fd int) error {
	return unix.Close(fd)
}

func (unixSyscalls) Accept(fd int) (int, unix.Sockaddr, error) {
	return unix.Accept(fd)
}

func (unixSyscalls) Accept4(fd int, flags int) (int, unix.Sockaddr, error) {
	return unix.Accept4(fd, flags)
}

func (unixSyscalls) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (unixSyscalls) Recvfrom(fd int, p []byte, flags int) (int, unix.Sockaddr, error) {
	return unix.Recvfrom(fd, p, flags)
}

func (unixSyscalls) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (unixSyscalls) Writev(fd int, iovs [][]byte) (int, error) {
	return unix.Writev(fd, iovs)
}

func (unixSyscalls) SendmsgN(fd int, p, oob []byte, to unix.Sockaddr, flags int) (int, error) {
	return unix.SendmsgN(fd, p, oob, to, flags)
}

func (unixSyscalls) Getsockname(fd int) (unix.Sockaddr, error) {
	return unix.Getsockname(fd)
}

func (unixSyscalls) Getpeername(fd int) (unix.Sockaddr, error) {
	return unix.Getpeername(fd)
}

func (unixSyscalls) Poll(fds []unix.PollFd, timeout int) (int, error) {
	return unix.Poll(fds, timeout)
}
