package propagation

import (
	"errors"
	"fmt"
	"time"

	"github.com/aalemi-dev/sockettrace/tracecontext"
	"golang.org/x/sys/unix"
)

// Default retry bounds used when a Sender or Receiver is built with zero values.
const (
	DefaultSendAttempts    = 8
	DefaultRecvAttempts    = 8
	DefaultSendPollTimeout = 10 * time.Millisecond
)

// Conn is the raw descriptor I/O used to move context blocks. It must bypass any
// interception, i.e. be the original functions.
type Conn interface {
	Read(fd int, p []byte) (int, error)
	Recvfrom(fd int, p []byte, flags int) (int, unix.Sockaddr, error)
	Write(fd int, p []byte) (int, error)
	Poll(fds []unix.PollFd, timeout int) (int, error)
}

// Sender writes context blocks with full-write-or-fail semantics, even on
// non-blocking descriptors.
type Sender struct {
	conn        Conn
	attempts    int
	pollTimeout time.Duration
}

// NewSender creates a Sender. Non-positive values select the defaults.
func NewSender(conn Conn, attempts int, pollTimeout time.Duration) *Sender {
	if attempts <= 0 {
		attempts = DefaultSendAttempts
	}
	if pollTimeout <= 0 {
		pollTimeout = DefaultSendPollTimeout
	}
	return &Sender{conn: conn, attempts: attempts, pollTimeout: pollTimeout}
}

// Send writes the block of ctx to fd. It returns the number of bytes that reached
// the socket; anything between 1 and BlockSize-1 means the peer will see a
// corrupted stream and is reported as an error.
func (s *Sender) Send(fd int, ctx tracecontext.Context) (int, error) {
	block := Encode(ctx)
	sent := 0
	for attempt := 0; attempt < s.attempts; attempt++ {
		n, err := s.conn.Write(fd, block[sent:])
		if n > 0 {
			sent += n
			if sent == BlockSize {
				return sent, nil
			}
			continue
		}
		switch {
		case err == nil, errors.Is(err, unix.EINTR):
		case errors.Is(err, unix.EAGAIN):
			s.waitWritable(fd)
		default:
			return sent, fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	}
	return sent, fmt.Errorf("%w: wrote %d of %d bytes in %d attempts", ErrSendFailed, sent, BlockSize, s.attempts)
}

func (s *Sender) waitWritable(fd int) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	_, _ = s.conn.Poll(fds, int(s.pollTimeout.Milliseconds()))
}

// Inbound accumulates a context block that may arrive over several reads.
type Inbound struct {
	buf [BlockSize]byte
	n   int
}

// Len returns the number of block bytes received so far.
func (in *Inbound) Len() int {
	return in.n
}

// Complete reports whether the whole block has been received.
func (in *Inbound) Complete() bool {
	return in.n == BlockSize
}

// Reset discards any partial block.
func (in *Inbound) Reset() {
	in.n = 0
}

// Context decodes the completed block.
func (in *Inbound) Context() (tracecontext.Context, error) {
	return Decode(in.buf[:in.n])
}

// Receiver reads context blocks straight from the descriptor.
type Receiver struct {
	conn     Conn
	attempts int
}

// NewReceiver creates a Receiver that tolerates up to attempts EINTR results per
// call. A non-positive value selects DefaultRecvAttempts.
func NewReceiver(conn Conn, attempts int) *Receiver {
	if attempts <= 0 {
		attempts = DefaultRecvAttempts
	}
	return &Receiver{conn: conn, attempts: attempts}
}

// Receive continues filling in from fd until the block is complete.
//
// When it returns complete == false, n and err are the result of the last read
// and must be handed back to the application unchanged: (-1, EAGAIN) keeps the
// partial block for the next call, while EOF (0, nil) and hard errors discard it.
func (r *Receiver) Receive(fd int, in *Inbound) (complete bool, n int, err error) {
	return r.ReceiveFlags(fd, in, 0)
}

// ReceiveFlags is Receive for a caller that passed recv flags. Only
// MSG_DONTWAIT is kept: with it the block read returns EAGAIN instead of
// waiting for the peer.
func (r *Receiver) ReceiveFlags(fd int, in *Inbound, flags int) (complete bool, n int, err error) {
	flags &= unix.MSG_DONTWAIT
	interrupted := 0
	for !in.Complete() {
		n, err = r.read(fd, in.buf[in.n:], flags)
		if n > 0 {
			in.n += n
			continue
		}
		switch {
		case errors.Is(err, unix.EINTR):
			if interrupted < r.attempts {
				interrupted++
				continue
			}
		case errors.Is(err, unix.EAGAIN):
		default:
			in.Reset()
		}
		return false, n, err
	}
	return true, 0, nil
}

func (r *Receiver) read(fd int, p []byte, flags int) (int, error) {
	if flags == 0 {
		return r.conn.Read(fd, p)
	}
	n, _, err := r.conn.Recvfrom(fd, p, flags)
	return n, err
}
