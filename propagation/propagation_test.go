package propagation

import (
	"bytes"
	"testing"

	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// step is one scripted result of a Read or Write call.
type step struct {
	n   int
	err error
}

// scriptedConn replays results and records the bytes moved through it.
type scriptedConn struct {
	reads   []step
	writes  []step
	source  *bytes.Reader
	written bytes.Buffer
	polls   int
	flags   []int
}

func (c *scriptedConn) Read(_ int, p []byte) (int, error) {
	if len(c.reads) == 0 {
		return 0, nil
	}
	s := c.reads[0]
	c.reads = c.reads[1:]
	if s.n <= 0 {
		return s.n, s.err
	}
	n := s.n
	if n > len(p) {
		n = len(p)
	}
	return c.source.Read(p[:n])
}

func (c *scriptedConn) Recvfrom(fd int, p []byte, flags int) (int, unix.Sockaddr, error) {
	c.flags = append(c.flags, flags)
	n, err := c.Read(fd, p)
	return n, nil, err
}

func (c *scriptedConn) Write(_ int, p []byte) (int, error) {
	if len(c.writes) == 0 {
		c.written.Write(p)
		return len(p), nil
	}
	s := c.writes[0]
	c.writes = c.writes[1:]
	if s.n <= 0 {
		return s.n, s.err
	}
	n := s.n
	if n > len(p) {
		n = len(p)
	}
	c.written.Write(p[:n])
	return n, nil
}

func (c *scriptedConn) Poll([]unix.PollFd, int) (int, error) {
	c.polls++
	return 1, nil
}

// --- Codec ---

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()
	for i := 0; i < 100; i++ {
		ctx := tracecontext.NewRoot().NewSpan()
		block := Encode(ctx)
		got, err := Decode(block[:])
		require.NoError(t, err)
		assert.Equal(t, ctx, got)
	}
}

func TestEncodeDecode_ZeroSentinelRoundTrips(t *testing.T) {
	t.Parallel()
	ctx := tracecontext.Zero()
	block := Encode(ctx)

	got, err := Decode(block[:])

	require.NoError(t, err)
	assert.True(t, got.IsZero())
	assert.Equal(t, ctx, got)
}

func TestEncode_Layout(t *testing.T) {
	t.Parallel()
	ctx := tracecontext.NewRoot().NewSpan()
	block := Encode(ctx)

	assert.Equal(t, ctx.TraceID[:], block[0:16])
	assert.Equal(t, ctx.SpanID[:], block[16:24])
	assert.Equal(t, ctx.ParentSpanID[:], block[24:32])
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()
	_, err := Decode(make([]byte, BlockSize-1))
	assert.ErrorIs(t, err, ErrShortBlock)

	_, err = Decode(make([]byte, BlockSize))
	assert.ErrorIs(t, err, ErrInvalidBlock)
}

// --- Sender ---

func TestSender_FullWrite(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{}
	ctx := tracecontext.NewRoot()

	n, err := NewSender(conn, 0, 0).Send(3, ctx)

	require.NoError(t, err)
	assert.Equal(t, BlockSize, n)
	block := Encode(ctx)
	assert.Equal(t, block[:], conn.written.Bytes())
}

func TestSender_RetriesShortWritesAndWouldBlock(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{writes: []step{
		{n: 10},
		{n: -1, err: unix.EAGAIN},
		{n: -1, err: unix.EINTR},
		{n: 22},
	}}
	ctx := tracecontext.NewRoot()

	n, err := NewSender(conn, 8, 0).Send(3, ctx)

	require.NoError(t, err)
	assert.Equal(t, BlockSize, n)
	assert.Equal(t, 1, conn.polls)
	block := Encode(ctx)
	assert.Equal(t, block[:], conn.written.Bytes())
}

func TestSender_GivesUpAfterAttempts(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{writes: []step{
		{n: 4},
		{n: -1, err: unix.EAGAIN},
		{n: -1, err: unix.EAGAIN},
	}}

	n, err := NewSender(conn, 3, 0).Send(3, tracecontext.NewRoot())

	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, 4, n)
}

func TestSender_HardErrorStops(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{writes: []step{{n: -1, err: unix.EPIPE}}}

	n, err := NewSender(conn, 8, 0).Send(3, tracecontext.NewRoot())

	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, unix.EPIPE)
	assert.Equal(t, 0, n)
}

// --- Receiver ---

func blockReader(ctx tracecontext.Context, tail []byte) *bytes.Reader {
	block := Encode(ctx)
	return bytes.NewReader(append(block[:], tail...))
}

func TestReceiver_SingleRead(t *testing.T) {
	t.Parallel()
	ctx := tracecontext.NewRoot()
	conn := &scriptedConn{source: blockReader(ctx, []byte("GET / HTTP/1.1\r\n")), reads: []step{{n: 1024}}}
	var in Inbound

	complete, _, err := NewReceiver(conn, 0).Receive(3, &in)

	require.NoError(t, err)
	require.True(t, complete)
	got, err := in.Context()
	require.NoError(t, err)
	assert.Equal(t, ctx, got)
	assert.Equal(t, 16, conn.source.Len(), "application bytes must stay in the socket")
}

func TestReceiver_FragmentedAcrossWouldBlock(t *testing.T) {
	t.Parallel()
	ctx := tracecontext.NewRoot()
	conn := &scriptedConn{source: blockReader(ctx, []byte("payload")), reads: []step{
		{n: 5},
		{n: -1, err: unix.EAGAIN},
	}}
	r := NewReceiver(conn, 0)
	var in Inbound

	complete, n, err := r.Receive(3, &in)
	assert.False(t, complete)
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, unix.EAGAIN)
	assert.Equal(t, 5, in.Len(), "partial block is kept across would-block")

	conn.reads = []step{{n: 7}, {n: 100}}
	complete, _, err = r.Receive(3, &in)
	require.NoError(t, err)
	require.True(t, complete)
	got, err := in.Context()
	require.NoError(t, err)
	assert.Equal(t, ctx, got)
	assert.Equal(t, len("payload"), conn.source.Len())
}

func TestReceiver_EOFDiscardsPartial(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{source: blockReader(tracecontext.NewRoot(), nil), reads: []step{{n: 10}, {n: 0}}}
	var in Inbound

	complete, n, err := NewReceiver(conn, 0).Receive(3, &in)

	assert.False(t, complete)
	assert.Equal(t, 0, n)
	assert.NoError(t, err)
	assert.Equal(t, 0, in.Len())
}

func TestReceiver_InterruptBound(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{source: blockReader(tracecontext.NewRoot(), nil), reads: []step{
		{n: -1, err: unix.EINTR},
		{n: -1, err: unix.EINTR},
		{n: -1, err: unix.EINTR},
	}}
	var in Inbound

	complete, _, err := NewReceiver(conn, 2).Receive(3, &in)

	assert.False(t, complete)
	assert.ErrorIs(t, err, unix.EINTR)
}

func TestReceiver_HardErrorResets(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{source: blockReader(tracecontext.NewRoot(), nil), reads: []step{
		{n: 3},
		{n: -1, err: unix.ECONNRESET},
	}}
	var in Inbound

	complete, _, err := NewReceiver(conn, 0).Receive(3, &in)

	assert.False(t, complete)
	assert.ErrorIs(t, err, unix.ECONNRESET)
	assert.Equal(t, 0, in.Len())
}

func TestReceiver_DontWaitUsesRecv(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{source: blockReader(tracecontext.NewRoot(), nil), reads: []step{
		{n: -1, err: unix.EAGAIN},
	}}
	var in Inbound

	complete, n, err := NewReceiver(conn, 0).ReceiveFlags(3, &in, unix.MSG_DONTWAIT|unix.MSG_PEEK)

	assert.False(t, complete)
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, unix.EAGAIN)
	assert.Equal(t, []int{unix.MSG_DONTWAIT}, conn.flags, "only MSG_DONTWAIT reaches the block read")
}

func TestReceiver_NoFlagsUsesRead(t *testing.T) {
	t.Parallel()
	conn := &scriptedConn{source: blockReader(tracecontext.NewRoot(), nil), reads: []step{{n: BlockSize}}}
	var in Inbound

	complete, _, err := NewReceiver(conn, 0).ReceiveFlags(3, &in, unix.MSG_PEEK)

	require.NoError(t, err)
	assert.True(t, complete)
	assert.Empty(t, conn.flags)
}
