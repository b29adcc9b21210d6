package socket

import (
	"context"
	"errors"
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/propagation"
	"github.com/aalemi-dev/sockettrace/record"
	"github.com/aalemi-dev/sockettrace/threadctx"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"golang.org/x/sys/unix"
)

// Logger is the subset of the logger package used by the hooks.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Config holds the per-process settings of the hooks.
type Config struct {
	// ServiceName is stamped on every emitted record.
	ServiceName string

	// Kind selects whether server sockets sample (Frontend) or read the
	// propagated context block (Backend).
	Kind ServerKind
}

// Verdict is the outcome of a Before hook. When Proceed is false the real call
// must not be made and N and Err are returned to the application instead.
type Verdict struct {
	Proceed bool
	N       int
	Err     error
}

var proceed = Verdict{Proceed: true}

// ReadCall describes the application read a BeforeRead runs in front of.
type ReadCall struct {
	// Size is the length of the caller's buffer.
	Size int
	// Flags are the recv flags of the call, zero for read.
	Flags int
}

// Hooks runs the tracing bookkeeping around every I/O call of a traced socket.
// It is safe for concurrent use on different records.
type Hooks struct {
	config   Config
	sampler  *tracecontext.Sampler
	resolver *endpoint.Resolver
	sender   *propagation.Sender
	receiver *propagation.Receiver
	sink     record.Sink
	logger   Logger
	observer observability.Observer
	now      func() time.Time
}

// NewHooks wires the collaborators of the hooks. A nil sampler samples at
// tracecontext.DefaultSampleRate and a nil sink discards records. A nil sender
// or receiver disables that direction of context propagation.
func NewHooks(cfg Config, sampler *tracecontext.Sampler, resolver *endpoint.Resolver, sender *propagation.Sender, receiver *propagation.Receiver, sink record.Sink) *Hooks {
	if sampler == nil {
		sampler, _ = tracecontext.NewSampler(tracecontext.DefaultSampleRate)
	}
	if sink == nil {
		sink = record.Discard
	}
	return &Hooks{
		config:   cfg,
		sampler:  sampler,
		resolver: resolver,
		sender:   sender,
		receiver: receiver,
		sink:     sink,
		now:      time.Now,
	}
}

// WithLogger attaches a diagnostics logger.
func (h *Hooks) WithLogger(logger Logger) *Hooks {
	h.logger = logger
	return h
}

// WithObserver attaches an observer.
func (h *Hooks) WithObserver(observer observability.Observer) *Hooks {
	h.observer = observer
	return h
}

// WithClock replaces time.Now.
func (h *Hooks) WithClock(now func() time.Time) *Hooks {
	h.now = now
	return h
}

// Config returns the configuration the hooks were built with.
func (h *Hooks) Config() Config {
	return h.config
}

// NewServerRecord creates the record of an accepted descriptor.
func (h *Hooks) NewServerRecord(fd int, mode Mode) *Record {
	r := NewRecord(fd, RoleServer)
	_ = r.SetMode(mode)
	return r
}

// NewClientRecord creates the record of an outbound socket. Sockets opened while
// the execution carries no trace context are not traced.
func (h *Hooks) NewClientRecord(exec *threadctx.Execution, fd int, mode Mode) (*Record, bool) {
	if exec == nil || !exec.Active() {
		return nil, false
	}
	r := NewRecord(fd, RoleClient)
	_ = r.SetMode(mode)
	return r, true
}

// BeforeRead prepares the context of a read that would open a server
// transaction. On backend servers this consumes the propagated context block.
// A zero-length read never touches the block: the real call answers it at once.
func (h *Hooks) BeforeRead(exec *threadctx.Execution, r *Record, call ReadCall) Verdict {
	if call.Size == 0 || r.role != RoleServer || r.NextAction(OpRead) != ActionRecvRequest {
		return proceed
	}
	if h.config.Kind == Backend {
		return h.receiveContext(r, call.Flags)
	}
	if !r.next.ready {
		r.next = pendingTransaction{context: h.sampler.Decide(), ready: true}
	}
	return proceed
}

// AfterRead applies the result of a read.
func (h *Hooks) AfterRead(exec *threadctx.Execution, r *Record, n int, err error) {
	h.resolveEndpoint(r)
	if n <= 0 || err != nil {
		return
	}
	switch r.advance(OpRead) {
	case ActionRecvRequest:
		h.begin(r)
	case ActionRecvResponse:
		h.finish(r)
	}
	h.publish(exec, r)
}

// BeforeWrite prepares the context of a write that would open a client
// transaction and sends it to instrumented peers.
func (h *Hooks) BeforeWrite(exec *threadctx.Execution, r *Record) Verdict {
	if r.role != RoleClient || r.NextAction(OpWrite) != ActionSendRequest {
		return proceed
	}
	if !r.next.ready {
		var ctx tracecontext.Context
		ok := false
		if exec != nil {
			ctx, ok = exec.Lookup()
		}
		if !ok && r.hasContext {
			ctx, ok = r.context, true
		}
		if !ok {
			return proceed
		}
		r.next = pendingTransaction{context: ctx, ready: true}
	}
	if r.next.sent || h.sender == nil {
		return proceed
	}
	if !h.resolveEndpoint(r) {
		return proceed
	}
	if _, ok := h.resolver.Services().Lookup(r.endpoint.PeerIP); !ok {
		return proceed
	}
	h.sendContext(r)
	return proceed
}

// AfterWrite applies the result of a write.
func (h *Hooks) AfterWrite(exec *threadctx.Execution, r *Record, n int, err error) {
	h.resolveEndpoint(r)
	if n <= 0 || err != nil {
		return
	}
	switch r.advance(OpWrite) {
	case ActionSendRequest:
		h.begin(r)
	case ActionSendResponse:
		h.finish(r)
	}
	h.publish(exec, r)
}

func (h *Hooks) begin(r *Record) {
	r.count++
	r.transaction = BeginTransaction(h.now())
	r.commit()
}

func (h *Hooks) finish(r *Record) {
	if err := r.transaction.End(h.now()); err != nil {
		h.debug("transaction ended before it began", err, r)
		return
	}
	if !r.hasContext || !r.traced || r.context.IsZero() {
		return
	}
	h.emit(r)
}

func (h *Hooks) emit(r *Record) {
	startedAt, _ := r.transaction.StartedAt()
	duration, _ := r.transaction.Duration()

	out := record.Build(r.role.String(), r.endpoint, r.context, startedAt, duration, r.count)
	out.Service = h.config.ServiceName
	h.sink.Log(out)

	h.observe("socket", "emit", r.role.String(), r.endpoint.Peer(), duration, nil, 1)
}

// publish makes the context of the socket the current context of the thread.
func (h *Hooks) publish(exec *threadctx.Execution, r *Record) {
	if exec != nil && r.hasContext {
		exec.Set(r.context)
	}
}

func (h *Hooks) receiveContext(r *Record, flags int) Verdict {
	if r.processed || h.receiver == nil {
		return proceed
	}
	if r.mode == ModeAsync {
		flags |= unix.MSG_DONTWAIT
	}

	start := h.now()
	complete, n, err := h.receiver.ReceiveFlags(r.fd, &r.inbound, flags)
	if !complete {
		if !errors.Is(err, unix.EAGAIN) {
			h.observe("propagation", "receive", r.role.String(), "", h.now().Sub(start), receiveError(n, err), 0)
		}
		return Verdict{N: n, Err: err}
	}

	ctx, err := r.inbound.Context()
	r.inbound.Reset()
	r.processed = true
	h.observe("propagation", "receive", r.role.String(), "", h.now().Sub(start), err, propagation.BlockSize)
	if err != nil {
		h.warn("discarding undecodable context block", err, r)
		r.next = pendingTransaction{context: tracecontext.Zero(), ready: true, lost: true}
		return proceed
	}
	r.next = pendingTransaction{context: ctx.NewSpan(), ready: true}
	return proceed
}

func (h *Hooks) sendContext(r *Record) {
	start := h.now()
	n, err := h.sender.Send(r.fd, r.next.context)
	r.next.sent = true
	h.observe("propagation", "send", r.role.String(), r.endpoint.Peer(), h.now().Sub(start), err, int64(n))
	if err != nil {
		r.next.lost = true
		h.warn("context block not delivered, request will not be traced", err, r, map[string]interface{}{
			"bytes_sent": n,
		})
	}
}

// resolveEndpoint resolves the endpoint once. Failures are retried on the next
// call.
func (h *Hooks) resolveEndpoint(r *Record) bool {
	if r.resolved {
		return true
	}
	if h.resolver == nil {
		return false
	}
	side := endpoint.ClientSide
	if r.role == RoleServer {
		side = endpoint.ServerSide
	}
	ep, err := h.resolver.Resolve(r.fd, side)
	if err != nil {
		h.debug("endpoint not resolved", err, r)
		return false
	}
	r.endpoint = ep
	r.resolved = true
	return true
}

func receiveError(n int, err error) error {
	if err == nil && n == 0 {
		return propagation.ErrShortBlock
	}
	return err
}

func (h *Hooks) observe(component, operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if h.observer != nil {
		h.observer.ObserveOperation(observability.OperationContext{
			Component:   component,
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
		})
	}
}

func (h *Hooks) debug(msg string, err error, r *Record) {
	if h.logger != nil {
		h.logger.DebugWithContext(logContext(r), msg, err, recordFields(r))
	}
}

func (h *Hooks) warn(msg string, err error, r *Record, extra ...map[string]interface{}) {
	if h.logger != nil {
		h.logger.WarnWithContext(logContext(r), msg, err, append([]map[string]interface{}{recordFields(r)}, extra...)...)
	}
}

// logContext carries the record's trace context, if any, to the logger.
func logContext(r *Record) context.Context {
	if !r.hasContext {
		return context.Background()
	}
	return tracecontext.NewContext(context.Background(), r.context)
}

func recordFields(r *Record) map[string]interface{} {
	return map[string]interface{}{
		"fd":    r.fd,
		"role":  r.role.String(),
		"state": r.state.String(),
	}
}
