package socket

import (
	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/propagation"
	"github.com/aalemi-dev/sockettrace/threadctx"
	"github.com/aalemi-dev/sockettrace/tracecontext"
)

// Record is the tracing state of one live socket.
type Record struct {
	fd    int
	role  Role
	mode  Mode
	state State

	endpoint endpoint.Endpoint
	resolved bool

	count       uint64
	transaction Transaction

	context    tracecontext.Context
	hasContext bool
	traced     bool

	// next is the context of the transaction the upcoming call would open. It
	// is prepared by the Before hooks and committed when that call succeeds.
	next pendingTransaction

	// processed is set once the context block of the upcoming server
	// transaction has been consumed from the wire.
	processed bool
	inbound   propagation.Inbound
}

type pendingTransaction struct {
	context tracecontext.Context
	ready   bool
	sent    bool
	lost    bool
}

// NewRecord creates a record in the initial state of role.
func NewRecord(fd int, role Role) *Record {
	r := &Record{fd: fd, role: role}
	if role == RoleServer {
		r.state = StateWillRead
	} else {
		r.state = StateWillWrite
	}
	return r
}

func (r *Record) FD() int      { return r.fd }
func (r *Record) Role() Role   { return r.role }
func (r *Record) Mode() Mode   { return r.mode }
func (r *Record) State() State { return r.state }

// SetMode fixes the I/O mode. It can be called once.
func (r *Record) SetMode(m Mode) error {
	if r.mode != ModeUnset {
		return ErrModeAlreadySet
	}
	r.mode = m
	return nil
}

// Endpoint returns the resolved endpoint, if any.
func (r *Record) Endpoint() (endpoint.Endpoint, bool) {
	return r.endpoint, r.resolved
}

// TransactionCount is the number of transactions started on this socket.
func (r *Record) TransactionCount() uint64 { return r.count }

// Transaction returns the current or last transaction.
func (r *Record) Transaction() Transaction { return r.transaction }

// Context returns the trace context of the current transaction.
func (r *Record) Context() (tracecontext.Context, error) {
	if !r.hasContext {
		return tracecontext.Context{}, threadctx.ErrNoContext
	}
	return r.context, nil
}

// NextAction classifies an upcoming call of direction op.
func (r *Record) NextAction(op Op) Action {
	return NextAction(r.role, r.state, op)
}

// advance applies a successful call of direction op and returns the action it
// performed.
func (r *Record) advance(op Op) Action {
	action := r.NextAction(op)
	if action != ActionNone {
		r.state = stateAfter(op)
	}
	return action
}

// commit installs the prepared context as the context of a new transaction.
func (r *Record) commit() {
	if r.next.ready {
		r.context = r.next.context
		r.hasContext = true
		r.traced = !r.next.lost
	}
	r.next = pendingTransaction{}
	r.processed = false
}
