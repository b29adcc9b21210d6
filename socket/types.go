package socket

import (
	"fmt"
	"strings"
)

// Role is fixed when a record is created.
type Role uint8

const (
	// RoleClient marks sockets opened by the process while a trace was active.
	RoleClient Role = iota + 1
	// RoleServer marks sockets produced by accept.
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return "unknown"
	}
}

// Mode is the I/O discipline of the descriptor. It is set once before the first
// I/O and never reverts. Reads of the context block on an async descriptor
// never wait for the peer.
type Mode uint8

const (
	ModeUnset Mode = iota
	ModeBlocking
	ModeAsync
)

func (m Mode) String() string {
	switch m {
	case ModeBlocking:
		return "blocking"
	case ModeAsync:
		return "async"
	default:
		return "unset"
	}
}

// State is the protocol position of a socket within its current transaction.
type State uint8

const (
	StateWillRead State = iota
	StateRead
	StateWillWrite
	StateWrote
)

func (s State) String() string {
	switch s {
	case StateWillRead:
		return "WILL_READ"
	case StateRead:
		return "READ"
	case StateWillWrite:
		return "WILL_WRITE"
	case StateWrote:
		return "WROTE"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Op is the direction of an I/O call.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
)

func (o Op) String() string {
	if o == OpWrite {
		return "write"
	}
	return "read"
}

// Action is what an upcoming I/O call means for the transaction.
type Action uint8

const (
	ActionNone Action = iota
	ActionSendRequest
	ActionRecvRequest
	ActionSendResponse
	ActionRecvResponse
)

func (a Action) String() string {
	switch a {
	case ActionSendRequest:
		return "SEND_REQUEST"
	case ActionRecvRequest:
		return "RECV_REQUEST"
	case ActionSendResponse:
		return "SEND_RESPONSE"
	case ActionRecvResponse:
		return "RECV_RESPONSE"
	default:
		return "NONE"
	}
}

// NextAction classifies an I/O call of direction op on a socket of the given
// role currently in state. It has no side effects.
func NextAction(role Role, state State, op Op) Action {
	switch role {
	case RoleServer:
		switch {
		case op == OpRead && (state == StateWillRead || state == StateWrote):
			return ActionRecvRequest
		case op == OpWrite && (state == StateWillWrite || state == StateRead):
			return ActionSendResponse
		}
	case RoleClient:
		switch {
		case op == OpWrite && (state == StateWillWrite || state == StateRead):
			return ActionSendRequest
		case op == OpRead && (state == StateWillRead || state == StateWrote):
			return ActionRecvResponse
		}
	}
	return ActionNone
}

// stateAfter is the state reached by a successful call that triggered an action.
func stateAfter(op Op) State {
	if op == OpWrite {
		return StateWrote
	}
	return StateRead
}

// ServerKind tells server sockets where their trace context comes from.
type ServerKind uint8

const (
	// Frontend servers receive external traffic and make the sampling decision.
	Frontend ServerKind = iota
	// Backend servers receive the context from an instrumented peer.
	Backend
)

func (k ServerKind) String() string {
	if k == Backend {
		return "backend"
	}
	return "frontend"
}

// ParseServerKind parses "frontend" or "backend", case-insensitively.
func ParseServerKind(s string) (ServerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frontend", "":
		return Frontend, nil
	case "backend":
		return Backend, nil
	default:
		return Frontend, fmt.Errorf("%w: %q", ErrUnknownServerKind, s)
	}
}
