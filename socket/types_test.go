package socket

import (
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/threadctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- NextAction ---

func TestNextAction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		role  Role
		state State
		op    Op
		want  Action
	}{
		{RoleServer, StateWillRead, OpRead, ActionRecvRequest},
		{RoleServer, StateWrote, OpRead, ActionRecvRequest},
		{RoleServer, StateRead, OpRead, ActionNone},
		{RoleServer, StateWillWrite, OpWrite, ActionSendResponse},
		{RoleServer, StateRead, OpWrite, ActionSendResponse},
		{RoleServer, StateWrote, OpWrite, ActionNone},
		{RoleServer, StateWillRead, OpWrite, ActionNone},
		{RoleClient, StateWillWrite, OpWrite, ActionSendRequest},
		{RoleClient, StateRead, OpWrite, ActionSendRequest},
		{RoleClient, StateWrote, OpWrite, ActionNone},
		{RoleClient, StateWillRead, OpRead, ActionRecvResponse},
		{RoleClient, StateWrote, OpRead, ActionRecvResponse},
		{RoleClient, StateRead, OpRead, ActionNone},
		{Role(0), StateWillRead, OpRead, ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.role.String()+"/"+tt.state.String()+"/"+tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NextAction(tt.role, tt.state, tt.op))
		})
	}
}

func TestNextAction_IsPure(t *testing.T) {
	t.Parallel()
	r := NewRecord(3, RoleServer)

	assert.Equal(t, ActionRecvRequest, r.NextAction(OpRead))
	assert.Equal(t, ActionRecvRequest, r.NextAction(OpRead))
	assert.Equal(t, StateWillRead, r.State())
}

func TestParseServerKind(t *testing.T) {
	t.Parallel()
	k, err := ParseServerKind("Backend")
	require.NoError(t, err)
	assert.Equal(t, Backend, k)

	k, err = ParseServerKind("")
	require.NoError(t, err)
	assert.Equal(t, Frontend, k)

	_, err = ParseServerKind("sidecar")
	assert.ErrorIs(t, err, ErrUnknownServerKind)
}

// --- Transaction ---

func TestTransaction_Lifecycle(t *testing.T) {
	t.Parallel()
	var zero Transaction
	_, err := zero.Duration()
	assert.ErrorIs(t, err, ErrTransactionNotStarted)
	_, err = zero.StartedAt()
	assert.ErrorIs(t, err, ErrTransactionNotStarted)
	assert.ErrorIs(t, zero.End(time.Now()), ErrTransactionNotStarted)

	start := time.Now()
	txn := BeginTransaction(start)
	_, err = txn.Duration()
	assert.ErrorIs(t, err, ErrTransactionNotEnded)

	require.NoError(t, txn.End(start.Add(40*time.Millisecond)))
	d, err := txn.Duration()
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, d)
	assert.True(t, txn.Ended())
}

// --- Record ---

func TestRecord_InitialState(t *testing.T) {
	t.Parallel()
	assert.Equal(t, StateWillRead, NewRecord(1, RoleServer).State())
	assert.Equal(t, StateWillWrite, NewRecord(1, RoleClient).State())
}

func TestRecord_ModeIsSetOnce(t *testing.T) {
	t.Parallel()
	r := NewRecord(1, RoleServer)
	assert.Equal(t, ModeUnset, r.Mode())

	require.NoError(t, r.SetMode(ModeAsync))
	assert.ErrorIs(t, r.SetMode(ModeBlocking), ErrModeAlreadySet)
	assert.Equal(t, ModeAsync, r.Mode())
}

func TestRecord_ContextBeforeFirstTransaction(t *testing.T) {
	t.Parallel()
	_, err := NewRecord(1, RoleServer).Context()
	assert.ErrorIs(t, err, threadctx.ErrNoContext)
}
