package threadctx

import (
	"runtime"
	"sync"
	"testing"

	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// --- Execution ---

func TestExecution_EmptyHasNoContext(t *testing.T) {
	t.Parallel()
	e := NewExecution()

	assert.False(t, e.Active())
	_, err := e.Current()
	assert.ErrorIs(t, err, ErrNoContext)
	assert.Panics(t, func() { e.MustCurrent() })
}

func TestExecution_SetAndClear(t *testing.T) {
	t.Parallel()
	e := NewExecution()
	ctx := tracecontext.NewRoot()

	e.Set(ctx)
	got, err := e.Current()
	require.NoError(t, err)
	assert.Equal(t, ctx, got)
	assert.Equal(t, ctx, e.MustCurrent())

	e.Clear()
	_, ok := e.Lookup()
	assert.False(t, ok)
}

func TestExecution_ZeroContextIsActive(t *testing.T) {
	t.Parallel()
	e := NewExecution()
	e.Set(tracecontext.Zero())
	assert.True(t, e.Active())
}

// --- Store ---

func TestStore_ForThreadIsStable(t *testing.T) {
	t.Parallel()
	s := NewStore()

	a := s.ForThread(10)
	b := s.ForThread(10)
	c := s.ForThread(11)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())

	s.Release(10)
	assert.Equal(t, 1, s.Len())
	assert.NotSame(t, a, s.ForThread(10))
}

func TestStore_CurrentUsesCallingThread(t *testing.T) {
	t.Parallel()
	s := NewStore()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	assert.Same(t, s.ForThread(unix.Gettid()), s.Current())
}

func TestStore_ThreadsAreIsolated(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctxs := make([]tracecontext.Context, 8)

	var wg sync.WaitGroup
	for i := range ctxs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			ctxs[i] = tracecontext.NewRoot()
			s.Current().Set(ctxs[i])
			got, err := s.Current().Current()
			assert.NoError(t, err)
			assert.Equal(t, ctxs[i], got)
		}(i)
	}
	wg.Wait()
}
