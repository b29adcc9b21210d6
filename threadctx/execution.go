// Package threadctx holds the "current trace context" of a logical unit of work.
//
// Hooks never read ambient state: every hook receives an *Execution explicitly.
// The only place where an Execution is derived from the calling OS thread is the
// Store, which is consulted once at the outermost interception boundary. This keeps
// the "one thread services one request" assumption confined to that boundary.
//
// An Execution is owned by exactly one thread and is never locked.
package threadctx

import (
	"github.com/aalemi-dev/sockettrace/tracecontext"
)

// Execution is the per-thread current-context slot.
type Execution struct {
	current tracecontext.Context
	active  bool
}

// NewExecution returns an empty Execution with no current context.
func NewExecution() *Execution {
	return &Execution{}
}

// Set installs c as the current context, replacing any previous one.
func (e *Execution) Set(c tracecontext.Context) {
	e.current = c
	e.active = true
}

// Clear drops the current context.
func (e *Execution) Clear() {
	e.current = tracecontext.Context{}
	e.active = false
}

// Active reports whether a context is installed. The unsampled sentinel counts as
// active because it must keep propagating.
func (e *Execution) Active() bool {
	return e.active
}

// Lookup returns the current context and whether one is installed.
func (e *Execution) Lookup() (tracecontext.Context, bool) {
	return e.current, e.active
}

// Current returns the installed context or ErrNoContext.
func (e *Execution) Current() (tracecontext.Context, error) {
	if !e.active {
		return tracecontext.Context{}, ErrNoContext
	}
	return e.current, nil
}

// MustCurrent is like Current but panics when no context was ever set. It is
// reserved for callers that have already checked Active.
func (e *Execution) MustCurrent() tracecontext.Context {
	c, err := e.Current()
	if err != nil {
		panic(err)
	}
	return c
}
