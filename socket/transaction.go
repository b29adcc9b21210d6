package socket

import "time"

// Transaction times one request/response exchange. Times keep Go's monotonic
// clock reading, so Duration is immune to wall-clock steps while StartedAt still
// reports wall time.
type Transaction struct {
	startedAt time.Time
	endedAt   time.Time
	started   bool
	ended     bool
}

// BeginTransaction starts a transaction at now.
func BeginTransaction(now time.Time) Transaction {
	return Transaction{startedAt: now, started: true}
}

// End marks the transaction finished at now. Ending an unstarted transaction
// returns ErrTransactionNotStarted.
func (t *Transaction) End(now time.Time) error {
	if !t.started {
		return ErrTransactionNotStarted
	}
	t.endedAt = now
	t.ended = true
	return nil
}

// Started reports whether the transaction was begun.
func (t Transaction) Started() bool { return t.started }

// Ended reports whether the transaction was finished.
func (t Transaction) Ended() bool { return t.ended }

// StartedAt returns the start time.
func (t Transaction) StartedAt() (time.Time, error) {
	if !t.started {
		return time.Time{}, ErrTransactionNotStarted
	}
	return t.startedAt, nil
}

// Duration returns the elapsed time between start and end.
func (t Transaction) Duration() (time.Duration, error) {
	if !t.started {
		return 0, ErrTransactionNotStarted
	}
	if !t.ended {
		return 0, ErrTransactionNotEnded
	}
	return t.endedAt.Sub(t.startedAt), nil
}
