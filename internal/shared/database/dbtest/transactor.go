// Package dbtest provides an in-memory stand-in for database.Transactor.
package dbtest

import (
	"context"
	"sync"
)

// Participant is an in-memory store that can roll back to a snapshot
type Participant interface {
	Snapshot() (restore func())
}

type activeKey struct{}

// Transactor serializes transactions with a single mutex, which gives the
// same all-or-nothing outcome as row locks for the stores it wraps. When fn
// fails every participant is restored to its state before the transaction.
type Transactor struct {
	mu           sync.Mutex
	participants []Participant

	countMu sync.Mutex
	commits int
	aborts  int
}

func NewTransactor(participants ...Participant) *Transactor {
	return &Transactor{participants: participants}
}

// Add registers more participants
func (t *Transactor) Add(participants ...Participant) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.participants = append(t.participants, participants...)
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(activeKey{}).(*Transactor); ok && owner == t {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	restores := make([]func(), len(t.participants))
	for i, p := range t.participants {
		restores[i] = p.Snapshot()
	}

	if err := fn(context.WithValue(ctx, activeKey{}, t)); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		t.count(false)
		return err
	}
	t.count(true)
	return nil
}

func (t *Transactor) count(committed bool) {
	t.countMu.Lock()
	defer t.countMu.Unlock()
	if committed {
		t.commits++
	} else {
		t.aborts++
	}
}

// Commits returns the number of committed transactions
func (t *Transactor) Commits() int {
	t.countMu.Lock()
	defer t.countMu.Unlock()
	return t.commits
}

// Aborts returns the number of rolled back transactions
func (t *Transactor) Aborts() int {
	t.countMu.Lock()
	defer t.countMu.Unlock()
	return t.aborts
}
