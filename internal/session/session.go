// Package session owns the ledger value shared by every request of a
// running process.
package session

import (
	"context"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Appender is the part of services.LedgerService a session needs.
type Appender interface {
	Load(ctx context.Context) (ledger.Ledger, error)
	Append(ctx context.Context, l ledger.Ledger, e core.Expense) (ledger.Ledger, error)
}

// Session serialises appends. Readers get an immutable snapshot.
type Session struct {
	svc Appender

	mu       sync.RWMutex
	l        ledger.Ledger
	revision uint64
	dirty    bool
}

// Open loads the persisted ledger once.
func Open(ctx context.Context, svc Appender) (*Session, error) {
	l, err := svc.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{svc: svc, l: l}, nil
}

// Snapshot returns the current ledger and its revision. The revision grows
// with every record accepted into the session.
func (s *Session) Snapshot() (ledger.Ledger, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l, s.revision
}

// Ledger is Snapshot without the revision.
func (s *Session) Ledger() ledger.Ledger {
	l, _ := s.Snapshot()
	return l
}

// Dirty reports whether the session holds records the store did not accept.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Record appends e. On a storage write error the in-memory ledger still
// advances and the error is returned; the next successful append persists
// the missed records too, since every save rewrites the whole ledger.
func (s *Session) Record(ctx context.Context, e core.Expense) (ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.svc.Append(ctx, s.l, e)
	if err != nil && !core.IsStorageWrite(err) {
		return s.l, err
	}
	s.l = next
	s.revision++
	s.dirty = err != nil
	return next, err
}

// Reload replaces the session ledger with the persisted one.
func (s *Session) Reload(ctx context.Context) error {
	l, err := s.svc.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l = l
	s.revision++
	s.dirty = false
	return nil
}
