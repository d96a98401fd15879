package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"expensetracker/internal/csvledger"
	"expensetracker/internal/ledger"
)

// Store keeps the ledger in process memory. Nothing survives a restart.
type Store struct {
	mu    sync.Mutex
	l     ledger.Ledger
	saves int
}

func New(l ledger.Ledger) *Store {
	return &Store{l: l}
}

// NewFromFile seeds the store from a ledger CSV. A missing file gives an
// empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(ledger.Ledger{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	l, err := csvledger.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(l), nil
}

// Load implements ports.LedgerReader.
func (s *Store) Load(_ context.Context) (ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l, nil
}

// Save implements ports.LedgerWriter.
func (s *Store) Save(_ context.Context, l ledger.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l = l
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
