package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/csvledger"
	"expensetracker/internal/ledger"
	"expensetracker/internal/ports"
)

// LedgerService validates and persists records through a LedgerStore and
// announces each persisted record to an optional publisher.
type LedgerService struct {
	store     ports.LedgerStore
	publisher ports.ExpensePublisher
}

// NewLedgerService wires a store and an optional publisher. A nil publisher
// disables events.
func NewLedgerService(store ports.LedgerStore, publisher ports.ExpensePublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Load returns the persisted ledger.
func (s *LedgerService) Load(ctx context.Context) (ledger.Ledger, error) {
	l, err := s.store.Load(ctx)
	if err != nil {
		return ledger.Ledger{}, err
	}
	slog.DebugContext(ctx, "Ledger loaded", "records", l.Len())
	return l, nil
}

// Append validates e, appends it to l and persists the result.
//
// A validation failure returns l unchanged and a *core.ValidationError; the
// store is not touched. A write failure returns the extended ledger together
// with a *core.StorageWriteError so the caller can keep working with it.
func (s *LedgerService) Append(ctx context.Context, l ledger.Ledger, e core.Expense) (ledger.Ledger, error) {
	if err := e.Validate(); err != nil {
		return l, err
	}

	next := l.Append(e)
	if err := s.store.Save(ctx, next); err != nil {
		var we *core.StorageWriteError
		if !errors.As(err, &we) {
			err = &core.StorageWriteError{Backend: "unknown", Err: err}
		}
		slog.ErrorContext(ctx, "Failed to persist ledger", "records", next.Len(), "error", err)
		return next, err
	}

	position := next.Len() - 1
	slog.InfoContext(ctx, "Expense recorded",
		"position", position,
		"date", e.Date.String(),
		"category", e.Category.String(),
		"amount", core.FormatAmount(e.Amount))

	s.publish(ctx, position, e)
	return next, nil
}

func (s *LedgerService) publish(ctx context.Context, position int, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseRecorded(ctx, position, e); err != nil {
		// The record is already persisted; the event is best effort.
		slog.WarnContext(ctx, "Failed to publish expense recorded event",
			"position", position, "error", err)
	}
}

// Export writes l in the ledger file format.
func (s *LedgerService) Export(w io.Writer, l ledger.Ledger) error {
	if err := csvledger.Encode(w, l); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	return nil
}
