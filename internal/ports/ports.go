package ports

import (
	"context"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Ports for outbound adapters.
type (
	// LedgerReader loads the whole ledger. A store that does not exist yet
	// yields an empty ledger; anything else that prevents reading yields a
	// *core.StorageReadError.
	LedgerReader interface {
		Load(ctx context.Context) (ledger.Ledger, error)
	}

	// LedgerWriter replaces the persisted ledger with l. Failures are
	// reported as *core.StorageWriteError.
	LedgerWriter interface {
		Save(ctx context.Context, l ledger.Ledger) error
	}

	LedgerStore interface {
		LedgerReader
		LedgerWriter
	}

	// ExpensePublisher announces a record that was just persisted at the
	// given zero-based position.
	ExpensePublisher interface {
		PublishExpenseRecorded(ctx context.Context, position int, e core.Expense) error
	}
)
