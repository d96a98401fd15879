package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "expenses.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_EmptyLoad(t *testing.T) {
	repo := newTestRepo(t)
	l, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !l.IsEmpty() {
		t.Fatalf("expected empty ledger, got %d", l.Len())
	}
}

func TestSQLiteRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := ledger.New(
		core.Expense{Date: core.NewDate(2024, 1, 1), Category: core.Food, Amount: decimal.NewFromInt(100)},
		core.Expense{Date: core.NewDate(2024, 1, 2), Category: core.Travel, Amount: decimal.RequireFromString("50.25"), Note: "bus"},
	)
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first.Append(core.Expense{Date: core.NewDate(2024, 2, 1), Category: core.Health, Amount: decimal.RequireFromString("0.1")})
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 rows, got %d err=%v", n, err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Equal(second) {
		t.Fatalf("loaded ledger differs: %+v", got.Records())
	}
}

func TestSQLiteRepository_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	repo.Close()
}
