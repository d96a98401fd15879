package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "expenses.csv"))
	l, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !l.IsEmpty() {
		t.Fatalf("expected empty ledger, got %d records", l.Len())
	}
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "expenses.csv")
	s := New(path)

	l := ledger.New(
		core.Expense{Date: core.NewDate(2024, 1, 15), Category: core.Food, Amount: decimal.NewFromInt(250), Note: "lunch"},
	)
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(raw) != "date,category,amount,note\n2024-01-15,Food,250.0,lunch\n" {
		t.Fatalf("unexpected file content %q", raw)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Equal(l) {
		t.Fatalf("loaded ledger differs: %+v", got.Records())
	}

	again, err := s.Load(ctx)
	if err != nil || !again.Equal(got) {
		t.Fatalf("second load differs: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestSaveThenLoad_MultilineNotes(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "expenses.csv"))

	var records []core.Expense
	for _, note := range []string{"bus\r\nreturn", "taxi\rtip", "plain\nline", "quote \"x\", comma"} {
		e, err := core.NewExpense(core.NewDate(2024, 3, 2), "Travel", "12.5", note)
		if err != nil {
			t.Fatalf("NewExpense(%q): %v", note, err)
		}
		records = append(records, e)
	}
	l := ledger.New(records...)
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Equal(l) {
		t.Fatalf("loaded ledger differs:\n got %+v\nwant %+v", got.Records(), l.Records())
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	if err := os.WriteFile(path, []byte("when,what\n2024-01-01,Food\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(path).Load(context.Background())
	if !core.IsStorageRead(err) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(path).Load(context.Background())
	if !core.IsStorageRead(err) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
}

func TestSaveUnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The parent "directory" is a regular file.
	s := New(filepath.Join(blocker, "expenses.csv"))
	err := s.Save(context.Background(), ledger.Ledger{})
	if !core.IsStorageWrite(err) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
}
