package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "expenses.bolt"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	l, err := s.Load(ctx)
	if err != nil || !l.IsEmpty() {
		t.Fatalf("expected empty ledger, got %d err=%v", l.Len(), err)
	}

	// More than 255 records checks that key order follows position.
	for i := 0; i < 300; i++ {
		l = l.Append(core.Expense{
			Date:     core.NewDate(2024, 1+i%12, 1+i%28),
			Category: core.Categories()[i%5],
			Amount:   decimal.New(int64(i), -1),
		})
	}
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	shorter := ledger.New(l.Records()[:2]...)
	if err := s.Save(ctx, shorter); err != nil {
		t.Fatalf("save shorter: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Equal(shorter) {
		t.Fatalf("expected save to replace contents, got %d records", got.Len())
	}

	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil || !got.Equal(l) {
		t.Fatalf("round trip mismatch: len=%d err=%v", got.Len(), err)
	}
}

func TestStoreCorruptRecord(t *testing.T) {
	s := openTestStore(t)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketExpenses).Put(itob(0), []byte("{not json"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); !core.IsStorageRead(err) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
}
