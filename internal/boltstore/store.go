// Package boltstore persists the ledger in a bbolt database file.
//
// Each record is a JSON document in the "expenses" bucket, keyed by its
// zero-based position encoded big-endian so that a cursor walks records in
// append order.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

const backendName = "bolt"

var bucketExpenses = []byte("expenses")

// row is the stored form of an expense.
type row struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Note     string `json:"note,omitempty"`
}

type Store struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the database at path and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketExpenses); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketExpenses, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load implements ports.LedgerReader.
func (s *Store) Load(ctx context.Context) (ledger.Ledger, error) {
	var records []core.Expense
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketExpenses)
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketExpenses)
		}
		return b.ForEach(func(k, v []byte) error {
			var r row
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode record %d: %w", btoi(k), err)
			}
			e, err := r.expense()
			if err != nil {
				return fmt.Errorf("record %d: %w", btoi(k), err)
			}
			records = append(records, e)
			return nil
		})
	})
	if err != nil {
		return ledger.Ledger{}, &core.StorageReadError{Backend: backendName, Location: s.path, Err: err}
	}
	return ledger.New(records...), nil
}

// Save implements ports.LedgerWriter. The bucket is recreated inside one
// update transaction, so readers never observe a partial ledger.
func (s *Store) Save(ctx context.Context, l ledger.Ledger) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketExpenses); err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("drop bucket: %w", err)
		}
		b, err := tx.CreateBucket(bucketExpenses)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for i, e := range l.Records() {
			data, err := json.Marshal(toRow(e))
			if err != nil {
				return fmt.Errorf("encode record %d: %w", i, err)
			}
			if err := b.Put(itob(int64(i)), data); err != nil {
				return fmt.Errorf("put record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return &core.StorageWriteError{Backend: backendName, Location: s.path, Err: err}
	}

	slog.InfoContext(ctx, "Ledger saved to bolt", "path", s.path, "records", l.Len())
	return nil
}

func toRow(e core.Expense) row {
	return row{
		Date:     e.Date.String(),
		Category: e.Category.String(),
		Amount:   core.FormatAmount(e.Amount),
		Note:     e.Note,
	}
}

func (r row) expense() (core.Expense, error) {
	d, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amt, err := core.ParseStoredAmount(r.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{Date: d, Category: core.Category(r.Category), Amount: amt, Note: r.Note}, nil
}

// itob converts an int64 to a byte slice for use as a bbolt key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	if len(b) != 8 {
		return -1
	}
	return int64(binary.BigEndian.Uint64(b))
}
