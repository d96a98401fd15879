// Package ledger holds the in-memory expense ledger and the summaries
// derived from it.
//
// A Ledger is a value. Append returns a new Ledger and never touches the
// receiver, so a session can keep the previous value if persisting the new
// one fails.
package ledger

import (
	"expensetracker/internal/core"
)

// Column names of the tabular ledger, in on-disk order.
const (
	ColumnDate     = "date"
	ColumnCategory = "category"
	ColumnAmount   = "amount"
	ColumnNote     = "note"
)

// Ledger is the ordered sequence of expenses in append order.
type Ledger struct {
	records []core.Expense
}

// New returns a ledger holding a copy of records.
func New(records ...core.Expense) Ledger {
	if len(records) == 0 {
		return Ledger{}
	}
	out := make([]core.Expense, len(records))
	copy(out, records)
	return Ledger{records: out}
}

// Columns returns the fixed column shape of every ledger, including an empty one.
func Columns() []string {
	return []string{ColumnDate, ColumnCategory, ColumnAmount, ColumnNote}
}

func (l Ledger) Len() int {
	return len(l.records)
}

func (l Ledger) IsEmpty() bool {
	return len(l.records) == 0
}

// At returns the i-th record in append order.
func (l Ledger) At(i int) core.Expense {
	return l.records[i]
}

// Records returns a copy of all records.
func (l Ledger) Records() []core.Expense {
	out := make([]core.Expense, len(l.records))
	copy(out, l.records)
	return out
}

// Append returns a new ledger with e at the end.
func (l Ledger) Append(e core.Expense) Ledger {
	out := make([]core.Expense, len(l.records), len(l.records)+1)
	copy(out, l.records)
	return Ledger{records: append(out, e)}
}

// Tail returns up to the last n records, oldest first.
func (l Ledger) Tail(n int) []core.Expense {
	if n <= 0 {
		return nil
	}
	start := len(l.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.Expense, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Equal reports whether both ledgers hold equal records in the same order.
func (l Ledger) Equal(o Ledger) bool {
	if len(l.records) != len(o.records) {
		return false
	}
	for i := range l.records {
		if !l.records[i].Equal(o.records[i]) {
			return false
		}
	}
	return true
}
