// Package csvledger converts between a ledger and its tabular form:
// a header row "date,category,amount,note" followed by one row per expense.
//
// The same rows back the flat file, the GCS object, the Google Sheet and
// the raw export.
package csvledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Decode reads a whole ledger from r. Header columns are matched by name,
// in any order; unknown columns are ignored. An input with no header row is
// an error, a header with no rows is an empty ledger.
func Decode(r io.Reader) (ledger.Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("parse csv: %w", err)
	}
	return FromRows(rows)
}

// Encode writes the header and every record of l to w.
func Encode(w io.Writer, l ledger.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ToRows(l)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ToRows returns the header followed by one row per record.
func ToRows(l ledger.Ledger) [][]string {
	rows := make([][]string, 0, l.Len()+1)
	rows = append(rows, ledger.Columns())
	for _, e := range l.Records() {
		rows = append(rows, Row(e))
	}
	return rows
}

// Row formats a single expense in column order.
func Row(e core.Expense) []string {
	return []string{
		e.Date.String(),
		e.Category.String(),
		core.FormatAmount(e.Amount),
		e.Note,
	}
}

// FromRows parses header + data rows. Rows that are entirely blank are
// skipped. Values are not checked against the category set or for sign.
func FromRows(rows [][]string) (ledger.Ledger, error) {
	if len(rows) == 0 {
		return ledger.Ledger{}, core.ErrMissingHeader
	}
	idx, err := headerIndex(rows[0])
	if err != nil {
		return ledger.Ledger{}, err
	}

	records := make([]core.Expense, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		e, err := parseRow(row, idx)
		if err != nil {
			// +2: one for the header, one for 1-based line numbers.
			return ledger.Ledger{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, e)
	}
	return ledger.New(records...), nil
}

type columns struct {
	date, category, amount, note int
}

func headerIndex(header []string) (columns, error) {
	pos := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}
	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	c := columns{
		date:     lookup(ledger.ColumnDate),
		category: lookup(ledger.ColumnCategory),
		amount:   lookup(ledger.ColumnAmount),
		note:     lookup(ledger.ColumnNote),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return c, nil
}

func parseRow(row []string, c columns) (core.Expense, error) {
	date, err := core.ParseDate(cell(row, c.date))
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseStoredAmount(cell(row, c.amount))
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Date:     date,
		Category: core.Category(strings.TrimSpace(cell(row, c.category))),
		Amount:   amount,
		Note:     cell(row, c.note),
	}, nil
}

// cell tolerates short rows; a missing trailing note reads as empty.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
