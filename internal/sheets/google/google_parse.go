package google

import (
	"fmt"
	"strings"

	"expensetracker/internal/csvledger"
	"expensetracker/internal/ledger"
)

// valuesToLedger converts a values matrix as returned by the Sheets API.
// Cells may arrive as strings or numbers depending on how they were entered.
func valuesToLedger(values [][]interface{}) (ledger.Ledger, error) {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return csvledger.FromRows(rows)
}

func ledgerToValues(l ledger.Ledger) [][]interface{} {
	rows := csvledger.ToRows(l)
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
