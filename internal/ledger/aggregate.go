package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// TotalSpent sums every amount; zero for an empty ledger.
func TotalSpent(l Ledger) decimal.Decimal {
	return sumWhere(l, func(core.Expense) bool { return true })
}

// SpentOn sums the amounts recorded on date.
func SpentOn(l Ledger, date core.Date) decimal.Decimal {
	return sumWhere(l, func(e core.Expense) bool { return e.Date.Equal(date) })
}

// SpentInMonth sums the amounts recorded in the given calendar month.
func SpentInMonth(l Ledger, year, month int) decimal.Decimal {
	return sumWhere(l, func(e core.Expense) bool {
		return e.Date.Year() == year && e.Date.Month() == month
	})
}

// SpentInYear sums the amounts recorded in year.
func SpentInYear(l Ledger, year int) decimal.Decimal {
	return sumWhere(l, func(e core.Expense) bool { return e.Date.Year() == year })
}

// TotalsByCategory groups amounts by category, one entry per category
// present, ordered by category name.
func TotalsByCategory(l Ledger) []core.CategoryAmount {
	sums := map[core.Category]decimal.Decimal{}
	for _, e := range l.records {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	out := make([]core.CategoryAmount, 0, len(sums))
	for c, amt := range sums {
		out = append(out, core.CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// TotalsByDay returns daily sums ordered by date ascending.
func TotalsByDay(l Ledger) []core.DayAmount {
	type key struct{ y, m, d int }
	sums := map[key]*core.DayAmount{}
	for _, e := range l.records {
		k := key{e.Date.Year(), e.Date.Month(), e.Date.Day()}
		if da, ok := sums[k]; ok {
			da.Amount = da.Amount.Add(e.Amount)
			continue
		}
		sums[k] = &core.DayAmount{Date: core.NewDate(k.y, k.m, k.d), Amount: e.Amount}
	}
	out := make([]core.DayAmount, 0, len(sums))
	for _, da := range sums {
		out = append(out, *da)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TotalsByMonth returns monthly sums in chronological order.
func TotalsByMonth(l Ledger) []core.MonthAmount {
	sums := map[core.YearMonth]decimal.Decimal{}
	for _, e := range l.records {
		ym := e.Date.YearMonth()
		sums[ym] = sums[ym].Add(e.Amount)
	}
	out := make([]core.MonthAmount, 0, len(sums))
	for ym, amt := range sums {
		out = append(out, core.MonthAmount{Month: ym, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

func sumWhere(l Ledger, keep func(core.Expense) bool) decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.records {
		if keep(e) {
			total = total.Add(e.Amount)
		}
	}
	return total
}
