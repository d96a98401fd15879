package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

var ErrNegativeBudget = errors.New("budget must not be negative")

var one = decimal.NewFromInt(1)

// Budget holds the spending limits for each period.
type Budget struct {
	Daily   decimal.Decimal
	Monthly decimal.Decimal
	Yearly  decimal.Decimal
}

// DefaultBudget mirrors the limits the dashboard starts with.
func DefaultBudget() Budget {
	return Budget{
		Daily:   decimal.NewFromInt(500),
		Monthly: decimal.NewFromInt(15000),
		Yearly:  decimal.NewFromInt(200000),
	}
}

func (b Budget) Validate() error {
	if b.Daily.IsNegative() || b.Monthly.IsNegative() || b.Yearly.IsNegative() {
		return ErrNegativeBudget
	}
	return nil
}

// Progress returns spent/budget clamped to [0, 1].
//
// A zero budget has no meaningful ratio: it reports 1 once anything has been
// spent and 0 otherwise.
func Progress(spent, budget decimal.Decimal) float64 {
	if !budget.IsPositive() {
		if spent.IsPositive() {
			return 1
		}
		return 0
	}
	if !spent.IsPositive() {
		return 0
	}
	ratio := spent.Div(budget)
	if ratio.GreaterThan(one) {
		return 1
	}
	f, _ := ratio.Float64()
	return f
}

// PeriodStatus is spend against budget for one period.
type PeriodStatus struct {
	Label    string
	Spent    decimal.Decimal
	Budget   decimal.Decimal
	Progress float64
}

// Over reports whether spending exceeded the budget.
func (p PeriodStatus) Over() bool {
	return p.Spent.GreaterThan(p.Budget)
}

// BudgetStatus is the daily, monthly and yearly status for a reference day.
type BudgetStatus struct {
	Day   PeriodStatus
	Month PeriodStatus
	Year  PeriodStatus
}

// StatusOn computes the budget status of l for the day, month and year
// containing today.
func StatusOn(l Ledger, b Budget, today core.Date) BudgetStatus {
	day := SpentOn(l, today)
	month := SpentInMonth(l, today.Year(), today.Month())
	year := SpentInYear(l, today.Year())
	return BudgetStatus{
		Day:   PeriodStatus{Label: "Today", Spent: day, Budget: b.Daily, Progress: Progress(day, b.Daily)},
		Month: PeriodStatus{Label: "This Month", Spent: month, Budget: b.Monthly, Progress: Progress(month, b.Monthly)},
		Year:  PeriodStatus{Label: "This Year", Spent: year, Budget: b.Yearly, Progress: Progress(year, b.Yearly)},
	}
}

// Periods returns the statuses in display order.
func (s BudgetStatus) Periods() []PeriodStatus {
	return []PeriodStatus{s.Day, s.Month, s.Year}
}
