package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Before reports whether ym is an earlier month than o.
func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// DayAmount is the total spent on one calendar day.
type DayAmount struct {
	Date   Date
	Amount decimal.Decimal
}

// MonthAmount is the total spent in one calendar month.
type MonthAmount struct {
	Month  YearMonth
	Amount decimal.Decimal
}
