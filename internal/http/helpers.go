package http

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// sanitizeInput trims s and drops control characters other than tab and
// line breaks.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// percent renders a 0..1 progress value as a whole percentage.
func percent(p float64) int {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 100
	}
	return int(p*100 + 0.5)
}

// shareWidth scales part against max to a bar width in percent, keeping
// tiny non-zero values visible.
func shareWidth(part, max decimal.Decimal) int {
	if !max.IsPositive() || !part.IsPositive() {
		return 0
	}
	w := int(part.Mul(decimal.NewFromInt(100)).Div(max).Round(0).IntPart())
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}

var templateFuncs = template.FuncMap{
	"money":   core.FormatMoney,
	"amount":  core.FormatAmount,
	"percent": percent,
}
