package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
)

// handleIndex serves the dashboard page. Panels load through HTMX.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	l, _ := s.session.Snapshot()
	data := struct {
		Today      string
		Categories []core.Category
		Empty      bool
		Budget     ledger.Budget
		MaxNote    int
	}{
		Today:      s.today().String(),
		Categories: core.Categories(),
		Empty:      l.IsEmpty(),
		Budget:     s.budget,
		MaxNote:    core.MaxNoteLength,
	}
	s.render(w, r, "index.html", data)
}

type recentRow struct {
	Position int
	core.Expense
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	l, _ := s.session.Snapshot()
	limit := ParseLimit(r.URL.Query(), s.recentLimit)

	tail := l.Tail(limit)
	first := l.Len() - len(tail)
	rows := make([]recentRow, len(tail))
	for i, e := range tail {
		rows[i] = recentRow{Position: first + i, Expense: e}
	}
	data := struct {
		Rows  []recentRow
		Total int
		Empty bool
	}{rows, l.Len(), l.IsEmpty()}
	s.render(w, r, "recent_records", data)
}

type categoryRow struct {
	Category core.Category
	Amount   decimal.Decimal
	Width    int
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	l, _ := s.session.Snapshot()

	totals := ledger.TotalsByCategory(l)
	top := decimal.Zero
	for _, c := range totals {
		if c.Amount.GreaterThan(top) {
			top = c.Amount
		}
	}
	rows := make([]categoryRow, len(totals))
	for i, c := range totals {
		rows[i] = categoryRow{Category: c.Category, Amount: c.Amount, Width: shareWidth(c.Amount, top)}
	}
	data := struct {
		Total   decimal.Decimal
		Count   int
		Rows    []categoryRow
		Empty   bool
		ThisDay decimal.Decimal
	}{
		Total:   ledger.TotalSpent(l),
		Count:   l.Len(),
		Rows:    rows,
		Empty:   l.IsEmpty(),
		ThisDay: ledger.SpentOn(l, s.today()),
	}
	s.render(w, r, "summary_panel", data)
}

// handleBudget shows spend against budget for today, this month and this
// year. Query values override the configured budget for this request only.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	b, err := ParseBudgetParams(r.URL.Query(), s.budget)
	if err != nil {
		UnprocessableEntityError(err.Error()).
			TriggerErrorNotification(err.Error()).
			Write(w)
		return
	}
	l, _ := s.session.Snapshot()
	today := s.today()
	data := struct {
		Today   string
		Budget  ledger.Budget
		Periods []ledger.PeriodStatus
		Empty   bool
	}{
		Today:   today.String(),
		Budget:  b,
		Periods: ledger.StatusOn(l, b, today).Periods(),
		Empty:   l.IsEmpty(),
	}
	s.render(w, r, "budget_panel", data)
}

type chartKind string

const (
	chartDaily      chartKind = "daily"
	chartMonthly    chartKind = "monthly"
	chartCategories chartKind = "categories"
)

type chartSeries struct {
	Kind   chartKind     `json:"kind"`
	Labels []string      `json:"labels"`
	Values []json.Number `json:"values"`
}

// handleChart returns the series for one chart as JSON. Encoded series are
// cached per ledger revision.
func (s *Server) handleChart(kind chartKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp := RequireGET(r); resp != nil {
			resp.Write(w)
			return
		}
		l, rev := s.session.Snapshot()
		body, err := s.chartCache.GetOrCompute(cache.RevisionKey(string(kind), rev), func() ([]byte, error) {
			return json.Marshal(buildSeries(kind, l))
		})
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode chart",
				"chart", string(kind), applog.FieldError, err)
			http.Error(w, "failed to encode chart", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(body)
	}
}

func buildSeries(kind chartKind, l ledger.Ledger) chartSeries {
	out := chartSeries{Kind: kind, Labels: []string{}, Values: []json.Number{}}
	add := func(label string, d decimal.Decimal) {
		out.Labels = append(out.Labels, label)
		out.Values = append(out.Values, json.Number(d.String()))
	}
	switch kind {
	case chartDaily:
		for _, d := range ledger.TotalsByDay(l) {
			add(d.Date.String(), d.Amount)
		}
	case chartMonthly:
		for _, m := range ledger.TotalsByMonth(l) {
			add(m.Month.String(), m.Amount)
		}
	case chartCategories:
		for _, c := range ledger.TotalsByCategory(l) {
			add(c.Category.String(), c.Amount)
		}
	}
	return out
}
