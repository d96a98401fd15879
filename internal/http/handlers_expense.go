package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

// handleCreateExpense validates a submitted expense and appends it to the
// session ledger.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(ctx, "Failed to parse expense body", applog.FieldError, err)
		BadRequestError("Invalid request body").
			TriggerErrorNotification("Invalid request body").
			Write(w)
		return
	}

	e, err := ParseExpenseInput(p.Get, s.today())
	if err != nil {
		logger.InfoContext(ctx, "Rejected expense", applog.FieldError, err)
		UnprocessableEntityError(err.Error()).
			TriggerErrorNotification(err.Error()).
			Write(w)
		return
	}

	l, err := s.session.Record(ctx, e)
	switch {
	case err == nil:
	case core.IsValidation(err):
		UnprocessableEntityError(err.Error()).
			TriggerErrorNotification(err.Error()).
			Write(w)
		return
	case core.IsStorageWrite(err):
		// The session kept the record; the next successful save persists it.
		atomic.AddInt64(&s.metrics.writeFailures, 1)
		logger.ErrorContext(ctx, "Expense kept in memory after failed write", applog.FieldError, err)
		InternalServerError("Expense recorded but could not be saved").
			TriggerExpenseCreated(e.Date.String(), l.Len()-1).
			TriggerWarningNotification("Expense recorded but not saved; it will be retried on the next save").
			Write(w)
		return
	default:
		logger.ErrorContext(ctx, "Failed to record expense", applog.FieldError, err)
		InternalServerError("Failed to record expense").
			TriggerErrorNotification("Failed to record expense").
			Write(w)
		return
	}

	atomic.AddInt64(&s.metrics.expensesRecorded, 1)
	msg := fmt.Sprintf("Added %s in %s on %s", core.FormatMoney(e.Amount), e.Category, e.Date)
	NewHTMXResponse().
		TriggerExpenseCreated(e.Date.String(), l.Len()-1).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// handleExport streams the current ledger as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	l, _ := s.session.Snapshot()

	var buf bytes.Buffer
	if err := s.exporter.Export(&buf, l); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed", applog.FieldError, err)
		InternalServerError("Export failed").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
