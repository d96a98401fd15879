package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// maxBodyBytes bounds POST bodies; an expense form is a few hundred bytes.
const maxBodyBytes = 64 << 10

// maxRecentLimit caps ?limit= on the recent-records view.
const maxRecentLimit = 1000

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseExpenseInput builds a validated expense from the date, category,
// amount and note fields. An empty date means today. Every failure is a
// *core.ValidationError.
func ParseExpenseInput(get func(string) string, today core.Date) (core.Expense, error) {
	date := today
	if v := get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Expense{}, &core.ValidationError{Field: "date", Err: err}
		}
		date = d
	}
	return core.NewExpense(date, get("category"), get("amount"), get("note"))
}

// ParseLimit reads ?limit=N, falling back to def for missing or invalid
// values and capping at maxRecentLimit.
func ParseLimit(query url.Values, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(query.Get("limit")))
	if err != nil || n < 1 {
		return def
	}
	if n > maxRecentLimit {
		return maxRecentLimit
	}
	return n
}

// ParseBudgetParams overlays ?daily=&monthly=&yearly= on base. Values use the
// same notation as amounts; negative or malformed values are rejected.
func ParseBudgetParams(query url.Values, base ledger.Budget) (ledger.Budget, error) {
	out := base
	for _, f := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{"daily", &out.Daily},
		{"monthly", &out.Monthly},
		{"yearly", &out.Yearly},
	} {
		v := strings.TrimSpace(query.Get(f.key))
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "-") {
			return base, &core.ValidationError{Field: f.key + " budget", Err: ledger.ErrNegativeBudget}
		}
		d, err := core.ParseAmount(v)
		if err != nil {
			return base, &core.ValidationError{Field: f.key + " budget", Err: err}
		}
		*f.dst = d
	}
	return out, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET also accepts HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
