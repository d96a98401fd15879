package http

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
		want        map[string]string
	}{
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "amount=12.5&category=Food&note=%20lunch%20",
			want:        map[string]string{"amount": "12.5", "category": "Food", "note": "lunch"},
		},
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"amount": 12.5, "category": "Travel", "note": "bus"}`,
			wantJSON:    true,
			want:        map[string]string{"amount": "12.5", "category": "Travel", "note": "bus"},
		},
		{
			name:     "json sniffed without content type",
			body:     `{"amount": "3"}`,
			wantJSON: true,
			want:     map[string]string{"amount": "3", "missing": ""},
		},
		{
			name:        "control characters stripped",
			contentType: "application/x-www-form-urlencoded",
			body:        "note=a%00b%07c",
			want:        map[string]string{"note": "abc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/expenses", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(r)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			for k, v := range tt.want {
				if got := p.Get(k); got != v {
					t.Errorf("Get(%q) = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	r := httptest.NewRequest("POST", "/expenses", strings.NewReader(`{"amount":`))
	r.Header.Set("Content-Type", "application/json")
	if err := NewRequestBodyParser(r).Parse(); err == nil {
		t.Error("expected error for truncated JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+1)
	r = httptest.NewRequest("POST", "/expenses", strings.NewReader("note="+big))
	if err := NewRequestBodyParser(r).Parse(); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestParseExpenseInput(t *testing.T) {
	today := core.NewDate(2024, 5, 10)
	tests := []struct {
		name      string
		fields    map[string]string
		wantErr   error
		wantField string
		wantDate  string
	}{
		{
			name:     "empty date defaults to today",
			fields:   map[string]string{"category": "Food", "amount": "12,50"},
			wantDate: "2024-05-10",
		},
		{
			name:     "explicit date",
			fields:   map[string]string{"date": "2024-02-29", "category": "Health", "amount": "0"},
			wantDate: "2024-02-29",
		},
		{
			name:      "bad date",
			fields:    map[string]string{"date": "10/05/2024", "category": "Food", "amount": "1"},
			wantErr:   core.ErrInvalidDate,
			wantField: "date",
		},
		{
			name:      "negative amount",
			fields:    map[string]string{"category": "Food", "amount": "-5"},
			wantErr:   core.ErrInvalidAmount,
			wantField: "amount",
		},
		{
			name:    "unknown category",
			fields:  map[string]string{"category": "Groceries", "amount": "5"},
			wantErr: core.ErrInvalidCategory,
		},
		{
			name:    "note too long",
			fields:  map[string]string{"category": "Food", "amount": "5", "note": strings.Repeat("x", core.MaxNoteLength+1)},
			wantErr: core.ErrNoteTooLong,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			get := func(k string) string { return tt.fields[k] }
			e, err := ParseExpenseInput(get, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				var ve *core.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("error %T is not a ValidationError", err)
				}
				if tt.wantField != "" && ve.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Date.String() != tt.wantDate {
				t.Errorf("Date = %s, want %s", e.Date, tt.wantDate)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=10", 10},
		{"limit=0", 50},
		{"limit=-3", 50},
		{"limit=abc", 50},
		{"limit=5000", maxRecentLimit},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := ParseLimit(q, 50); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseBudgetParams(t *testing.T) {
	base := ledger.DefaultBudget()

	q, _ := url.ParseQuery("daily=100&yearly=1000,5")
	b, err := ParseBudgetParams(q, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Daily.Equal(decimal.NewFromInt(100)) || !b.Monthly.Equal(base.Monthly) || !b.Yearly.Equal(decimal.RequireFromString("1000.5")) {
		t.Errorf("budget = %+v", b)
	}

	q, _ = url.ParseQuery("monthly=-5")
	if _, err := ParseBudgetParams(q, base); !errors.Is(err, ledger.ErrNegativeBudget) {
		t.Errorf("negative budget error = %v, want ErrNegativeBudget", err)
	}

	q, _ = url.ParseQuery("monthly=lots")
	_, err = ParseBudgetParams(q, base)
	if !errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, ledger.ErrNegativeBudget) {
		t.Errorf("malformed budget error = %v, want ErrInvalidAmount", err)
	}
}

func TestRequireMethod(t *testing.T) {
	if resp := RequireGET(httptest.NewRequest("HEAD", "/", nil)); resp != nil {
		t.Error("HEAD should satisfy RequireGET")
	}
	w := httptest.NewRecorder()
	resp := RequirePOST(httptest.NewRequest("GET", "/expenses", nil))
	if resp == nil {
		t.Fatal("GET should not satisfy RequirePOST")
	}
	resp.Write(w)
	if w.Code != 405 || w.Header().Get("Allow") != "POST" {
		t.Errorf("got %d Allow=%q", w.Code, w.Header().Get("Allow"))
	}
}
