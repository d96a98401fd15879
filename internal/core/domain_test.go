package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2024, 2, 29), true},
		{Date{Time: time.Time{}}, false}, // zero time
		{NewDate(9999, 12, 31), true},
		{NewDate(10000, 1, 1), false},
		{NewDate(-1, 6, 1), false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2024, 1, 31)
	b := NewDate(2024, 2, 1)
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %s before %s", a, b)
	}
	if !a.Equal(DateOf(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC))) {
		t.Fatalf("time of day must not matter")
	}
	if got := a.YearMonth().String(); got != "2024-01" {
		t.Fatalf("unexpected year-month %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"Food", "food", " TRAVEL ", "Other"} {
		if _, err := ParseCategory(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	_, err := ParseCategory("Rent")
	if !errors.Is(err, ErrInvalidCategory) || !IsValidation(err) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:     NewDate(2025, 1, 1),
		Category: Food,
		Amount:   decimal.NewFromInt(100),
		Note:     "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount must be accepted, got %v", err)
	}

	bads := []struct {
		e     Expense
		field string
	}{
		{Expense{Date: Date{}, Category: Food, Amount: decimal.NewFromInt(1)}, "date"},
		{Expense{Date: NewDate(2025, 1, 1), Category: "Rent", Amount: decimal.NewFromInt(1)}, "category"},
		{Expense{Date: NewDate(2025, 1, 1), Category: Food, Amount: decimal.NewFromInt(-5)}, "amount"},
		{Expense{Date: NewDate(2025, 1, 1), Category: Food, Amount: decimal.NewFromInt(1), Note: strings.Repeat("x", MaxNoteLength+1)}, "note"},
		{Expense{Date: NewDate(2025, 1, 1), Category: Food, Amount: decimal.NewFromInt(1), Note: strings.Repeat("₹", MaxNoteLength+1)}, "note"},
		{Expense{Date: NewDate(2025, 1, 1), Category: Food, Amount: decimal.NewFromInt(1), Note: "a\rb"}, "note"},
		{Expense{Date: NewDate(12025, 1, 1), Category: Food, Amount: decimal.NewFromInt(1)}, "date"},
	}
	for i, tc := range bads {
		err := tc.e.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d expected *ValidationError, got %v", i, err)
		}
		if ve.Field != tc.field {
			t.Fatalf("case %d expected field %q, got %q", i, tc.field, ve.Field)
		}
	}
}

func TestExpenseValidate_NoteLengthCountsCharacters(t *testing.T) {
	e := Expense{
		Date:     NewDate(2025, 1, 1),
		Category: Food,
		Amount:   decimal.NewFromInt(1),
		Note:     strings.Repeat("₹", MaxNoteLength),
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("%d multi-byte characters must be accepted, got %v", MaxNoteLength, err)
	}
}

func TestNormalizeNote(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"lunch", "lunch"},
		{"  lunch \n", "lunch"},
		{"bus\r\nreturn", "bus\nreturn"},
		{"bus\rreturn", "bus\nreturn"},
		{"a\r\n\r\nb\r", "a\n\nb"},
	}
	for _, tc := range cases {
		if got := NormalizeNote(tc.in); got != tc.want {
			t.Errorf("NormalizeNote(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewExpense(t *testing.T) {
	e, err := NewExpense(NewDate(2024, 1, 15), "food", "250", "  lunch ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Category != Food || e.Note != "lunch" || !e.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected expense: %+v", e)
	}

	if _, err := NewExpense(NewDate(2024, 1, 15), "Food", "-5", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	e, err = NewExpense(NewDate(2024, 1, 15), "Travel", "40", "bus\r\nreturn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Note != "bus\nreturn" {
		t.Fatalf("note not normalized: %q", e.Note)
	}

	if _, err := NewExpense(NewDate(10000, 1, 1), "Food", "1", ""); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for year 10000, got %v", err)
	}
}

func TestStorageErrorsUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	var err error = &StorageWriteError{Backend: "csv", Location: "x.csv", Err: cause}
	if !errors.Is(err, cause) || !IsStorageWrite(err) || IsStorageRead(err) {
		t.Fatalf("unexpected classification for %v", err)
	}
	err = &StorageReadError{Backend: "csv", Location: "x.csv", Err: ErrMissingColumn}
	if !errors.Is(err, ErrMissingColumn) || !IsStorageRead(err) {
		t.Fatalf("unexpected classification for %v", err)
	}
}
