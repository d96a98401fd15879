package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Food     Category = "Food"
	Travel   Category = "Travel"
	Shopping Category = "Shopping"
	Health   Category = "Health"
	Other    Category = "Other"
)

// DateLayout is the on-disk representation of a calendar date.
const DateLayout = "2006-01-02"

// MaxNoteLength bounds the free-text note of a single expense.
const MaxNoteLength = 500

type (
	Category string

	Date struct {
		time.Time
	}

	Expense struct {
		Date     Date
		Category Category
		Amount   decimal.Decimal
		Note     string
	}
)

// Categories returns the fixed set of categories in display order.
func Categories() []Category {
	return []Category{Food, Travel, Shopping, Health, Other}
}

// IsValid reports whether c belongs to the fixed category set.
func (c Category) IsValid() bool {
	switch c {
	case Food, Travel, Shopping, Health, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s against the fixed set, ignoring case and surrounding spaces.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Err: fmt.Errorf("%w: %q", ErrInvalidCategory, s)}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// YearMonth returns the calendar month containing d.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// Equal reports whether both dates denote the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	if d.Year() != o.Year() {
		return d.Year() < o.Year()
	}
	if d.Month() != o.Month() {
		return d.Month() < o.Month()
	}
	return d.Day() < o.Day()
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	// The YYYY-MM-DD layout has room for four digits only.
	if y := d.Year(); y < 0 || y > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidDate, y)
	}
	return nil
}

// NormalizeNote trims a note and folds CRLF and lone CR line breaks to LF.
func NormalizeNote(note string) string {
	note = strings.ReplaceAll(note, "\r\n", "\n")
	note = strings.ReplaceAll(note, "\r", "\n")
	return strings.TrimSpace(note)
}

// NewExpense builds a validated expense. The amount accepts the same
// notation as ParseAmount.
func NewExpense(date Date, category, amount, note string) (Expense, error) {
	cat, err := ParseCategory(category)
	if err != nil {
		return Expense{}, err
	}
	amt, err := ParseAmount(amount)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Err: err}
	}
	e := Expense{
		Date:     date,
		Category: cat,
		Amount:   amt,
		Note:     NormalizeNote(note),
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// Validate enforces the record invariants. The returned error is always a
// *ValidationError.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if !e.Category.IsValid() {
		return &ValidationError{Field: "category", Err: fmt.Errorf("%w: %q", ErrInvalidCategory, string(e.Category))}
	}
	if e.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Err: fmt.Errorf("%w: %s is negative", ErrInvalidAmount, e.Amount.String())}
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return &ValidationError{Field: "note", Err: ErrNoteTooLong}
	}
	if strings.ContainsRune(e.Note, '\r') {
		return &ValidationError{Field: "note", Err: fmt.Errorf("%w: carriage return", ErrInvalidNote)}
	}
	return nil
}

// Equal compares field by field; amounts compare by value so 250 equals 250.0.
func (e Expense) Equal(o Expense) bool {
	return e.Date.Equal(o.Date) &&
		e.Category == o.Category &&
		e.Amount.Equal(o.Amount) &&
		e.Note == o.Note
}
