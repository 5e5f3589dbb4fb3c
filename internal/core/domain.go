package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// DateLayout is the ISO calendar-date layout used by sources and the API.
const DateLayout = "2006-01-02"

type (
	Status string

	Date struct {
		time.Time
	}

	// Money holds a signed amount in cents. Negative values are expenses.
	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Date        Date
		Amount      Money
		Category    string
		Status      Status
		User        string
		Description string
	}
)

var (
	ErrEmptyID       = errors.New("empty transaction id")
	ErrZeroDate      = errors.New("date cannot be zero")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid status")
)

// KnownCategories is the fixed category set offered by the filter when a
// source cannot enumerate its own.
var KnownCategories = []string{"Sales", "Marketing", "Technology", "Office", "Consulting"}

// Statuses lists every status in filter order.
var Statuses = []Status{StatusCompleted, StatusPending, StatusFailed}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Format renders the date with the given layout, empty when zero.
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(layout)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}

// ParseStatus normalizes case and surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}

