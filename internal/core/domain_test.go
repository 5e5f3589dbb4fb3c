package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.January || d.Day() != 15 {
		t.Fatalf("unexpected date: %v", d)
	}
	if d.String() != "2024-01-15" {
		t.Fatalf("round trip: got %q", d.String())
	}
	if _, err := ParseDate("15/01/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"completed", StatusCompleted, true},
		{" Pending ", StatusPending, true},
		{"FAILED", StatusFailed, true},
		{"all", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d expected %q, got %q (err=%v)", i, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: "1", Date: NewDate(2024, 1, 1), Status: StatusPending}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "", Date: NewDate(2024, 1, 1), Status: StatusPending},
		{ID: "1", Date: Date{}, Status: StatusPending},
		{ID: "1", Date: NewDate(2024, 1, 1), Status: "refunded"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMockTransactions(t *testing.T) {
	txs := MockTransactions()
	if len(txs) != 6 {
		t.Fatalf("expected 6 mock transactions, got %d", len(txs))
	}
	seen := map[string]bool{}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			t.Fatalf("mock transaction %s invalid: %v", tx.ID, err)
		}
		if seen[tx.ID] {
			t.Fatalf("duplicate id %s", tx.ID)
		}
		seen[tx.ID] = true
	}

	// Callers get their own copy.
	txs[0].User = "changed"
	if MockTransactions()[0].User != "John Smith" {
		t.Fatalf("mock dataset was mutated through a returned slice")
	}
}
