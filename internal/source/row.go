package source

import (
	"fmt"
	"strings"

	"findash/internal/core"
)

// RowColumns is the column order of seed files and spreadsheet ranges.
var RowColumns = []string{"id", "date", "amount", "category", "status", "user", "description"}

// ParseRow converts one tabular row into a Transaction. Missing trailing
// cells are treated as empty.
func ParseRow(cells []string) (core.Transaction, error) {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	date, err := core.ParseDate(get(1))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}
	amount, err := core.ParseAmount(get(2))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", get(2), err)
	}
	status, err := core.ParseStatus(get(4))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("status: %w", err)
	}

	tx := core.Transaction{
		ID:          get(0),
		Date:        date,
		Amount:      amount,
		Category:    get(3),
		Status:      status,
		User:        get(5),
		Description: get(6),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// FormatRow is the inverse of ParseRow.
func FormatRow(tx core.Transaction) []string {
	return []string{
		tx.ID,
		tx.Date.String(),
		tx.Amount.Fixed2(),
		tx.Category,
		string(tx.Status),
		tx.User,
		tx.Description,
	}
}
