// Package ledger derives the visible page of transactions from a full
// in-memory set: filter, then sort, then paginate. Every function is pure and
// never mutates its input.
package ledger

import (
	"strings"

	"findash/internal/core"
)

const (
	// All is the pass-through value for the status and category filters.
	All = "all"

	DefaultPageSize = 5
)

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Direction string

// ParseDirection defaults to Desc for anything but "asc".
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Query is the caller-owned view state of the transactions table.
type Query struct {
	Search        string
	Status        string
	Category      string
	SortField     core.Column
	SortDirection Direction
	Page          int
	PageSize      int
}

// DefaultQuery matches the table's initial state: no filters, newest first.
func DefaultQuery() Query {
	return Query{
		Status:        All,
		Category:      All,
		SortField:     core.ColumnDate,
		SortDirection: Desc,
		Page:          1,
		PageSize:      DefaultPageSize,
	}
}

// ToggleSort applies a header click. Clicking the active field flips the
// direction; clicking another field sorts by it descending. The page resets.
func (q Query) ToggleSort(field core.Column) Query {
	if q.SortField == field {
		if q.SortDirection == Asc {
			q.SortDirection = Desc
		} else {
			q.SortDirection = Asc
		}
	} else {
		q.SortField = field
		q.SortDirection = Desc
	}
	q.Page = 1
	return q
}

func (q Query) pageSize() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}
