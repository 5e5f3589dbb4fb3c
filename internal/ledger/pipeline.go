package ledger

import (
	"sort"
	"strings"

	"findash/internal/core"
)

// Result is one rendered view of the table.
type Result struct {
	// Items is the current page window.
	Items []core.Transaction
	// Matched is the full filtered and sorted set; exports use it.
	Matched    []core.Transaction
	Total      int
	TotalPages int
	Page       int
	PageSize   int
	// From and To are the 1-based bounds for "Showing X to Y of N".
	From int
	To   int
	// FailedCount counts failed transactions in the filtered set.
	FailedCount int
	HasFailed   bool
	HasPrev     bool
	HasNext     bool
}

// Pages lists 1..TotalPages for the pager.
func (r Result) Pages() []int {
	out := make([]int, r.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Matches reports whether tx passes the search, status and category filters.
func Matches(tx core.Transaction, q Query) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(tx.Description), term) &&
			!strings.Contains(strings.ToLower(tx.User), term) {
			return false
		}
	}
	if q.Status != "" && q.Status != All && string(tx.Status) != q.Status {
		return false
	}
	if q.Category != "" && q.Category != All && tx.Category != q.Category {
		return false
	}
	return true
}

// Filter keeps the transactions that satisfy every predicate of q.
func Filter(txs []core.Transaction, q Query) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if Matches(tx, q) {
			out = append(out, tx)
		}
	}
	return out
}

// Sort returns a sorted copy. Amounts compare by absolute value. The sort is
// stable: equal keys keep their input order in either direction.
func Sort(txs []core.Transaction, field core.Column, dir Direction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	cmp := comparator(field)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Asc {
			return cmp(out[i], out[j]) < 0
		}
		return cmp(out[i], out[j]) > 0
	})
	return out
}

func comparator(field core.Column) func(a, b core.Transaction) int {
	switch field {
	case core.ColumnAmount:
		return func(a, b core.Transaction) int {
			return compareInt(a.Amount.Abs().Cents, b.Amount.Abs().Cents)
		}
	case core.ColumnCategory:
		return func(a, b core.Transaction) int { return strings.Compare(a.Category, b.Category) }
	case core.ColumnStatus:
		return func(a, b core.Transaction) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case core.ColumnUser:
		return func(a, b core.Transaction) int { return strings.Compare(a.User, b.User) }
	case core.ColumnDescription:
		return func(a, b core.Transaction) int { return strings.Compare(a.Description, b.Description) }
	default:
		return func(a, b core.Transaction) int { return a.Date.Compare(b.Date) }
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// TotalPages is ceil(count/size).
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (count + size - 1) / size
}

// Paginate returns the 1-based page window. Pages outside the set, including
// pages below 1, are empty rather than an error.
func Paginate(txs []core.Transaction, page, size int) []core.Transaction {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return []core.Transaction{}
	}
	start := (page - 1) * size
	if start >= len(txs) {
		return []core.Transaction{}
	}
	end := min(start+size, len(txs))
	out := make([]core.Transaction, end-start)
	copy(out, txs[start:end])
	return out
}

// Select filters and sorts without paginating.
func Select(txs []core.Transaction, q Query) []core.Transaction {
	return Sort(Filter(txs, q), q.SortField, q.SortDirection)
}

// Run applies the whole pipeline.
func Run(txs []core.Transaction, q Query) Result {
	size := q.pageSize()
	matched := Select(txs, q)
	items := Paginate(matched, q.Page, size)

	res := Result{
		Items:      items,
		Matched:    matched,
		Total:      len(matched),
		TotalPages: TotalPages(len(matched), size),
		Page:       q.Page,
		PageSize:   size,
	}
	for _, tx := range matched {
		if tx.Status == core.StatusFailed {
			res.FailedCount++
		}
	}
	res.HasFailed = res.FailedCount > 0
	if len(items) > 0 {
		res.From = (q.Page-1)*size + 1
		res.To = res.From + len(items) - 1
	}
	res.HasPrev = q.Page > 1
	res.HasNext = q.Page < res.TotalPages
	return res
}
