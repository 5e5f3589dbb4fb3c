package core

import "strings"

const (
	ColumnDate        Column = "date"
	ColumnAmount      Column = "amount"
	ColumnCategory    Column = "category"
	ColumnStatus      Column = "status"
	ColumnUser        Column = "user"
	ColumnDescription Column = "description"
)

// Column names a transaction field that can be sorted on or exported.
type Column string

// Columns is the fixed display order. Selection never reorders it.
var Columns = []Column{
	ColumnDate,
	ColumnAmount,
	ColumnCategory,
	ColumnStatus,
	ColumnUser,
	ColumnDescription,
}

var columnLabels = map[Column][2]string{
	ColumnDate:        {"Date", "Transaction date"},
	ColumnAmount:      {"Amount", "Transaction amount"},
	ColumnCategory:    {"Category", "Transaction category"},
	ColumnStatus:      {"Status", "Transaction status"},
	ColumnUser:        {"User", "User responsible"},
	ColumnDescription: {"Description", "Transaction description"},
}

// ParseColumn accepts a column key, case-insensitively.
func ParseColumn(s string) (Column, bool) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	_, ok := columnLabels[c]
	return c, ok
}

// Label is the human-readable header, falling back to the key.
func (c Column) Label() string {
	if l, ok := columnLabels[c]; ok {
		return l[0]
	}
	return string(c)
}

// Description is the one-line help text shown next to the checkbox.
func (c Column) Description() string {
	return columnLabels[c][1]
}

// Value extracts the raw, unformatted field value.
func (c Column) Value(t Transaction) string {
	switch c {
	case ColumnDate:
		return t.Date.String()
	case ColumnAmount:
		return t.Amount.Fixed2()
	case ColumnCategory:
		return t.Category
	case ColumnStatus:
		return string(t.Status)
	case ColumnUser:
		return t.User
	case ColumnDescription:
		return t.Description
	}
	return ""
}
