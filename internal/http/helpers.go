package http

import (
	"html/template"
	"strconv"
	"strings"

	"findash/internal/core"
)

// formatAmount renders a signed dollar amount for the table, e.g.
// "+$2,400.00" or "-$85.50".
func formatAmount(m core.Money) string {
	sign := "+"
	if m.Cents < 0 {
		sign = "-"
	}
	abs := m.Abs().Cents
	return sign + "$" + groupThousands(abs/100) + "." + twoDigits(abs%100)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// formatDate renders dates like "Jan 15, 2024".
func formatDate(d core.Date) string {
	return d.Format("Jan 2, 2006")
}

// statusClass maps a status to its badge class.
func statusClass(s core.Status) string {
	switch s {
	case core.StatusCompleted:
		return "badge badge-completed"
	case core.StatusPending:
		return "badge badge-pending"
	case core.StatusFailed:
		return "badge badge-failed"
	}
	return "badge"
}

func amountClass(m core.Money) string {
	if m.Cents < 0 {
		return "amount amount-negative"
	}
	return "amount amount-positive"
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return stripControl(strings.TrimSpace(s))
}

// stripControl removes control characters other than tab, LF and CR. Spaces
// are kept, so a search term stays a literal substring.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatAmount": formatAmount,
		"formatDate":   formatDate,
		"statusClass":  statusClass,
		"amountClass":  amountClass,
		"join":         strings.Join,
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}
