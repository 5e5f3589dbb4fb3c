// Package export turns a list of transactions and a column selection into a
// CSV document and hands it to a Sink.
package export

import (
	"bytes"
	"strings"
	"time"

	"findash/internal/core"
)

const (
	cellSep = ","
	rowSep  = "\n"
	quote   = `"`
)

// Options tunes cell formatting and the simulated processing delay.
type Options struct {
	// DateLayout formats the date column. Empty means core.DateLayout.
	DateLayout string
	// EscapeQuotes doubles embedded quotes. Off by default, so a value
	// containing a quote produces a malformed cell.
	EscapeQuotes bool
	// Delay is waited before generation. Zero disables it.
	Delay time.Duration
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return core.DateLayout
	}
	return o.DateLayout
}

// Document is a generated CSV ready to be saved.
type Document struct {
	Filename string
	Header   []string
	Rows     [][]string
	Content  []byte
	// Columns is the number of selected columns.
	Columns int
	// Records is the number of data rows.
	Records int
}

// Filename is transactions_<YYYY-MM-DD>.csv for the UTC date of now.
func Filename(now time.Time) string {
	return "transactions_" + now.UTC().Format(core.DateLayout) + ".csv"
}

// GenerateCSV builds the document. The column order is always the fixed
// display order regardless of the order columns were selected in.
func GenerateCSV(txs []core.Transaction, sel core.Selection, opts Options, now time.Time) (Document, error) {
	if sel.None() {
		return Document{}, ErrNoColumnsSelected
	}

	cols := sel.Selected()
	header := sel.Labels()

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cellValue(c, tx, opts)
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	writeLine(&buf, header, opts.EscapeQuotes)
	for _, row := range rows {
		buf.WriteString(rowSep)
		writeLine(&buf, row, opts.EscapeQuotes)
	}

	return Document{
		Filename: Filename(now),
		Header:   header,
		Rows:     rows,
		Content:  buf.Bytes(),
		Columns:  len(cols),
		Records:  len(rows),
	}, nil
}

func cellValue(c core.Column, tx core.Transaction, opts Options) string {
	if c == core.ColumnDate {
		return tx.Date.Format(opts.dateLayout())
	}
	return c.Value(tx)
}

func writeLine(buf *bytes.Buffer, cells []string, escape bool) {
	for i, cell := range cells {
		if i > 0 {
			buf.WriteString(cellSep)
		}
		if escape {
			cell = strings.ReplaceAll(cell, quote, quote+quote)
		}
		buf.WriteString(quote)
		buf.WriteString(cell)
		buf.WriteString(quote)
	}
}
