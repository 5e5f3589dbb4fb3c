package google

import (
	"fmt"
	"strings"

	"findash/internal/core"
	"findash/internal/source"
)

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into transactions. Blank rows and a leading "id" header row are skipped;
// rows that fail to parse are reported with their 1-based sheet row number.
func parseTransactions(values [][]any) ([]core.Transaction, []error) {
	var (
		out  []core.Transaction
		errs []error
		seen = map[string]bool{}
	)
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		if i == 0 && strings.EqualFold(row[0], "id") {
			continue
		}
		sheetRow := i + 2
		tx, err := source.ParseRow(row)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", sheetRow, err))
			continue
		}
		if seen[tx.ID] {
			errs = append(errs, fmt.Errorf("row %d: duplicate id %q", sheetRow, tx.ID))
			continue
		}
		seen[tx.ID] = true
		out = append(out, tx)
	}
	return out, errs
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
