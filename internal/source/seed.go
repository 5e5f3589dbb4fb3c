package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"findash/internal/core"
)

// SeedFile is the transaction seed looked up in DATA_DIR.
const SeedFile = "seed_transactions.csv"

// ReadSeedFile reads a seed CSV. A missing file yields no transactions and
// no error.
func ReadSeedFile(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return ReadSeed(f)
}

// ReadSeed parses rows laid out as RowColumns. An optional header row
// starting with "id" and lines starting with # are skipped. Ids must be
// unique.
func ReadSeed(in io.Reader) ([]core.Transaction, error) {
	r := csv.NewReader(in)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []core.Transaction
	seen := map[string]bool{}
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "id") {
				continue
			}
		}
		tx, err := ParseRow(rec)
		if err != nil {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("seed line %d: %w", line, err)
		}
		if seen[tx.ID] {
			return nil, fmt.Errorf("seed: duplicate id %q", tx.ID)
		}
		seen[tx.ID] = true
		out = append(out, tx)
	}
	return out, nil
}
