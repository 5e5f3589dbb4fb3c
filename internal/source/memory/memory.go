package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/source"
)

// Store serves a fixed transaction set and keeps the export log in memory.
type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	cats    []string
	exports []export.Record
}

func New(txs []core.Transaction, cats []string) *Store {
	if len(cats) == 0 {
		cats = core.KnownCategories
	}
	return &Store{txs: append([]core.Transaction(nil), txs...), cats: dedupe(cats)}
}

// NewMock serves the built-in mock dataset.
func NewMock() *Store {
	return New(core.MockTransactions(), nil)
}

// NewFromFiles seeds from base/seed_transactions.csv and
// base/seed_categories.txt, falling back to the mock data when a file is
// missing or empty. Invalid CSV rows are an error.
func NewFromFiles(base string) (*Store, error) {
	txs, err := source.ReadSeedFile(filepath.Join(base, source.SeedFile))
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		txs = core.MockTransactions()
	}
	return New(txs, readLines(filepath.Join(base, "seed_categories.txt"))), nil
}

// ListTransactions returns a copy of the dataset.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cats...), nil
}

func (s *Store) RecordExport(_ context.Context, rec export.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, rec)
	return nil
}

// ListExports returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) ListExports(_ context.Context, limit int) ([]export.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.exports)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]export.Record, 0, n)
	for i := len(s.exports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.exports[i])
	}
	return out, nil
}

var _ source.Store = (*Store)(nil)

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
