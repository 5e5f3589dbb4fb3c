package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"findash/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "seed"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "x.db" || got.DataDirectory != "seed" {
		t.Errorf("unexpected config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if res.Sheet != nil || res.Cleanup != nil {
		t.Error("memory backend should have no sheet sink or cleanup")
	}
	txs, err := res.Store.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 6 {
		t.Errorf("got %d transactions, want mock set of 6", len(txs))
	}
}

func TestCreateSQLiteBackendImportsSeed(t *testing.T) {
	dir := t.TempDir()
	seed := "id,date,amount,category,status,user,description\n" +
		"7,2024-01-16,99.99,Office,pending,Ann Lee,Desk chair\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "findash.db"), DataDirectory: dir}
	res, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	txs, err := res.Store.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 7 {
		t.Fatalf("got %d transactions, want 7", len(txs))
	}
	if txs[6].ID != "7" || txs[6].User != "Ann Lee" {
		t.Errorf("seeded row = %+v", txs[6])
	}
}

func TestCreateBackendUnknownType(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "postgres"}); err == nil {
		t.Error("expected error")
	}
}
