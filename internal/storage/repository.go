package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/source"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ source.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements source.TransactionLister in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toTransaction(row)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", row.ID, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// ImportTransactions upserts txs in one database transaction.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, txs []core.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer dbtx.Rollback()

	q := r.queries.WithTx(dbtx)
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if err := q.UpsertTransaction(ctx, fromTransaction(tx)); err != nil {
			return fmt.Errorf("upsert transaction %s: %w", tx.ID, err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported to SQLite", "count", len(txs))
	return nil
}

// Categories implements source.CategoryReader.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		return append([]string(nil), core.KnownCategories...), nil
	}
	return cats, nil
}

// RecordExport implements export.Recorder.
func (r *SQLiteRepository) RecordExport(ctx context.Context, rec export.Record) error {
	cols, err := json.Marshal(rec.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err = r.queries.CreateExportLog(ctx, ExportLogRow{
		Filename:     rec.Filename,
		Transactions: int64(rec.Transactions),
		Columns:      string(cols),
		Bytes:        int64(rec.Bytes),
		Destination:  rec.Destination,
		CreatedAt:    createdAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("create export log: %w", err)
	}
	return nil
}

// ListExports implements source.ExportLog, newest first.
func (r *SQLiteRepository) ListExports(ctx context.Context, limit int) ([]export.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.queries.ListExportLog(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list export log: %w", err)
	}
	out := make([]export.Record, 0, len(rows))
	for _, row := range rows {
		var cols []string
		if err := json.Unmarshal([]byte(row.Columns), &cols); err != nil {
			return nil, fmt.Errorf("decode columns of export %d: %w", row.ID, err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of export %d: %w", row.ID, err)
		}
		out = append(out, export.Record{
			Filename:     row.Filename,
			Transactions: int(row.Transactions),
			Columns:      cols,
			Bytes:        int(row.Bytes),
			Destination:  row.Destination,
			CreatedAt:    createdAt,
		})
	}
	return out, nil
}

func toTransaction(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	status, err := core.ParseStatus(row.Status)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          row.ID,
		Date:        date,
		Amount:      core.Money{Cents: row.AmountCents},
		Category:    row.Category,
		Status:      status,
		User:        row.UserName,
		Description: row.Description,
	}, nil
}

func fromTransaction(tx core.Transaction) TransactionRow {
	return TransactionRow{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Status:      string(tx.Status),
		UserName:    tx.User,
		Description: tx.Description,
	}
}
