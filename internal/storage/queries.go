package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	ID          string
	Date        string
	AmountCents int64
	Category    string
	Status      string
	UserName    string
	Description string
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, date, amount_cents, category, status, user_name, description
FROM transactions
ORDER BY rowid
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.AmountCents,
			&i.Category,
			&i.Status,
			&i.UserName,
			&i.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertTransaction = `-- name: UpsertTransaction :exec
INSERT INTO transactions (id, date, amount_cents, category, status, user_name, description)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    date = excluded.date,
    amount_cents = excluded.amount_cents,
    category = excluded.category,
    status = excluded.status,
    user_name = excluded.user_name,
    description = excluded.description
`

func (q *Queries) UpsertTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.ID,
		arg.Date,
		arg.AmountCents,
		arg.Category,
		arg.Status,
		arg.UserName,
		arg.Description,
	)
	return err
}

const listCategories = `-- name: ListCategories :many
SELECT category
FROM transactions
GROUP BY category
ORDER BY MIN(rowid)
`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type ExportLogRow struct {
	ID           int64
	Filename     string
	Transactions int64
	Columns      string
	Bytes        int64
	Destination  string
	CreatedAt    string
}

const createExportLog = `-- name: CreateExportLog :exec
INSERT INTO export_log (filename, transactions, columns, bytes, destination, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateExportLog(ctx context.Context, arg ExportLogRow) error {
	_, err := q.db.ExecContext(ctx, createExportLog,
		arg.Filename,
		arg.Transactions,
		arg.Columns,
		arg.Bytes,
		arg.Destination,
		arg.CreatedAt,
	)
	return err
}

const listExportLog = `-- name: ListExportLog :many
SELECT id, filename, transactions, columns, bytes, destination, created_at
FROM export_log
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListExportLog(ctx context.Context, limit int64) ([]ExportLogRow, error) {
	rows, err := q.db.QueryContext(ctx, listExportLog, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExportLogRow
	for rows.Next() {
		var i ExportLogRow
		if err := rows.Scan(
			&i.ID,
			&i.Filename,
			&i.Transactions,
			&i.Columns,
			&i.Bytes,
			&i.Destination,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
