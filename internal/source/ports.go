// Package source defines the outbound ports the dashboard reads transactions
// through, and the row layout shared by the tabular adapters.
package source

import (
	"context"

	"findash/internal/core"
	"findash/internal/export"
)

// Ports for outbound adapters.
type (
	// TransactionLister returns the full transaction set. Callers treat it as
	// a read-only snapshot.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	CategoryReader interface {
		Categories(ctx context.Context) ([]string, error)
	}

	// ExportLog lists recent export records, newest first.
	ExportLog interface {
		ListExports(ctx context.Context, limit int) ([]export.Record, error)
	}

	// Store is what a backend provides to the HTTP server and the worker.
	Store interface {
		TransactionLister
		CategoryReader
		export.Recorder
		ExportLog
	}
)
