package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/ledger"
	"findash/internal/source"
)

// ErrAsyncUnavailable is returned by RequestExport when no broker is configured.
var ErrAsyncUnavailable = errors.New("async export is not configured")

// Publisher sends export requests to the worker queue.
type Publisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

// ExportService orchestrates exports: synchronously through a sink, or by
// handing the request to the worker over AMQP.
type ExportService struct {
	source       source.TransactionLister
	recorder     export.Recorder
	publisher    Publisher
	opts         export.Options
	exporterOpts []export.ExporterOption
}

func NewExportService(src source.TransactionLister, recorder export.Recorder, publisher Publisher, opts export.Options, exporterOpts ...export.ExporterOption) *ExportService {
	return &ExportService{
		source:       src,
		recorder:     recorder,
		publisher:    publisher,
		opts:         opts,
		exporterOpts: exporterOpts,
	}
}

// AsyncEnabled reports whether RequestExport can succeed.
func (s *ExportService) AsyncEnabled() bool {
	return s.publisher != nil
}

// ExportNow exports every transaction matching q, in q's sort order, to sink.
// Pagination is ignored. The selection is checked before any data is loaded.
func (s *ExportService) ExportNow(ctx context.Context, q ledger.Query, sel core.Selection, sink export.Sink, destination string) (export.Result, error) {
	if sel.None() {
		return export.Result{}, export.ErrNoColumnsSelected
	}

	txs, err := s.source.ListTransactions(ctx)
	if err != nil {
		return export.Result{}, fmt.Errorf("load transactions: %w", err)
	}
	matched := ledger.Select(txs, q)

	opts := []export.ExporterOption{export.WithDestination(destination)}
	if s.recorder != nil {
		opts = append(opts, export.WithRecorder(s.recorder))
	}
	opts = append(opts, s.exporterOpts...)

	return export.NewExporter(sink, s.opts, opts...).Export(ctx, matched, sel)
}

// RequestExport publishes an export request for the worker.
func (s *ExportService) RequestExport(ctx context.Context, requestID string, q ledger.Query, sel core.Selection) (*amqp.ExportRequestMessage, error) {
	if sel.None() {
		return nil, export.ErrNoColumnsSelected
	}
	if s.publisher == nil {
		return nil, ErrAsyncUnavailable
	}

	msg := amqp.NewExportRequestMessage(requestID)
	msg.Search = q.Search
	msg.Status = q.Status
	msg.Category = q.Category
	msg.SortField = string(q.SortField)
	msg.SortDirection = string(q.SortDirection)
	for _, c := range sel.Selected() {
		msg.Columns = append(msg.Columns, string(c))
	}

	if err := s.publisher.PublishExportRequest(ctx, msg); err != nil {
		return nil, fmt.Errorf("publish export request: %w", err)
	}

	slog.InfoContext(ctx, "Export request queued", "request_id", requestID, "columns", len(msg.Columns))
	return msg, nil
}

// DecodeExportRequest rebuilds the query and selection carried by msg.
// Unknown columns are an error.
func DecodeExportRequest(msg *amqp.ExportRequestMessage) (ledger.Query, core.Selection, error) {
	q := ledger.DefaultQuery()
	q.Search = msg.Search
	if msg.Status != "" {
		q.Status = msg.Status
	}
	if msg.Category != "" {
		q.Category = msg.Category
	}
	if msg.SortField != "" {
		field, ok := core.ParseColumn(msg.SortField)
		if !ok {
			return ledger.Query{}, nil, fmt.Errorf("unknown sort field %q", msg.SortField)
		}
		q.SortField = field
	}
	if msg.SortDirection != "" {
		q.SortDirection = ledger.ParseDirection(msg.SortDirection)
	}

	cols := make([]core.Column, 0, len(msg.Columns))
	for _, name := range msg.Columns {
		c, ok := core.ParseColumn(name)
		if !ok {
			return ledger.Query{}, nil, fmt.Errorf("unknown column %q", name)
		}
		cols = append(cols, c)
	}
	return q, core.SelectionOf(cols...), nil
}
