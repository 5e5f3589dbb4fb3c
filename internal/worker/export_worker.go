package worker

import (
	"context"
	"fmt"
	"log/slog"

	"findash/internal/amqp"
	"findash/internal/export"
	"findash/internal/services"
)

// ExportWorker writes queued export requests to the export directory.
type ExportWorker struct {
	service *services.ExportService
	sink    export.Sink
}

func NewExportWorker(service *services.ExportService, sink export.Sink) *ExportWorker {
	return &ExportWorker{
		service: service,
		sink:    sink,
	}
}

// HandleExportRequest processes a single export request from AMQP.
// Requests that can never succeed are wrapped in amqp.ErrPermanent so they
// are dropped instead of requeued.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	slog.InfoContext(ctx, "Processing export request",
		"request_id", msg.RequestID,
		"columns", len(msg.Columns))

	q, sel, err := services.DecodeExportRequest(msg)
	if err != nil {
		return fmt.Errorf("decode export request %s: %v: %w", msg.RequestID, err, amqp.ErrPermanent)
	}

	res, err := w.service.ExportNow(ctx, q, sel, w.sink, "file")
	if err != nil {
		if export.IsValidation(err) {
			return fmt.Errorf("export request %s: %v: %w", msg.RequestID, err, amqp.ErrPermanent)
		}
		return fmt.Errorf("export request %s: %w", msg.RequestID, err)
	}

	slog.InfoContext(ctx, "Export request completed",
		"request_id", msg.RequestID,
		"filename", res.Filename,
		"records", res.Transactions)
	return nil
}
