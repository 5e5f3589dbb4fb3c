package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"findash/internal/export"
)

// downloadSink saves an export by streaming it as an attachment.
type downloadSink struct {
	w       http.ResponseWriter
	written bool
}

func newDownloadSink(w http.ResponseWriter) *downloadSink {
	return &downloadSink{w: w}
}

func (d *downloadSink) Save(ctx context.Context, doc export.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h := d.w.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	h.Set("Content-Length", strconv.Itoa(len(doc.Content)))
	h.Set("Cache-Control", "no-store")
	h.Set("X-Export-Message", export.Message(doc.Records, doc.Columns))
	NewHTMXResponse().
		TriggerExportCompleted(doc.Filename, doc.Records, doc.Columns).
		TriggerSuccessNotification(export.Message(doc.Records, doc.Columns)).
		WriteHeaders(d.w)

	d.written = true
	d.w.WriteHeader(http.StatusOK)
	if _, err := d.w.Write(doc.Content); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}
