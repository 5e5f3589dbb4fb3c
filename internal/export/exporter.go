package export

import (
	"context"
	"fmt"
	"time"

	"findash/internal/core"
	"findash/internal/log"
)

// Sink is the file-save collaborator.
type Sink interface {
	Save(ctx context.Context, doc Document) error
}

// Placer is a Sink that may store a document under another name than
// doc.Filename. The exporter reports and records the returned name.
type Placer interface {
	Place(ctx context.Context, doc Document) (string, error)
}

// Record is one entry of the export audit log.
type Record struct {
	Filename     string    `json:"filename"`
	Transactions int       `json:"transactions"`
	Columns      []string  `json:"columns"`
	Bytes        int       `json:"bytes"`
	Destination  string    `json:"destination"`
	CreatedAt    time.Time `json:"created_at"`
}

// Recorder stores export audit records.
type Recorder interface {
	RecordExport(ctx context.Context, rec Record) error
}

// Result summarizes a completed export.
type Result struct {
	Filename     string `json:"filename"`
	Transactions int    `json:"transactions"`
	Columns      int    `json:"columns"`
	Bytes        int    `json:"bytes"`
	Message      string `json:"message"`
}

// Message is the success notification text.
func Message(transactions, columns int) string {
	return fmt.Sprintf("Exported %d transactions with %d columns.", transactions, columns)
}

type Exporter struct {
	sink        Sink
	recorder    Recorder
	opts        Options
	destination string
	now         func() time.Time
	logger      *log.Logger
}

type ExporterOption func(*Exporter)

// WithRecorder attaches an audit log. Recorder failures never fail the export.
func WithRecorder(r Recorder) ExporterOption {
	return func(e *Exporter) { e.recorder = r }
}

// WithClock replaces time.Now, used for the filename date.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = now }
}

// WithDestination labels audit records, e.g. "download" or "file".
func WithDestination(d string) ExporterOption {
	return func(e *Exporter) { e.destination = d }
}

func WithLogger(l *log.Logger) ExporterOption {
	return func(e *Exporter) { e.logger = l }
}

func NewExporter(sink Sink, opts Options, options ...ExporterOption) *Exporter {
	e := &Exporter{
		sink:        sink,
		opts:        opts,
		destination: "sink",
		now:         time.Now,
		logger:      log.New(log.DefaultConfig()).WithComponent(log.ComponentExport),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Export validates the selection, waits the configured delay, generates the
// CSV and saves it. Nothing reaches the sink when validation fails.
func (e *Exporter) Export(ctx context.Context, txs []core.Transaction, sel core.Selection) (Result, error) {
	if sel.None() {
		return Result{}, ErrNoColumnsSelected
	}

	if e.opts.Delay > 0 {
		t := time.NewTimer(e.opts.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Result{}, &ExportError{Filename: Filename(e.now()), Err: ctx.Err()}
		case <-t.C:
		}
	}

	doc, err := GenerateCSV(txs, sel, e.opts, e.now())
	if err != nil {
		return Result{}, err
	}

	name, err := e.save(ctx, doc)
	if err != nil {
		e.logger.ErrorContext(ctx, "Export failed", log.FieldFilename, doc.Filename, log.FieldError, err)
		return Result{}, &ExportError{Filename: doc.Filename, Err: err}
	}
	doc.Filename = name

	if e.recorder != nil {
		rec := Record{
			Filename:     doc.Filename,
			Transactions: doc.Records,
			Columns:      doc.Header,
			Bytes:        len(doc.Content),
			Destination:  e.destination,
			CreatedAt:    e.now().UTC(),
		}
		if err := e.recorder.RecordExport(ctx, rec); err != nil {
			e.logger.WarnContext(ctx, "Failed to record export", log.FieldFilename, doc.Filename, log.FieldError, err)
		}
	}

	log.NewStructuredLogger(e.logger).LogExportCompleted(ctx, doc.Filename, doc.Records, doc.Columns, len(doc.Content))

	return Result{
		Filename:     doc.Filename,
		Transactions: doc.Records,
		Columns:      doc.Columns,
		Bytes:        len(doc.Content),
		Message:      Message(doc.Records, doc.Columns),
	}, nil
}

func (e *Exporter) save(ctx context.Context, doc Document) (string, error) {
	if p, ok := e.sink.(Placer); ok {
		return p.Place(ctx, doc)
	}
	if err := e.sink.Save(ctx, doc); err != nil {
		return "", err
	}
	return doc.Filename, nil
}
