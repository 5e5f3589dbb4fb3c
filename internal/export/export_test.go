package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/core"
)

var fixedNow = time.Date(2024, 1, 20, 23, 30, 0, 0, time.UTC)

type recordingSink struct {
	docs []Document
	err  error
}

func (s *recordingSink) Save(_ context.Context, doc Document) error {
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, doc)
	return nil
}

type recordingRecorder struct {
	recs []Record
	err  error
}

func (r *recordingRecorder) RecordExport(_ context.Context, rec Record) error {
	r.recs = append(r.recs, rec)
	return r.err
}

func TestGenerateCSVAllColumns(t *testing.T) {
	doc, err := GenerateCSV(core.MockTransactions(), core.AllColumns(), Options{}, fixedNow)
	require.NoError(t, err)

	lines := strings.Split(string(doc.Content), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, `"Date","Amount","Category","Status","User","Description"`, lines[0])
	assert.Equal(t, `"2024-01-15","2400.00","Sales","completed","John Smith","Product sales revenue"`, lines[1])
	assert.Equal(t, `"2024-01-14","-350.00","Marketing","pending","Jane Doe","Google Ads campaign"`, lines[2])

	for i, line := range lines {
		cells := strings.Split(line, ",")
		assert.Len(t, cells, 6, "line %d", i)
		for _, c := range cells {
			assert.True(t, strings.HasPrefix(c, `"`) && strings.HasSuffix(c, `"`), "line %d cell %s", i, c)
		}
	}

	assert.False(t, bytes.HasSuffix(doc.Content, []byte("\n")), "no trailing newline")
	assert.Equal(t, 6, doc.Columns)
	assert.Equal(t, 6, doc.Records)
	assert.Equal(t, "transactions_2024-01-20.csv", doc.Filename)
}

func TestGenerateCSVKeepsDisplayOrder(t *testing.T) {
	sel := core.SelectionOf(core.ColumnDescription, core.ColumnAmount)
	txs := core.MockTransactions()[1:2]

	doc, err := GenerateCSV(txs, sel, Options{}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "\"Amount\",\"Description\"\n\"-350.00\",\"Google Ads campaign\"", string(doc.Content))
	assert.Equal(t, []string{"Amount", "Description"}, doc.Header)
	assert.Equal(t, [][]string{{"-350.00", "Google Ads campaign"}}, doc.Rows)
}

func TestGenerateCSVNoColumns(t *testing.T) {
	_, err := GenerateCSV(core.MockTransactions(), core.NoColumns(), Options{}, fixedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoColumnsSelected)
	assert.True(t, IsValidation(err))
}

func TestGenerateCSVEmptyInput(t *testing.T) {
	doc, err := GenerateCSV(nil, core.SelectionOf(core.ColumnDate), Options{}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, `"Date"`, string(doc.Content))
	assert.Zero(t, doc.Records)
}

func TestGenerateCSVQuotes(t *testing.T) {
	txs := []core.Transaction{{ID: "q", Date: core.NewDate(2024, 2, 1), Status: core.StatusPending, Description: `say "hi"`}}
	sel := core.SelectionOf(core.ColumnDescription)

	doc, err := GenerateCSV(txs, sel, Options{}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "\"Description\"\n\"say \"hi\"\"", string(doc.Content))

	doc, err = GenerateCSV(txs, sel, Options{EscapeQuotes: true}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "\"Description\"\n\"say \"\"hi\"\"\"", string(doc.Content))
}

func TestGenerateCSVDateLayout(t *testing.T) {
	txs := core.MockTransactions()[:1]
	doc, err := GenerateCSV(txs, core.SelectionOf(core.ColumnDate), Options{DateLayout: "1/2/2006"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1/15/2024"}}, doc.Rows)
}

func TestFilenameUsesUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 3, 1, 5, 0, 0, 0, loc)
	assert.Equal(t, "transactions_2024-02-29.csv", Filename(now))
}

func TestExporterNoColumnsNeverWrites(t *testing.T) {
	sink := &recordingSink{}
	rec := &recordingRecorder{}
	e := NewExporter(sink, Options{Delay: time.Hour}, WithRecorder(rec))

	_, err := e.Export(context.Background(), core.MockTransactions(), core.NoColumns())
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "columns", ve.Field)
	assert.Empty(t, sink.docs)
	assert.Empty(t, rec.recs)
}

func TestExporterSuccess(t *testing.T) {
	sink := &recordingSink{}
	rec := &recordingRecorder{}
	e := NewExporter(sink, Options{}, WithRecorder(rec), WithClock(func() time.Time { return fixedNow }), WithDestination("file"))

	sel := core.SelectionOf(core.ColumnDate, core.ColumnAmount, core.ColumnStatus)
	res, err := e.Export(context.Background(), core.MockTransactions(), sel)
	require.NoError(t, err)

	assert.Equal(t, "transactions_2024-01-20.csv", res.Filename)
	assert.Equal(t, 6, res.Transactions)
	assert.Equal(t, 3, res.Columns)
	assert.Equal(t, "Exported 6 transactions with 3 columns.", res.Message)
	require.Len(t, sink.docs, 1)
	assert.Equal(t, len(sink.docs[0].Content), res.Bytes)

	require.Len(t, rec.recs, 1)
	assert.Equal(t, []string{"Date", "Amount", "Status"}, rec.recs[0].Columns)
	assert.Equal(t, "file", rec.recs[0].Destination)
}

func TestExporterSinkFailure(t *testing.T) {
	cause := errors.New("disk full")
	e := NewExporter(&recordingSink{err: cause}, Options{})

	_, err := e.Export(context.Background(), core.MockTransactions(), core.AllColumns())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportFailed)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsValidation(err))
}

func TestExporterRecorderFailureIsNotFatal(t *testing.T) {
	sink := &recordingSink{}
	e := NewExporter(sink, Options{}, WithRecorder(&recordingRecorder{err: errors.New("db locked")}))

	_, err := e.Export(context.Background(), core.MockTransactions(), core.AllColumns())
	require.NoError(t, err)
	assert.Len(t, sink.docs, 1)
}

func TestExporterDelayHonoursContext(t *testing.T) {
	sink := &recordingSink{}
	e := NewExporter(sink, Options{Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Export(ctx, core.MockTransactions(), core.AllColumns())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.docs)
}

func TestExporterDelayElapses(t *testing.T) {
	sink := &recordingSink{}
	e := NewExporter(sink, Options{Delay: 10 * time.Millisecond})

	start := time.Now()
	_, err := e.Export(context.Background(), core.MockTransactions(), core.AllColumns())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sink := NewFileSink(dir)
	e := NewExporter(sink, Options{}, WithClock(func() time.Time { return fixedNow }))

	_, err := e.Export(context.Background(), core.MockTransactions(), core.AllColumns())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "transactions_2024-01-20.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 7)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileSinkKeepsEarlierExports(t *testing.T) {
	dir := t.TempDir()
	rec := &recordingRecorder{}
	e := NewExporter(NewFileSink(dir), Options{},
		WithClock(func() time.Time { return fixedNow }),
		WithRecorder(rec))

	first, err := e.Export(context.Background(), core.MockTransactions(), core.SelectionOf(core.ColumnUser))
	require.NoError(t, err)
	second, err := e.Export(context.Background(), core.MockTransactions()[:1], core.SelectionOf(core.ColumnUser))
	require.NoError(t, err)
	third, err := e.Export(context.Background(), core.MockTransactions()[:2], core.SelectionOf(core.ColumnUser))
	require.NoError(t, err)

	assert.Equal(t, "transactions_2024-01-20.csv", first.Filename)
	assert.Equal(t, "transactions_2024-01-20_2.csv", second.Filename)
	assert.Equal(t, "transactions_2024-01-20_3.csv", third.Filename)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	data, err := os.ReadFile(filepath.Join(dir, "transactions_2024-01-20.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 7, "first export is untouched")
	data, err = os.ReadFile(filepath.Join(dir, "transactions_2024-01-20_2.csv"))
	require.NoError(t, err)
	assert.Equal(t, "\"User\"\n\"John Smith\"", string(data))

	require.Len(t, rec.recs, 3)
	assert.Equal(t, []string{
		"transactions_2024-01-20.csv",
		"transactions_2024-01-20_2.csv",
		"transactions_2024-01-20_3.csv",
	}, []string{rec.recs[0].Filename, rec.recs[1].Filename, rec.recs[2].Filename})
}

func TestNumberedName(t *testing.T) {
	assert.Equal(t, "a.csv", numberedName("a.csv", 1))
	assert.Equal(t, "a_4.csv", numberedName("a.csv", 4))
	assert.Equal(t, "noext_2", numberedName("noext", 2))
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(NewWriterSink(&buf), Options{})

	_, err := e.Export(context.Background(), core.MockTransactions()[:1], core.SelectionOf(core.ColumnUser))
	require.NoError(t, err)
	assert.Equal(t, "\"User\"\n\"John Smith\"", buf.String())
}
