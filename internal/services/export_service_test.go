package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/ledger"
	"findash/internal/source/memory"
)

type fakePublisher struct {
	msgs []*amqp.ExportRequestMessage
	err  error
}

func (p *fakePublisher) PublishExportRequest(_ context.Context, msg *amqp.ExportRequestMessage) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type failingLister struct{}

func (failingLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("source down")
}

var fixedClock = export.WithClock(func() time.Time { return time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC) })

func TestExportNowUsesFilteredSortedSet(t *testing.T) {
	store := memory.NewMock()
	svc := NewExportService(store, store, nil, export.Options{}, fixedClock)

	q := ledger.DefaultQuery()
	q.Category = "Sales"
	q.Page = 2 // pagination never limits exports

	var buf bytes.Buffer
	res, err := svc.ExportNow(context.Background(), q, core.SelectionOf(core.ColumnUser), export.NewWriterSink(&buf), "download")
	require.NoError(t, err)

	assert.Equal(t, "\"User\"\n\"John Smith\"\n\"David Brown\"", buf.String())
	assert.Equal(t, 2, res.Transactions)
	assert.Equal(t, "Exported 2 transactions with 1 columns.", res.Message)

	recs, err := store.ListExports(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "download", recs[0].Destination)
	assert.Equal(t, "transactions_2024-01-20.csv", recs[0].Filename)
}

func TestExportNowNoColumnsSkipsLoad(t *testing.T) {
	svc := NewExportService(failingLister{}, nil, nil, export.Options{})
	_, err := svc.ExportNow(context.Background(), ledger.DefaultQuery(), core.NoColumns(), export.NewWriterSink(&bytes.Buffer{}), "download")
	assert.ErrorIs(t, err, export.ErrNoColumnsSelected)
}

func TestExportNowSourceFailure(t *testing.T) {
	svc := NewExportService(failingLister{}, nil, nil, export.Options{})
	_, err := svc.ExportNow(context.Background(), ledger.DefaultQuery(), core.AllColumns(), export.NewWriterSink(&bytes.Buffer{}), "download")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source down")
}

func TestRequestExport(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExportService(memory.NewMock(), nil, pub, export.Options{})
	require.True(t, svc.AsyncEnabled())

	q := ledger.DefaultQuery().ToggleSort(core.ColumnAmount)
	q.Status = "failed"
	sel := core.SelectionOf(core.ColumnDescription, core.ColumnDate)

	msg, err := svc.RequestExport(context.Background(), "req_1", q, sel)
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "req_1", msg.RequestID)
	assert.Equal(t, []string{"date", "description"}, msg.Columns)
	assert.Equal(t, "amount", msg.SortField)
	assert.Equal(t, "desc", msg.SortDirection)

	gotQ, gotSel, err := DecodeExportRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, "failed", gotQ.Status)
	assert.Equal(t, core.ColumnAmount, gotQ.SortField)
	assert.Equal(t, ledger.Desc, gotQ.SortDirection)
	assert.Equal(t, sel.Selected(), gotSel.Selected())
}

func TestRequestExportErrors(t *testing.T) {
	svc := NewExportService(memory.NewMock(), nil, nil, export.Options{})
	assert.False(t, svc.AsyncEnabled())

	_, err := svc.RequestExport(context.Background(), "req_1", ledger.DefaultQuery(), core.AllColumns())
	assert.ErrorIs(t, err, ErrAsyncUnavailable)

	_, err = svc.RequestExport(context.Background(), "req_1", ledger.DefaultQuery(), core.NoColumns())
	assert.ErrorIs(t, err, export.ErrNoColumnsSelected)

	pub := &fakePublisher{err: errors.New("broker down")}
	svc = NewExportService(memory.NewMock(), nil, pub, export.Options{})
	_, err = svc.RequestExport(context.Background(), "req_1", ledger.DefaultQuery(), core.AllColumns())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "broker down"))
}

func TestDecodeExportRequestRejectsUnknownNames(t *testing.T) {
	msg := amqp.NewExportRequestMessage("req_1")
	msg.Columns = []string{"date", "balance"}
	_, _, err := DecodeExportRequest(msg)
	assert.Error(t, err)

	msg.Columns = []string{"date"}
	msg.SortField = "balance"
	_, _, err = DecodeExportRequest(msg)
	assert.Error(t, err)

	msg.SortField = ""
	q, sel, err := DecodeExportRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultQuery().SortField, q.SortField)
	assert.Equal(t, 1, sel.Count())
}
