package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/ledger"
	"findash/internal/log"
	"findash/internal/middleware/trace"
	"findash/internal/services"
)

const (
	destDownload = "download"
	destSheet    = "sheet"

	defaultExportLogLimit = 20
	maxExportLogLimit     = 100
)

type hiddenField struct {
	Name  string
	Value string
}

type columnOption struct {
	Column      core.Column
	Label       string
	Description string
	Checked     bool
}

type exportDialogView struct {
	QueryFields  []hiddenField
	Count        int
	Columns      []columnOption
	Selected     int
	Total        int
	AllSelected  bool
	None         bool
	Preview      string
	SheetEnabled bool
	AsyncEnabled bool
	Error        string
}

// queryFields turns the table state into hidden inputs, sorted for stable
// markup.
func queryFields(q ledger.Query) []hiddenField {
	v := EncodeQuery(q)
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []hiddenField
	for _, k := range keys {
		for _, val := range v[k] {
			out = append(out, hiddenField{Name: k, Value: val})
		}
	}
	return out
}

func (s *Server) buildExportDialog(r *http.Request, q ledger.Query, sel core.Selection) (exportDialogView, error) {
	txs, err := s.snapshot(r.Context())
	if err != nil {
		return exportDialogView{}, err
	}

	view := exportDialogView{
		QueryFields:  queryFields(q),
		Count:        len(ledger.Filter(txs, q)),
		Selected:     sel.Count(),
		Total:        len(core.Columns),
		AllSelected:  sel.AllSelected(),
		None:         sel.None(),
		Preview:      strings.Join(sel.Labels(), ", "),
		SheetEnabled: s.sheet != nil,
		AsyncEnabled: s.exports.AsyncEnabled(),
	}
	for _, c := range core.Columns {
		view.Columns = append(view.Columns, columnOption{
			Column:      c,
			Label:       c.Label(),
			Description: c.Description(),
			Checked:     sel.Includes(c),
		})
	}
	return view, nil
}

// handleExportDialog opens the dialog with every column selected.
func (s *Server) handleExportDialog(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query(), s.pageSize)
	view, err := s.buildExportDialog(r, q, ParseSelection(r.URL.Query()))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Load transactions failed", log.FieldError, err)
		InternalServerError("Could not load transactions.").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "export_dialog", view)
}

// handleToggleColumns applies one checkbox or select-all click and re-renders
// the dialog.
func (s *Server) handleToggleColumns(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	q := ParseQuery(r.PostForm, s.pageSize)
	sel := ApplySelectionToggle(ParseSelection(r.PostForm), r.PostForm)

	view, err := s.buildExportDialog(r, q, sel)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Load transactions failed", log.FieldError, err)
		InternalServerError("Could not load transactions.").Write(w)
		return
	}

	NewHTMXResponse().TriggerSelectionChanged(view.Selected, view.Total).WriteHeaders(w)
	s.render(w, r, http.StatusOK, "export_dialog", view)
}

// handleExport exports the filtered, sorted set (all pages) with the
// selected columns, as a download or into a new spreadsheet tab.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)
	q := ParseQuery(r.PostForm, s.pageSize)
	sel := ParseSelection(r.PostForm)

	dest := r.PostForm.Get(ParamDest)
	if dest == "" {
		dest = destDownload
	}

	var (
		res      export.Result
		err      error
		download *downloadSink
	)
	switch dest {
	case destDownload:
		download = newDownloadSink(w)
		res, err = s.exports.ExportNow(ctx, q, sel, download, destDownload)
	case destSheet:
		if s.sheet == nil {
			BadRequestError("Spreadsheet export is not configured.").Write(w)
			return
		}
		res, err = s.exports.ExportNow(ctx, q, sel, s.sheet, destSheet)
	default:
		BadRequestError(fmt.Sprintf("Unknown export destination %q.", dest)).Write(w)
		return
	}

	if err != nil {
		var verr *export.ValidationError
		switch {
		case errors.As(err, &verr):
			logger.WarnContext(ctx, "Export rejected", log.FieldError, err)
			UnprocessableEntityError(verr.Message).
				TriggerErrorNotification("Please select at least one column to export.").
				Write(w)
		case download != nil && download.written:
			// Headers are gone; the client sees a truncated download.
			s.appMetrics.exportErrors.Add(1)
			logger.ErrorContext(ctx, "Export download interrupted", log.FieldError, err)
		default:
			s.appMetrics.exportErrors.Add(1)
			logger.ErrorContext(ctx, "Export failed", log.FieldError, err)
			InternalServerError("Export failed. Please try again.").
				TriggerErrorNotification("Export failed. Please try again.").
				Write(w)
		}
		return
	}

	s.appMetrics.exports.Add(1)
	if dest == destSheet {
		NewHTMXResponse().
			TriggerExportCompleted(res.Filename, res.Transactions, res.Columns).
			TriggerSuccessNotification(res.Message).
			BodyHTML(`<div class="success">` + template.HTMLEscapeString(res.Message) + `</div>`).
			Write(w)
	}
}

type exportRequestResponse struct {
	RequestID string   `json:"request_id"`
	Status    string   `json:"status"`
	Columns   []string `json:"columns"`
	Message   string   `json:"message"`
}

// handleRequestExport queues an export for the worker. Accepts form or JSON.
func (s *Server) handleRequestExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	p := NewRequestBodyParser(r, maxBodyBytes)
	if err := p.Parse(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	values := p.Values()
	q := ParseQuery(values, s.pageSize)
	sel := ParseSelection(values)

	requestID := trace.GetRequestID(ctx)
	if requestID == "" {
		requestID = trace.GenerateRequestID()
	}

	msg, err := s.exports.RequestExport(ctx, requestID, q, sel)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAsyncUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		case export.IsValidation(err):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			logger.ErrorContext(ctx, "Queue export request failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "export queue unavailable"})
		}
		return
	}

	s.appMetrics.asyncRequests.Add(1)
	NewHTMXResponse().TriggerSuccessNotification("Export queued.").WriteHeaders(w)
	writeJSON(w, http.StatusAccepted, exportRequestResponse{
		RequestID: msg.RequestID,
		Status:    "queued",
		Columns:   msg.Columns,
		Message:   "Export queued.",
	})
}

// handleAPIExports lists recent exports, newest first.
func (s *Server) handleAPIExports(w http.ResponseWriter, r *http.Request) {
	limit := defaultExportLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxExportLogLimit)
	}

	recs, err := s.store.ListExports(r.Context(), limit)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List exports failed", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list exports"})
		return
	}
	if recs == nil {
		recs = []export.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": recs})
}
