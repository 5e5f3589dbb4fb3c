package http

import (
	"net/http"

	"findash/internal/core"
	"findash/internal/ledger"
	"findash/internal/log"
)

type sortHeader struct {
	Column    core.Column
	Label     string
	Active    bool
	Direction ledger.Direction
	URL       string
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type tableView struct {
	Query      ledger.Query
	Result     ledger.Result
	Headers    []sortHeader
	Pages      []pageLink
	PrevURL    string
	NextURL    string
	Categories []string
	Statuses   []core.Status
	ExportURL  string
	Error      string
}

func tableURL(q ledger.Query) string {
	return "/ui/transactions?" + EncodeQuery(q).Encode()
}

func (s *Server) buildTableView(r *http.Request) (tableView, error) {
	ctx := r.Context()
	q := ParseQuery(r.URL.Query(), s.pageSize)

	// The export covers every page of the current view.
	exportQuery := q
	exportQuery.Page = 1

	view := tableView{
		Query:     q,
		Statuses:  core.Statuses,
		ExportURL: "/ui/export?" + EncodeQuery(exportQuery).Encode(),
	}

	txs, err := s.snapshot(ctx)
	if err != nil {
		return view, err
	}
	cats, err := s.categories(ctx)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Category list failed, using defaults", log.FieldError, err)
		cats = core.KnownCategories
	}
	view.Categories = cats

	res := ledger.Run(txs, q)
	view.Result = res

	for _, c := range core.Columns {
		h := sortHeader{Column: c, Label: c.Label(), URL: tableURL(q.ToggleSort(c))}
		if c == q.SortField {
			h.Active = true
			h.Direction = q.SortDirection
		}
		view.Headers = append(view.Headers, h)
	}
	for _, n := range res.Pages() {
		p := q
		p.Page = n
		view.Pages = append(view.Pages, pageLink{Number: n, URL: tableURL(p), Current: n == q.Page})
	}
	if res.HasPrev {
		p := q
		p.Page = q.Page - 1
		view.PrevURL = tableURL(p)
	}
	if res.HasNext {
		p := q
		p.Page = q.Page + 1
		view.NextURL = tableURL(p)
	}

	log.FromContext(ctx).DebugContext(ctx, "Transactions query",
		log.NewFields().
			WithQuery(q.Search, q.Status, q.Category, string(q.SortField), string(q.SortDirection), q.Page).
			ToSlice()...)

	return view, nil
}

// handleTransactionsPage renders the full dashboard page.
func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildTableView(r)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Load transactions failed", log.FieldError, err)
		view.Error = "Could not load transactions."
		s.render(w, r, http.StatusBadGateway, "transactions.html", view)
		return
	}
	s.render(w, r, http.StatusOK, "transactions.html", view)
}

// handleTransactionsTable renders the table partial swapped in by filter,
// sort and pager controls.
func (s *Server) handleTransactionsTable(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildTableView(r)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Load transactions failed", log.FieldError, err)
		NewHTMXResponse().TriggerErrorNotification("Could not load transactions.").WriteHeaders(w)
		view.Error = "Could not load transactions."
		s.render(w, r, http.StatusBadGateway, "table", view)
		return
	}
	s.render(w, r, http.StatusOK, "table", view)
}

type apiTransaction struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	User        string `json:"user"`
	Description string `json:"description"`
}

type apiPage struct {
	Items       []apiTransaction `json:"items"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	TotalPages  int              `json:"total_pages"`
	FailedCount int              `json:"failed_count"`
}

// handleAPITransactions serves one page of the pipeline result as JSON.
func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query(), s.pageSize)
	txs, err := s.snapshot(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Load transactions failed", log.FieldError, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not load transactions"})
		return
	}

	res := ledger.Run(txs, q)
	out := apiPage{
		Items:       make([]apiTransaction, 0, len(res.Items)),
		Total:       res.Total,
		Page:        res.Page,
		PageSize:    res.PageSize,
		TotalPages:  res.TotalPages,
		FailedCount: res.FailedCount,
	}
	for _, tx := range res.Items {
		out.Items = append(out.Items, apiTransaction{
			ID:          tx.ID,
			Date:        tx.Date.String(),
			Amount:      tx.Amount.Fixed2(),
			AmountCents: tx.Amount.Cents,
			Category:    tx.Category,
			Status:      string(tx.Status),
			User:        tx.User,
			Description: tx.Description,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
