package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"findash/internal/core"
	"findash/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestParseTransactions(t *testing.T) {
	values := [][]any{
		{"id", "date", "amount", "category", "status", "user", "description"},
		{"1", "2024-01-15", 2400.0, "Sales", "completed", "John Smith", "Product sales revenue"},
		{},
		{"", "", ""},
		{"2", "2024-01-14", "-350", "Marketing", "pending", "Jane Doe", "Google Ads campaign"},
		{"3", "not a date", "1", "Office", "failed", "X", "Y"},
		{"1", "2024-01-10", "5", "Office", "failed", "X", "dup"},
	}

	txs, errs := parseTransactions(values)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Amount.Cents != 240000 || txs[1].Amount.Cents != -35000 {
		t.Fatalf("unexpected amounts: %d %d", txs[0].Amount.Cents, txs[1].Amount.Cents)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 row errors, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "row 7") || !strings.Contains(errs[1].Error(), "duplicate id") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestUniqueTitle(t *testing.T) {
	existing := []string{"Transactions", "transactions_2024-01-20", "transactions_2024-01-20 (2)"}
	if got := uniqueTitle("transactions_2024-01-21", existing); got != "transactions_2024-01-21" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := uniqueTitle("transactions_2024-01-20", existing); got != "transactions_2024-01-20 (3)" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's"); got != "'Bob''s'" {
		t.Fatalf("unexpected quoting %q", got)
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := newSheetsService(context.Background(), "", "")
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestClientWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.ListTransactions(context.Background()); err == nil {
		t.Fatal("expected error with nil service")
	}
	if err := c.Save(context.Background(), export.Document{Filename: "x.csv"}); err == nil {
		t.Fatal("expected error with nil service")
	}
}

// fakeSheets emulates the handful of Sheets API endpoints the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	titles  []string
	added   []string
	written map[string][][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		values := f.rows
		if strings.HasSuffix(path, "D2:D") {
			values = make([][]any, 0, len(f.rows))
			for _, row := range f.rows {
				values = append(values, []any{row[3]})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	case r.Method == http.MethodGet:
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = io.WriteString(w, "{}")
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr gsheet.ValueRange
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &vr)
		if f.written == nil {
			f.written = map[string][][]any{}
		}
		f.written[path[strings.Index(path, "/values/")+len("/values/"):]] = vr.Values
		_, _ = io.WriteString(w, "{}")
	default:
		http.Error(w, "unexpected request", http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return NewWithService(svc, "sheet-id", "Transactions")
}

func TestClientListTransactionsAndCategories(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{
		{"1", "2024-01-15", "2400", "Sales", "completed", "John Smith", "Product sales revenue"},
		{"4", "2024-01-12", "-85.50", "Office", "failed", "Sarah Wilson", "Office supplies"},
		{"5", "2024-01-11", "3200", "Sales", "completed", "David Brown", "Enterprise client payment"},
	}}
	c := newFakeClient(t, fake)

	txs, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 || txs[1].Status != core.StatusFailed || txs[1].Amount.Cents != -8550 {
		t.Fatalf("unexpected transactions: %+v", txs)
	}

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "Sales" || cats[1] != "Office" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestClientSaveAddsTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Transactions", "transactions_2024-01-20"}}
	c := newFakeClient(t, fake)

	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	doc, err := export.GenerateCSV(core.MockTransactions()[:2], core.SelectionOf(core.ColumnDate, core.ColumnAmount), export.Options{}, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Save(context.Background(), doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(fake.added) != 1 || fake.added[0] != "transactions_2024-01-20 (2)" {
		t.Fatalf("unexpected added tabs: %v", fake.added)
	}
	if len(fake.written) != 1 {
		t.Fatalf("expected one write, got %v", fake.written)
	}
	for _, values := range fake.written {
		if len(values) != 3 {
			t.Fatalf("expected header plus 2 rows, got %v", values)
		}
		if values[0][0] != "Date" || values[2][1] != "-350.00" {
			t.Fatalf("unexpected values: %v", values)
		}
	}
}

func TestClientPlaceReturnsTabTitle(t *testing.T) {
	fake := &fakeSheets{titles: []string{"transactions_2024-01-20", "transactions_2024-01-20 (2)"}}
	c := newFakeClient(t, fake)

	doc := export.Document{Filename: "transactions_2024-01-20.csv", Header: []string{"User"}}
	title, err := c.Place(context.Background(), doc)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if title != "transactions_2024-01-20 (3)" {
		t.Fatalf("unexpected title %q", title)
	}
}
