package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/source"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads transactions from one tab of a spreadsheet and writes exports
// into new tabs of the same spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ source.TransactionLister = (*Client)(nil)
	_ source.CategoryReader    = (*Client)(nil)
	_ export.Sink              = (*Client)(nil)
)

// Config selects the spreadsheet and the service account credentials.
// CredentialsJSON wins over CredentialsFile; when both are empty
// GOOGLE_APPLICATION_CREDENTIALS is used.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Transactions"
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, credsJSON, credsFile string) (*gsheet.Service, error) {
	credsJSON = strings.TrimSpace(credsJSON)
	credsFile = strings.TrimSpace(credsFile)
	if credsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case credsJSON != "":
		credentialsJSON = []byte(credsJSON)
	case credsFile != "":
		credentialsJSON, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// ListTransactions reads <sheet>!A2:G. Rows that fail to parse are logged and
// skipped so one bad cell does not blank the dashboard.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:G", quoteSheet(c.sheetName))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	txs, rowErrs := parseTransactions(resp.Values)
	for _, e := range rowErrs {
		slog.WarnContext(ctx, "Skipping invalid transaction row", "sheet", c.sheetName, "error", e)
	}
	return txs, nil
}

// Categories returns the distinct categories of column D in first-seen order.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	cats, err := c.readCol(ctx, c.sheetName, "D2:D")
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	if len(cats) == 0 {
		return append([]string(nil), core.KnownCategories...), nil
	}
	return cats, nil
}

func (c *Client) readCol(ctx context.Context, sheetName, col string) ([]string, error) {
	rng := fmt.Sprintf("%s!%s", quoteSheet(sheetName), col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func (c *Client) Save(ctx context.Context, doc export.Document) error {
	_, err := c.Place(ctx, doc)
	return err
}

// Place writes the export into a new tab named after the file and returns
// the tab title. An existing tab with the same name gets a numeric suffix
// instead of being overwritten.
func (c *Client) Place(ctx context.Context, doc export.Document) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read spreadsheet: %w", err)
	}
	existing := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing = append(existing, sh.Properties.Title)
		}
	}
	title := uniqueTitle(strings.TrimSuffix(doc.Filename, ".csv"), existing)

	add := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, add).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("add sheet %s: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: documentValues(doc)}
	rng := fmt.Sprintf("%s!A1", quoteSheet(title))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write %s: %w", rng, err)
	}
	return title, nil
}

func documentValues(doc export.Document) [][]any {
	values := make([][]any, 0, len(doc.Rows)+1)
	values = append(values, toAny(doc.Header))
	for _, row := range doc.Rows {
		values = append(values, toAny(row))
	}
	return values
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func uniqueTitle(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t] = true
	}
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// quoteSheet quotes a tab name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
