// Package http provides HTTP server and handler implementations.
//
// This file turns request parameters into the caller-owned table and export
// state, and back into URLs.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"findash/internal/core"
	"findash/internal/ledger"
)

// Request parameter names shared by the templates.
const (
	ParamSearch     = "q"
	ParamStatus     = "status"
	ParamCategory   = "category"
	ParamSort       = "sort"
	ParamDir        = "dir"
	ParamPage       = "page"
	ParamToggleSort = "toggle_sort"
	ParamColumn     = "col"
	ParamSelection  = "sel"
	ParamToggle     = "toggle"
	ParamToggleAll  = "toggle_all"
	ParamDest       = "dest"
)

// ParseQuery reads the table state. Unknown statuses and sort fields fall back
// to their defaults; a non-numeric page is page 1. A toggle_sort parameter is
// applied last, as a header click on the parsed state.
func ParseQuery(v url.Values, pageSize int) ledger.Query {
	q := ledger.DefaultQuery()
	if pageSize > 0 {
		q.PageSize = pageSize
	}

	q.Search = stripControl(v.Get(ParamSearch))

	if st := strings.ToLower(strings.TrimSpace(v.Get(ParamStatus))); st != "" {
		if _, err := core.ParseStatus(st); err == nil || st == ledger.All {
			q.Status = st
		}
	}
	if cat := sanitizeInput(v.Get(ParamCategory)); cat != "" {
		q.Category = cat
	}
	if c, ok := core.ParseColumn(v.Get(ParamSort)); ok {
		q.SortField = c
	}
	if d := strings.TrimSpace(v.Get(ParamDir)); d != "" {
		q.SortDirection = ledger.ParseDirection(d)
	}
	if p := strings.TrimSpace(v.Get(ParamPage)); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			q.Page = n
		}
	}
	if c, ok := core.ParseColumn(v.Get(ParamToggleSort)); ok {
		q = q.ToggleSort(c)
	}
	return q
}

// EncodeQuery is the inverse of ParseQuery. Defaults are omitted.
func EncodeQuery(q ledger.Query) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if q.Status != "" && q.Status != ledger.All {
		v.Set(ParamStatus, q.Status)
	}
	if q.Category != "" && q.Category != ledger.All {
		v.Set(ParamCategory, q.Category)
	}
	v.Set(ParamSort, string(q.SortField))
	v.Set(ParamDir, string(q.SortDirection))
	if q.Page != 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	return v
}

// ParseSelection reads the export column selection. Without the sel marker
// every column is selected; with it, exactly the listed col values are.
func ParseSelection(v url.Values) core.Selection {
	if !v.Has(ParamSelection) {
		return core.AllColumns()
	}
	var cols []core.Column
	for _, raw := range v[ParamColumn] {
		if c, ok := core.ParseColumn(raw); ok {
			cols = append(cols, c)
		}
	}
	return core.SelectionOf(cols...)
}

// ApplySelectionToggle applies a select-all click or a single checkbox click.
func ApplySelectionToggle(sel core.Selection, v url.Values) core.Selection {
	if v.Get(ParamToggleAll) != "" {
		return sel.ToggleAll()
	}
	if c, ok := core.ParseColumn(v.Get(ParamToggle)); ok {
		return sel.Toggle(c)
	}
	return sel
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, capped at maxBytes.
func NewRequestBodyParser(r *http.Request, maxBytes int64) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Values flattens the parsed body into url.Values so the query and selection
// parsers work on either encoding. JSON arrays become repeated values.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		if p.formData == nil {
			return url.Values{}
		}
		return p.formData
	}
	v := url.Values{}
	for key, val := range p.jsonData {
		switch x := val.(type) {
		case []any:
			for _, item := range x {
				v.Add(key, stringValue(item))
			}
		default:
			v.Set(key, stringValue(x))
		}
	}
	return v
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
