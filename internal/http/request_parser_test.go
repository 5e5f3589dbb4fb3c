package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/core"
	"findash/internal/ledger"
)

func TestParseQueryDefaults(t *testing.T) {
	q := ParseQuery(url.Values{}, 5)
	assert.Equal(t, ledger.DefaultQuery(), q)

	q = ParseQuery(url.Values{}, 20)
	assert.Equal(t, 20, q.PageSize)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		input url.Values
		check func(t *testing.T, q ledger.Query)
	}{
		{
			name:  "filters",
			input: url.Values{"q": {"Smith"}, "status": {"FAILED"}, "category": {" Office "}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, "Smith", q.Search)
				assert.Equal(t, "failed", q.Status)
				assert.Equal(t, "Office", q.Category)
			},
		},
		{
			name:  "search keeps spaces and drops control characters",
			input: url.Values{"q": {" revenue\x00 "}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, " revenue ", q.Search)
			},
		},
		{
			name:  "unknown status falls back to all",
			input: url.Values{"status": {"refunded"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, ledger.All, q.Status)
			},
		},
		{
			name:  "sort and direction",
			input: url.Values{"sort": {"amount"}, "dir": {"asc"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, core.ColumnAmount, q.SortField)
				assert.Equal(t, ledger.Asc, q.SortDirection)
			},
		},
		{
			name:  "unknown sort field keeps date",
			input: url.Values{"sort": {"balance"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, core.ColumnDate, q.SortField)
			},
		},
		{
			name:  "non-numeric page",
			input: url.Values{"page": {"two"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, 1, q.Page)
			},
		},
		{
			name:  "zero page is kept",
			input: url.Values{"page": {"0"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, 0, q.Page)
			},
		},
		{
			name:  "toggle same field flips and resets page",
			input: url.Values{"sort": {"date"}, "dir": {"desc"}, "page": {"2"}, "toggle_sort": {"date"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, core.ColumnDate, q.SortField)
				assert.Equal(t, ledger.Asc, q.SortDirection)
				assert.Equal(t, 1, q.Page)
			},
		},
		{
			name:  "toggle new field sorts descending",
			input: url.Values{"sort": {"date"}, "dir": {"asc"}, "toggle_sort": {"user"}},
			check: func(t *testing.T, q ledger.Query) {
				assert.Equal(t, core.ColumnUser, q.SortField)
				assert.Equal(t, ledger.Desc, q.SortDirection)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParseQuery(tt.input, 5))
		})
	}
}

func TestEncodeQueryRoundTrip(t *testing.T) {
	q := ledger.DefaultQuery()
	q.Search = "a&b"
	q.Status = "pending"
	q.Category = "Marketing"
	q.SortField = core.ColumnCategory
	q.SortDirection = ledger.Asc
	q.Page = 3

	assert.Equal(t, q, ParseQuery(EncodeQuery(q), ledger.DefaultPageSize))

	v := EncodeQuery(ledger.DefaultQuery())
	assert.False(t, v.Has(ParamStatus))
	assert.False(t, v.Has(ParamPage))
}

func TestParseSelection(t *testing.T) {
	assert.True(t, ParseSelection(url.Values{}).AllSelected(), "no marker means every column")

	sel := ParseSelection(url.Values{"sel": {"1"}})
	assert.True(t, sel.None(), "marker without columns means none")

	sel = ParseSelection(url.Values{"sel": {"1"}, "col": {"user", "date", "bogus"}})
	assert.Equal(t, []core.Column{core.ColumnDate, core.ColumnUser}, sel.Selected())
}

func TestApplySelectionToggle(t *testing.T) {
	four := core.SelectionOf(core.ColumnDate, core.ColumnAmount, core.ColumnUser, core.ColumnStatus)

	all := ApplySelectionToggle(four, url.Values{"toggle_all": {"1"}})
	assert.Equal(t, 6, all.Count())

	none := ApplySelectionToggle(all, url.Values{"toggle_all": {"1"}})
	assert.Equal(t, 0, none.Count())

	one := ApplySelectionToggle(none, url.Values{"toggle": {"category"}})
	assert.Equal(t, []core.Column{core.ColumnCategory}, one.Selected())

	same := ApplySelectionToggle(one, url.Values{"toggle": {"balance"}})
	assert.Equal(t, one.Selected(), same.Selected())
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantJSON bool
		want     url.Values
	}{
		{
			name:     "form",
			body:     "q=smith&col=date&col=user",
			wantJSON: false,
			want:     url.Values{"q": {"smith"}, "col": {"date", "user"}},
		},
		{
			name:     "json with array",
			body:     `{"q":"smith","col":["date","user"],"page":2}`,
			wantJSON: true,
			want:     url.Values{"q": {"smith"}, "col": {"date", "user"}, "page": {"2"}},
		},
		{
			name: "empty",
			body: "",
			want: url.Values{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(tt.body))
			p := NewRequestBodyParser(r, 1<<16)
			require.NoError(t, p.Parse())
			assert.Equal(t, tt.wantJSON, p.IsJSON())
			assert.Equal(t, tt.want, p.Values())
		})
	}
}

func TestRequestBodyParserInvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"q":`))
	p := NewRequestBodyParser(r, 1<<16)
	assert.Error(t, p.Parse())
	assert.Error(t, p.Parse(), "error is sticky")
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/export", nil)
	assert.Nil(t, RequireMethod(r, http.MethodGet))

	resp := RequireMethod(r, http.MethodPost)
	require.NotNil(t, resp)
	w := httptest.NewRecorder()
	resp.Write(w)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{240000, "+$2,400.00"},
		{-35000, "-$350.00"},
		{-8550, "-$85.50"},
		{5, "+$0.05"},
		{0, "+$0.00"},
		{123456789, "+$1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(core.Money{Cents: tt.cents}), "cents %d", tt.cents)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jan 15, 2024", formatDate(core.NewDate(2024, 1, 15)))
}
