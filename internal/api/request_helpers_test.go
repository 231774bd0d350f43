package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithPathParam(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/task/"+value, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		id, err := getPathID(requestWithPathParam("id", "42"), "id")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	for _, raw := range []string{"0", "-3", "abc", "1.5", "99999999999999999999"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := getPathID(requestWithPathParam("id", raw), "id")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.EqualError(t, err, "id: must be a positive integer")
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := getPathID(requestWithPathParam("other", "1"), "id")
		assert.EqualError(t, err, "id: is required")
	})
}

func TestParseListParams(t *testing.T) {
	t.Run("largest page keeps a non-negative offset", func(t *testing.T) {
		p, err := parseListParams(url.Values{
			"page":             {strconv.Itoa(domain.MaxPage)},
			"records_per_page": {"100"},
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.page.Offset(), 0)
	})

	t.Run("defaults", func(t *testing.T) {
		p, err := parseListParams(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, domain.PageRequest{Page: 1, PerPage: domain.DefaultPerPage}, p.page)
		assert.Equal(t, domain.TaskSort{By: domain.SortByID, Order: domain.SortAsc}, p.sort)
		assert.Equal(t, domain.TaskFilter{Scope: domain.ScopeAll}, p.filter)
	})

	t.Run("all parameters", func(t *testing.T) {
		q, err := url.ParseQuery("page=3&records_per_page=25&priority=MEDIUM&status=upcoming" +
			"&search=+report+&scope=created&sort_by=priority&sort_order=DESC")
		require.NoError(t, err)

		p, err := parseListParams(q)
		require.NoError(t, err)

		assert.Equal(t, domain.PageRequest{Page: 3, PerPage: 25}, p.page)
		require.NotNil(t, p.filter.Priority)
		assert.Equal(t, domain.PriorityMedium, *p.filter.Priority)
		require.NotNil(t, p.filter.Status)
		assert.Equal(t, domain.StatusUpcoming, *p.filter.Status)
		assert.Equal(t, "report", p.filter.Search)
		assert.Equal(t, domain.ScopeCreated, p.filter.Scope)
		assert.Equal(t, domain.TaskSort{By: domain.SortByPriority, Order: domain.SortDesc}, p.sort)
	})

	t.Run("records_per_page wins over limit", func(t *testing.T) {
		p, err := parseListParams(url.Values{"records_per_page": {"7"}, "limit": {"50"}})
		require.NoError(t, err)
		assert.Equal(t, 7, p.page.PerPage)
	})

	tests := []struct {
		name  string
		query url.Values
		field string
	}{
		{"zero page", url.Values{"page": {"0"}}, "page"},
		{"negative page", url.Values{"page": {"-1"}}, "page"},
		{"non-numeric page", url.Values{"page": {"two"}}, "page"},
		{"page overflowing the offset", url.Values{"page": {"922337203685477581"}, "records_per_page": {"100"}}, "page"},
		{"page past the limit", url.Values{"page": {strconv.Itoa(domain.MaxPage + 1)}}, "page"},
		{"zero per page", url.Values{"records_per_page": {"0"}}, "records_per_page"},
		{"oversized limit", url.Values{"limit": {"500"}}, "records_per_page"},
		{"bad priority", url.Values{"priority": {"critical"}}, "priority"},
		{"bad status", url.Values{"status": {"done"}}, "status"},
		{"bad scope", url.Values{"scope": {"team"}}, "scope"},
		{"bad sort field", url.Values{"sort_by": {"password_hash"}}, "sort_by"},
		{"bad sort order", url.Values{"sort_order": {"up"}}, "sort_order"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseListParams(tc.query)
			require.Error(t, err)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}
