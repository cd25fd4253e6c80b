package shared

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list query filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// ParseListFilters extracts pagination and sort parameters from the
// request query, applying defaults.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filters.Limit = limit
	}
	if filters.SortDir != SortDesc {
		filters.SortDir = SortAsc
	}
	return filters
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
