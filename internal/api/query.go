package api

import (
	"net/url"
	"strconv"

	"budgetbook/internal/budget"
)

// DefaultPageSize matches the page size the dashboard displays.
const DefaultPageSize = 15

// TypeAll is the "no filter" value for the type filter.
const TypeAll = "all"

// ListQuery is the filter and pagination state for a list call. Zero values
// mean "no filter"; Page is 1-based.
type ListQuery struct {
	Page     int
	PageSize int
	Type     string // "all" or empty means both types
	Category budget.Category
	Start    budget.Date
	End      budget.Date
}

// Values derives the query string for GET /transactions. Parameters at their
// "no filter" value are omitted entirely; skip and limit are always present.
// Start/End are sent as-is even when Start > End; ordering is the server's
// responsibility.
func (q ListQuery) Values() url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	v := url.Values{}
	v.Set("skip", strconv.Itoa((page-1)*size))
	v.Set("limit", strconv.Itoa(size))

	if q.Type != "" && q.Type != TypeAll {
		v.Set("type", q.Type)
	}

	if q.Category != "" {
		v.Set("category", string(q.Category))
	}

	if !q.Start.IsZero() {
		v.Set("start_date", q.Start.String())
	}

	if !q.End.IsZero() {
		v.Set("end_date", q.End.String())
	}

	return v
}
