// Package pager tracks the 1-based page window over a server-owned
// collection whose total size is only known from list responses.
package pager

// State is the client-side pagination state. Page always stays within
// [1, max(1, ceil(Total/PageSize))].
type State struct {
	Page     int
	PageSize int
	Total    int
}

func New(pageSize int) State {
	return State{Page: 1, PageSize: pageSize}
}

// MaxPage returns the last valid page for the current total, never below 1.
func (s State) MaxPage() int {
	if s.Total <= 0 {
		return 1
	}

	max := (s.Total + s.PageSize - 1) / s.PageSize
	if max < 1 {
		max = 1
	}

	return max
}

// Clamp forces Page back into range after Total changed.
func (s *State) Clamp() {
	if s.Page < 1 {
		s.Page = 1
	}

	if max := s.MaxPage(); s.Page > max {
		s.Page = max
	}
}

// SetTotal records a server-reported total and re-clamps.
func (s *State) SetTotal(total int) {
	s.Total = total
	s.Clamp()
}

// DropItem accounts for one item removed from the collection and reports
// whether Page had to move. Callers use the report to avoid refreshing twice
// when the page change itself triggers a refresh.
func (s *State) DropItem() bool {
	if s.Total > 0 {
		s.Total--
	}

	before := s.Page
	s.Clamp()

	return s.Page != before
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists.
func (s State) HasNext() bool {
	return s.Page*s.PageSize < s.Total
}

// Skip returns the item offset of the current page.
func (s State) Skip() int {
	return (s.Page - 1) * s.PageSize
}
