package listview

import (
	"sync"

	"github.com/leapstack-labs/leaplist/pkg/core"
)

// DefaultPageSize is the number of rows per page when Config.PageSize is unset.
const DefaultPageSize = 20

// Session is the presentation state of one viewer: search text, sort column
// and direction, current page, and the result of the last pipeline run.
//
// A Session is not safe for concurrent use. The owning View serializes
// access; standalone sessions are used by callers that do their own locking.
type Session struct {
	mu sync.Mutex

	viewer   core.Viewer
	search   *string
	sortCol  int
	sortDir  core.SortDirection
	page     int
	count    int
	rows     []core.Entity
	pageSize int
}

// NewSession returns an unsorted, unfiltered session on page 1.
func NewSession(pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{sortCol: -1, page: 1, pageSize: pageSize}
}

// Page returns the current 1-based page.
func (s *Session) Page() int { return s.page }

// PageSize returns the number of rows per page.
func (s *Session) PageSize() int { return s.pageSize }

// Count returns the filtered row count of the last pipeline run.
func (s *Session) Count() int { return s.count }

// Rows returns the rows materialized by the last pipeline run.
func (s *Session) Rows() []core.Entity { return s.rows }

// Search returns the active search text and whether a filter is active.
func (s *Session) Search() (string, bool) {
	if s.search == nil {
		return "", false
	}
	return *s.search, true
}

// Sort returns the sorted column index (-1 when unsorted) and its direction.
func (s *Session) Sort() (int, core.SortDirection) {
	return s.sortCol, s.sortDir
}

// NumPages returns ceil(count / pageSize), 0 for an empty result.
func (s *Session) NumPages() int {
	return (s.count + s.pageSize - 1) / s.pageSize
}

// FirstPage moves to page 1.
func (s *Session) FirstPage() {
	s.page = 1
}

// LastPage moves to the last page, or page 1 when there are no rows.
func (s *Session) LastPage() {
	s.page = max(s.NumPages(), 1)
}

// NextPage moves forward one page. It reports false, leaving the page
// unchanged, when that would pass the last page.
func (s *Session) NextPage() bool { return s.step(1) }

// Next10Pages moves forward ten pages, or not at all.
func (s *Session) Next10Pages() bool { return s.step(10) }

// PrevPage moves back one page. It reports false, leaving the page
// unchanged, when that would pass page 1.
func (s *Session) PrevPage() bool { return s.step(-1) }

// Prev10Pages moves back ten pages, or not at all.
func (s *Session) Prev10Pages() bool { return s.step(-10) }

func (s *Session) step(delta int) bool {
	next := s.page + delta
	if next < 1 || next > s.NumPages() {
		return false
	}
	s.page = next
	return true
}

// SetSearch sets the search text. Empty text or the placeholder clears the
// filter. The page is left unchanged.
func (s *Session) SetSearch(text string) {
	if text == "" || text == SearchPlaceholder {
		s.search = nil
		return
	}
	s.search = &text
}

// ToggleSort advances the sort state machine for column idx. Clicking a new
// column sorts it ascending, a second click sorts descending and a third
// clears sorting. Columns that cannot sort are ignored and false is returned.
func (s *Session) ToggleSort(idx int, col *core.Column) bool {
	if col == nil || !col.CanSort() {
		return false
	}
	switch {
	case s.sortCol != idx:
		s.sortCol, s.sortDir = idx, core.Ascending
	case s.sortDir == core.Ascending:
		s.sortDir = core.Descending
	default:
		s.sortCol, s.sortDir = -1, core.Ascending
	}
	return true
}
