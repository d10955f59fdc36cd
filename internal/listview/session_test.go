package listview

import (
	"testing"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/stretchr/testify/assert"
)

func sessionWith(count, page int) *Session {
	s := NewSession(20)
	s.count = count
	s.page = page
	return s
}

func TestSession_NumPages(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{20, 1},
		{21, 2},
		{45, 3},
		{60, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sessionWith(tt.count, 1).NumPages(), "count=%d", tt.count)
	}
}

func TestSession_DefaultPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewSession(0).PageSize())
	assert.Equal(t, 5, NewSession(5).PageSize())
}

func TestSession_NextPrevRoundTrip(t *testing.T) {
	for page := 1; page < 10; page++ {
		s := sessionWith(200, page)
		assert.True(t, s.NextPage())
		assert.True(t, s.PrevPage())
		assert.Equal(t, page, s.Page())
	}
}

func TestSession_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		page     int
		move     func(s *Session) bool
		changed  bool
		wantPage int
	}{
		{"next at last page", 45, 3, (*Session).NextPage, false, 3},
		{"prev at first page", 45, 1, (*Session).PrevPage, false, 1},
		{"next10 past end", 45, 1, (*Session).Next10Pages, false, 1},
		{"prev10 past start", 45, 3, (*Session).Prev10Pages, false, 3},
		{"next10 within range", 500, 2, (*Session).Next10Pages, true, 12},
		{"prev10 within range", 500, 11, (*Session).Prev10Pages, true, 1},
		{"next on empty set", 0, 1, (*Session).NextPage, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sessionWith(tt.count, tt.page)
			assert.Equal(t, tt.changed, tt.move(s))
			assert.Equal(t, tt.wantPage, s.Page())
		})
	}
}

func TestSession_FirstLastPage(t *testing.T) {
	s := sessionWith(45, 2)
	s.LastPage()
	assert.Equal(t, 3, s.Page())
	s.FirstPage()
	assert.Equal(t, 1, s.Page())

	empty := sessionWith(0, 1)
	empty.LastPage()
	assert.Equal(t, 1, empty.Page())
}

func TestSession_SetSearch(t *testing.T) {
	s := sessionWith(45, 3)

	s.SetSearch("abc")
	text, ok := s.Search()
	assert.True(t, ok)
	assert.Equal(t, "abc", text)
	assert.Equal(t, 3, s.Page(), "page is preserved")

	s.SetSearch(SearchPlaceholder)
	_, ok = s.Search()
	assert.False(t, ok)

	s.SetSearch("abc")
	s.SetSearch("")
	_, ok = s.Search()
	assert.False(t, ok)
}

func TestSession_ToggleSort(t *testing.T) {
	login := &core.Column{Label: "Login", Key: "login", Sortable: true}
	nick := &core.Column{Label: "Nick", Key: "nickname", Sortable: true}
	plain := &core.Column{Label: "Level", Key: "level"}
	decor := &core.Column{Label: "Flag", Sortable: true}

	s := NewSession(20)
	col, _ := s.Sort()
	assert.Equal(t, -1, col)

	assert.True(t, s.ToggleSort(0, login))
	col, dir := s.Sort()
	assert.Equal(t, 0, col)
	assert.Equal(t, core.Ascending, dir)

	assert.True(t, s.ToggleSort(0, login))
	col, dir = s.Sort()
	assert.Equal(t, 0, col)
	assert.Equal(t, core.Descending, dir)

	assert.True(t, s.ToggleSort(0, login))
	col, _ = s.Sort()
	assert.Equal(t, -1, col)

	// a different column always starts ascending
	s.ToggleSort(0, login)
	s.ToggleSort(0, login)
	assert.True(t, s.ToggleSort(1, nick))
	col, dir = s.Sort()
	assert.Equal(t, 1, col)
	assert.Equal(t, core.Ascending, dir)

	assert.False(t, s.ToggleSort(2, plain))
	assert.False(t, s.ToggleSort(3, decor))
	col, dir = s.Sort()
	assert.Equal(t, 1, col)
	assert.Equal(t, core.Ascending, dir)
}
