package fields

import (
	"testing"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID string
}

type mapInfo struct {
	base
	UID        string `list:"uid"`
	Name       string
	AuthorTime int
	internal   string //nolint:unused // exercised by the unexported-field check
	Skipped    string `list:"-"`
}

func TestOf_ResolvesFields(t *testing.T) {
	s, err := Of[mapInfo]()
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "uid", "name", "author_time"}, s.Names())

	m := mapInfo{base: base{ID: "1"}, UID: "abc", Name: "Canyon", AuthorTime: 42000}

	get, ok := s.Field("author_time")
	require.True(t, ok)
	v, ok := get(m)
	require.True(t, ok)
	assert.Equal(t, 42000, v)

	// Pointer rows resolve too.
	v, ok = get(&m)
	require.True(t, ok)
	assert.Equal(t, 42000, v)

	getID, ok := s.Field("id")
	require.True(t, ok)
	v, _ = getID(m)
	assert.Equal(t, "1", v)

	_, ok = s.Field("skipped")
	assert.False(t, ok)
	_, ok = s.Field("internal")
	assert.False(t, ok)
}

func TestOf_WrongRowType(t *testing.T) {
	s := MustOf[mapInfo]()
	get, ok := s.Field("name")
	require.True(t, ok)

	_, ok = get(core.Record{"name": "x"})
	assert.False(t, ok)

	var nilRow *mapInfo
	_, ok = get(nilRow)
	assert.False(t, ok)
}

func TestOf_NotAStruct(t *testing.T) {
	_, err := Of[int]()
	assert.Error(t, err)
}

func TestStructSchema_Columns(t *testing.T) {
	cols := MustOf[mapInfo]().Columns(20)
	require.Len(t, cols, 4)
	assert.Equal(t, "Author Time", cols[3].Label)
	assert.Equal(t, "author_time", cols[3].Key)
	assert.True(t, cols[3].CanSort())
	assert.Equal(t, float64(20), cols[3].Width)
}

func TestRecords(t *testing.T) {
	get, ok := Records().Field("login")
	require.True(t, ok)

	v, ok := get(core.Record{"login": "alice"})
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	_, ok = get(core.Record{})
	assert.False(t, ok)

	_, ok = get("not a record")
	assert.False(t, ok)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":       "name",
		"AuthorTime": "author_time",
		"ID":         "id",
		"UserID":     "user_id",
		"HTTPServer": "http_server",
		"Map2Name":   "map2_name",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Author Time", Label("author_time"))
	assert.Equal(t, "Login", Label("login"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "abc", Stringify([]byte("abc")))
	assert.Equal(t, "12", Stringify(12))
}
