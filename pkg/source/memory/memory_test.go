package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players(n int) []core.Entity {
	rows := make([]core.Entity, n)
	for i := range rows {
		rows[i] = core.Record{
			"login":    fmt.Sprintf("player%02d", i),
			"nickname": fmt.Sprintf("Nick %d", n-i),
			"level":    int64(i % 4),
		}
	}
	return rows
}

func logins(rows []core.Entity) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.(core.Record)["login"].(string)
	}
	return out
}

func TestQuery_Paginate(t *testing.T) {
	ctx := context.Background()
	q := New(fields.Records(), players(45))

	tests := []struct {
		name     string
		page     int
		wantLen  int
		wantHead string
	}{
		{"first page", 1, 20, "player00"},
		{"middle page", 2, 20, "player20"},
		{"partial last page", 3, 5, "player40"},
		{"past the end", 4, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := q.Paginate(tt.page, 20).Fetch(ctx)
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantLen)
			if tt.wantHead != "" {
				assert.Equal(t, tt.wantHead, logins(rows)[0])
			}
		})
	}
}

func TestQuery_CountIgnoresPagination(t *testing.T) {
	q := New(fields.Records(), players(45)).Paginate(2, 20)

	n, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45, n)
}

func TestQuery_WhereContainsIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	base := New(fields.Records(), players(12))

	q := base.Where(core.AnyOf(
		core.Contains{Field: "login", Text: "PLAYER1"},
		core.Contains{Field: "nickname", Text: "nick 12"},
	))

	rows, err := q.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"player00", "player10", "player11"}, logins(rows))

	// The receiver is not modified.
	n, err := base.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestQuery_WhereEquals(t *testing.T) {
	rows, err := New(fields.Records(), players(8)).
		Where(core.Equals{Field: "level", Value: 3}).
		Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"player03", "player07"}, logins(rows))
}

func TestQuery_OrderBy(t *testing.T) {
	ctx := context.Background()
	q := New(fields.Records(), players(5))

	rows, err := q.OrderBy("nickname", core.Ascending).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"player04", "player03", "player02", "player01", "player00"}, logins(rows))

	rows, err = q.OrderBy("login", core.Descending).Paginate(1, 2).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"player04", "player03"}, logins(rows))
}

func TestQuery_NumericOrdering(t *testing.T) {
	rows := []core.Entity{
		core.Record{"n": int64(10)},
		core.Record{"n": int64(9)},
		core.Record{"n": int64(100)},
	}
	out, err := New(fields.Records(), rows).OrderBy("n", core.Ascending).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), out[0].(core.Record)["n"])
	assert.Equal(t, int64(100), out[2].(core.Record)["n"])
}

func TestQuery_UnknownFieldFails(t *testing.T) {
	schema := fields.MustOf[struct{ Name string }]()
	q := New(schema, []core.Entity{struct{ Name string }{"a"}})

	_, err := q.OrderBy("missing", core.Ascending).Fetch(context.Background())
	assert.Error(t, err)

	_, err = q.Where(core.Contains{Field: "missing", Text: "a"}).Count(context.Background())
	assert.Error(t, err)
}

func TestFromFunc_PropagatesLoadError(t *testing.T) {
	boom := errors.New("boom")
	q := FromFunc(fields.Records(), func(context.Context) ([]core.Entity, error) {
		return nil, boom
	})

	_, err := q.Count(context.Background())
	assert.ErrorIs(t, err, boom)
}
