package sqlsource

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testQuestion = &Dialect{Name: "test-question", Driver: "sqlmock", Placeholder: QuestionPlaceholder, Like: "LIKE", TextType: "TEXT"}
	testDollar   = &Dialect{Name: "test-dollar", Driver: "sqlmock", Placeholder: DollarPlaceholder, Like: "ILIKE", TextType: "TEXT"}
)

func TestQuery_SelectSQL(t *testing.T) {
	search := core.AnyOf(
		core.Contains{Field: "login", Text: "50%_off"},
		core.Contains{Field: "nickname", Text: "50%_off"},
	)

	tests := []struct {
		name     string
		dialect  *Dialect
		build    func(q core.Query) core.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "plain select",
			dialect:  testQuestion,
			build:    func(q core.Query) core.Query { return q },
			wantSQL:  `SELECT "login", "nickname" FROM "players"`,
			wantArgs: nil,
		},
		{
			name:    "filter order paginate",
			dialect: testQuestion,
			build: func(q core.Query) core.Query {
				return q.Where(search).OrderBy("nickname", core.Descending).Paginate(3, 20)
			},
			wantSQL: `SELECT "login", "nickname" FROM "players" WHERE (CAST("login" AS TEXT) LIKE ? ESCAPE '\' OR CAST("nickname" AS TEXT) LIKE ? ESCAPE '\') ORDER BY "nickname" DESC LIMIT ? OFFSET ?`,
			wantArgs: []any{`%50\%\_off%`, `%50\%\_off%`, 20, 40},
		},
		{
			name:    "dollar placeholders number across clauses",
			dialect: testDollar,
			build: func(q core.Query) core.Query {
				return q.Where(core.Equals{Field: "level", Value: 3}).Where(search).Paginate(1, 10)
			},
			wantSQL:  `SELECT "login", "nickname" FROM "players" WHERE "level" = $1 AND (CAST("login" AS TEXT) ILIKE $2 ESCAPE '\' OR CAST("nickname" AS TEXT) ILIKE $3 ESCAPE '\') LIMIT $4 OFFSET $5`,
			wantArgs: []any{3, `%50\%\_off%`, `%50\%\_off%`, 10, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.build(Table(nil, tt.dialect, "players", []string{"login", "nickname"}, nil))

			stmt, args, err := q.(*Query).SelectSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestQuery_CountSQLIgnoresOrderAndPagination(t *testing.T) {
	q := Table(nil, testQuestion, "main.players", nil, nil).
		Where(core.Contains{Field: "login", Text: "ab"}).
		OrderBy("login", core.Ascending).
		Paginate(2, 20)

	stmt, args, err := q.(*Query).CountSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "main"."players" WHERE CAST("login" AS TEXT) LIKE ? ESCAPE '\'`, stmt)
	assert.Equal(t, []any{"%ab%"}, args)
}

func TestQuery_Immutable(t *testing.T) {
	base := Table(nil, testQuestion, "players", nil, nil)
	_ = base.Where(core.Contains{Field: "login", Text: "x"}).OrderBy("login", core.Ascending)

	stmt, args, err := base.SelectSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "players"`, stmt)
	assert.Empty(t, args)
}

func TestQuery_QuoteIdentEscapes(t *testing.T) {
	assert.Equal(t, `"we""ird"`, testQuestion.QuoteIdent(`we"ird`))
}

func TestQuery_EmptyOrFails(t *testing.T) {
	q := Table(nil, testQuestion, "players", nil, nil).Where(core.Or{})
	_, _, err := q.(*Query).SelectSQL()
	assert.Error(t, err)
}

func TestQuery_CountAndFetch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	q := Table(db, testQuestion, "players", []string{"login", "level"}, nil).
		Where(core.Contains{Field: "login", Text: "a"}).
		Paginate(1, 2)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "players" WHERE CAST("login" AS TEXT) LIKE ? ESCAPE '\'`).
		WithArgs("%a%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT "login", "level" FROM "players" WHERE CAST("login" AS TEXT) LIKE ? ESCAPE '\' LIMIT ? OFFSET ?`).
		WithArgs("%a%", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"login", "level"}).
			AddRow([]byte("alice"), int64(3)).
			AddRow("anna", int64(0)))

	ctx := context.Background()
	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := q.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, core.Record{"login": "alice", "level": int64(3)}, rows[0])
	assert.Equal(t, core.Record{"login": "anna", "level": int64(0)}, rows[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_FetchError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = Table(db, testQuestion, "players", nil, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to execute query")
}

func TestQuery_NoConnection(t *testing.T) {
	_, err := Table(nil, testQuestion, "players", nil, nil).Count(context.Background())
	assert.EqualError(t, err, "database connection not established")
}

func TestRegistry(t *testing.T) {
	Register(testQuestion)

	d, ok := Get("test-question")
	require.True(t, ok)
	assert.Same(t, testQuestion, d)
	assert.Contains(t, ListDialects(), "test-question")

	_, _, err := Open(context.Background(), "nope", "")
	var unknown *UnknownDialectError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}
