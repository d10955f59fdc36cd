package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leaplist/pkg/core"
)

// Query is an immutable SQL-backed core.Query over one table or view.
type Query struct {
	db      *sql.DB
	dialect *Dialect
	table   string
	columns []string
	where   []core.Predicate
	orderBy string
	dir     core.SortDirection
	page    int
	perPage int
	logger  *slog.Logger
}

// Table returns a query selecting columns (all when empty) from table.
// If logger is nil, a discard logger is used.
func Table(db *sql.DB, d *Dialect, table string, columns []string, logger *slog.Logger) *Query {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Query{
		db:      db,
		dialect: d,
		table:   table,
		columns: slices.Clone(columns),
		logger:  logger,
	}
}

func (q *Query) clone() *Query {
	c := *q
	c.where = slices.Clone(q.where)
	return &c
}

// Where implements core.Query.
func (q *Query) Where(p core.Predicate) core.Query {
	c := q.clone()
	if p != nil {
		c.where = append(c.where, p)
	}
	return c
}

// OrderBy implements core.Query.
func (q *Query) OrderBy(field string, dir core.SortDirection) core.Query {
	c := q.clone()
	c.orderBy = field
	c.dir = dir
	return c
}

// Paginate implements core.Query.
func (q *Query) Paginate(page, perPage int) core.Query {
	c := q.clone()
	c.page = page
	c.perPage = perPage
	return c
}

// CountSQL returns the count statement and its arguments.
func (q *Query) CountSQL() (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(q.dialect.QuoteIdent(q.table))

	args, err := q.writeWhere(&b, nil)
	if err != nil {
		return "", nil, err
	}
	return b.String(), args, nil
}

// SelectSQL returns the select statement and its arguments.
func (q *Query) SelectSQL() (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(q.columns) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range q.columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(q.dialect.QuoteIdent(c))
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(q.dialect.QuoteIdent(q.table))

	args, err := q.writeWhere(&b, nil)
	if err != nil {
		return "", nil, err
	}

	if q.orderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s %s", q.dialect.QuoteIdent(q.orderBy), strings.ToUpper(q.dir.String()))
	}

	if q.perPage > 0 {
		args = append(args, q.perPage)
		limit := q.dialect.placeholder(len(args))
		args = append(args, core.Offset(q.page, q.perPage))
		offset := q.dialect.placeholder(len(args))
		fmt.Fprintf(&b, " LIMIT %s OFFSET %s", limit, offset)
	}
	return b.String(), args, nil
}

func (q *Query) writeWhere(b *strings.Builder, args []any) ([]any, error) {
	if len(q.where) == 0 {
		return args, nil
	}
	clauses := make([]string, 0, len(q.where))
	for _, p := range q.where {
		clause, err := q.compile(p, &args)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(clauses, " AND "))
	return args, nil
}

func (q *Query) compile(p core.Predicate, args *[]any) (string, error) {
	switch p := p.(type) {
	case core.Contains:
		*args = append(*args, "%"+escapeLike(p.Text)+"%")
		return fmt.Sprintf(`CAST(%s AS %s) %s %s ESCAPE '\'`,
			q.dialect.QuoteIdent(p.Field), q.dialect.textType(), q.dialect.like(), q.dialect.placeholder(len(*args))), nil
	case core.Equals:
		*args = append(*args, p.Value)
		return fmt.Sprintf("%s = %s", q.dialect.QuoteIdent(p.Field), q.dialect.placeholder(len(*args))), nil
	case core.Or:
		if len(p) == 0 {
			return "", fmt.Errorf("empty OR predicate")
		}
		parts := make([]string, 0, len(p))
		for _, sub := range p {
			s, err := q.compile(sub, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported predicate %T", p)
	}
}

// Count implements core.Query.
func (q *Query) Count(ctx context.Context) (int, error) {
	if q.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	stmt, args, err := q.CountSQL()
	if err != nil {
		return 0, err
	}
	q.logger.Debug("counting rows", slog.String("sql", stmt))

	var n int
	if err := q.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// Fetch implements core.Query. Rows are returned as core.Record values.
func (q *Query) Fetch(ctx context.Context) ([]core.Entity, error) {
	if q.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	stmt, args, err := q.SelectSQL()
	if err != nil {
		return nil, err
	}
	q.logger.Debug("fetching rows", slog.String("sql", stmt))

	rows, err := q.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []core.Entity
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := make(core.Record, len(cols))
		for i, col := range cols {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			rec[col] = val
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
