// Package memory provides an in-memory core.Query over a slice of entities.
//
// It is the reference implementation of the query contract and backs lists
// whose rows are computed by the host rather than stored in a database.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/fields"
)

// Query is an immutable query over a snapshot of rows.
type Query struct {
	rows    func(ctx context.Context) ([]core.Entity, error)
	schema  core.Schema
	where   []core.Predicate
	orderBy string
	dir     core.SortDirection
	page    int
	perPage int
}

// New returns a query over a fixed set of rows.
func New(schema core.Schema, rows []core.Entity) *Query {
	snapshot := slices.Clone(rows)
	return &Query{
		rows:   func(context.Context) ([]core.Entity, error) { return snapshot, nil },
		schema: schema,
	}
}

// FromFunc returns a query whose rows are loaded on every Count/Fetch.
func FromFunc(schema core.Schema, load func(ctx context.Context) ([]core.Entity, error)) *Query {
	return &Query{rows: load, schema: schema}
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

// Count implements core.Query.
func (q *Query) Count(ctx context.Context) (int, error) {
	rows, err := q.filtered(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Fetch implements core.Query.
func (q *Query) Fetch(ctx context.Context) ([]core.Entity, error) {
	rows, err := q.filtered(ctx)
	if err != nil {
		return nil, err
	}

	if q.orderBy != "" {
		get, ok := q.schema.Field(q.orderBy)
		if !ok {
			return nil, fmt.Errorf("unknown order field %q", q.orderBy)
		}
		slices.SortStableFunc(rows, func(a, b core.Entity) int {
			va, _ := get(a)
			vb, _ := get(b)
			c := compare(va, vb)
			if q.dir == core.Descending {
				return -c
			}
			return c
		})
	}

	if q.perPage > 0 {
		start := core.Offset(q.page, q.perPage)
		if start >= len(rows) {
			return []core.Entity{}, nil
		}
		end := min(start+q.perPage, len(rows))
		rows = rows[start:end]
	}
	return rows, nil
}

func (q *Query) filtered(ctx context.Context) ([]core.Entity, error) {
	if q.rows == nil {
		return nil, fmt.Errorf("memory query has no row source")
	}
	all, err := q.rows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Entity, 0, len(all))
	for _, row := range all {
		keep := true
		for _, p := range q.where {
			match, err := q.match(p, row)
			if err != nil {
				return nil, err
			}
			if !match {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

func (q *Query) match(p core.Predicate, row core.Entity) (bool, error) {
	switch p := p.(type) {
	case core.Contains:
		get, ok := q.schema.Field(p.Field)
		if !ok {
			return false, fmt.Errorf("unknown filter field %q", p.Field)
		}
		v, _ := get(row)
		return strings.Contains(strings.ToLower(fields.Stringify(v)), strings.ToLower(p.Text)), nil
	case core.Equals:
		get, ok := q.schema.Field(p.Field)
		if !ok {
			return false, fmt.Errorf("unknown filter field %q", p.Field)
		}
		v, _ := get(row)
		return compare(v, p.Value) == 0, nil
	case core.Or:
		for _, sub := range p {
			ok, err := q.match(sub, row)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported predicate %T", p)
	}
}

// compare orders values of the common scalar kinds; mixed kinds fall back to
// their string forms.
func compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fields.Stringify(a), fields.Stringify(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
