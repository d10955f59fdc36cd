package listview

import (
	"context"

	"github.com/leapstack-labs/leaplist/pkg/core"
)

func (v *View) baseQuery(ctx context.Context, viewer core.Viewer) (core.Query, error) {
	if v.cfg.QueryFunc != nil {
		q, err := v.cfg.QueryFunc(ctx, viewer)
		if err != nil {
			return nil, &QueryError{Op: "query", Err: err}
		}
		if q == nil {
			return nil, ErrNoQuery
		}
		return q, nil
	}
	if v.cfg.Query != nil {
		return v.cfg.Query, nil
	}
	return nil, ErrNoQuery
}

// applyFilter ORs a contains predicate over every searchable column.
// Without search text or searchable columns the query is returned unchanged.
func applyFilter(q core.Query, fields []core.Column, s *Session) core.Query {
	text, ok := s.Search()
	if !ok || text == "" {
		return q
	}
	var preds []core.Predicate
	for i := range fields {
		if fields[i].CanSearch() {
			preds = append(preds, core.Contains{Field: fields[i].Key, Text: text})
		}
	}
	p := core.AnyOf(preds...)
	if p == nil {
		return q
	}
	return q.Where(p)
}

func applyOrdering(q core.Query, fields []core.Column, s *Session) core.Query {
	col, dir := s.Sort()
	if col < 0 || col >= len(fields) {
		return q
	}
	return q.OrderBy(fields[col].Key, dir)
}

// run executes filter, order, count, paginate and materialize for s.
func (v *View) run(ctx context.Context, s *Session) error {
	q, err := v.baseQuery(ctx, s.viewer)
	if err != nil {
		return err
	}
	q = applyFilter(q, v.fields, s)
	q = applyOrdering(q, v.fields, s)

	count, err := q.Count(ctx)
	if err != nil {
		return &QueryError{Op: "count", Err: err}
	}
	rows, err := q.Paginate(s.page, s.pageSize).Fetch(ctx)
	if err != nil {
		return &QueryError{Op: "fetch", Err: err}
	}

	// count and rows always describe the same result set
	s.count, s.rows = count, rows
	return nil
}
