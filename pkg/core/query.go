package core

import "context"

// SortDirection is the ordering direction of a query.
type SortDirection int

// Sort directions.
const (
	Ascending SortDirection = iota
	Descending
)

// String returns "asc" or "desc".
func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Query is a lazily evaluated, immutable query over one entity set.
// Builder methods return a new Query and never mutate the receiver.
type Query interface {
	// Where narrows the query with p, ANDed onto existing predicates.
	Where(p Predicate) Query
	// OrderBy replaces the ordering.
	OrderBy(field string, dir SortDirection) Query
	// Paginate limits the result to one 1-based page of perPage rows.
	Paginate(page, perPage int) Query
	// Count returns the number of matching rows, ignoring pagination.
	Count(ctx context.Context) (int, error)
	// Fetch executes the query.
	Fetch(ctx context.Context) ([]Entity, error)
}

// Predicate is a filter condition understood by every Query implementation.
type Predicate interface {
	predicate()
}

// Contains matches rows whose Field value contains Text (case-insensitive).
type Contains struct {
	Field string
	Text  string
}

// Equals matches rows whose Field value equals Value.
type Equals struct {
	Field string
	Value any
}

// Or matches rows matching any of its predicates.
type Or []Predicate

func (Contains) predicate() {}
func (Equals) predicate()   {}
func (Or) predicate()       {}

// AnyOf ORs predicates together. It returns nil for an empty set and the
// predicate itself for a single one.
func AnyOf(preds ...Predicate) Predicate {
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return Or(preds)
	}
}

// Offset returns the row offset of a 1-based page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
