package core

import (
	"context"
	"strings"
)

// DefaultColumnType is the display type used when a column does not set one.
const DefaultColumnType = "label"

// Entity is one materialized row returned by a Query.
type Entity = any

// Handler is invoked for a body click or a row action.
// It returns once the work is complete; the error is the completion signal.
type Handler func(ctx context.Context, viewer Viewer, values Values, row Entity) error

// SortIndicator is the per-render sort marker of a column.
type SortIndicator int

// Sort indicators.
const (
	SortNone SortIndicator = iota
	SortAsc
	SortDesc
)

// String returns the indicator name.
func (s SortIndicator) String() string {
	switch s {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// Column describes one displayed field.
type Column struct {
	Label      string
	Key        string // source attribute; empty for decorative columns
	Searchable bool
	Sortable   bool
	Width      float64
	Type       string
	Renderer   func(row Entity, col *Column) string
	Handler    Handler // body click

	// Computed per render on a copy of the descriptor.
	Left float64
	Sort SortIndicator
}

// HasSource reports whether the column is bound to an entity attribute.
func (c *Column) HasSource() bool {
	return c.Key != ""
}

// CanSort reports whether a header click on the column toggles sorting.
func (c *Column) CanSort() bool {
	return c.Sortable && c.HasSource()
}

// CanSearch reports whether the column takes part in the search filter.
func (c *Column) CanSearch() bool {
	return c.Searchable && c.HasSource()
}

// Action describes one row-level action button.
type Action struct {
	Label        string
	IconStyle    string
	IconSubstyle string
	Handler      Handler
}

// Viewer is a connected user session observing a list.
type Viewer struct {
	Login    string
	Nickname string
	Level    int
}

// DisplayName returns the nickname, falling back to the login.
func (v Viewer) DisplayName() string {
	if v.Nickname != "" {
		return v.Nickname
	}
	return v.Login
}

// Values holds side-channel values submitted with an action (e.g. the search box).
type Values map[string]string

// Get returns the trimmed value for key.
func (v Values) Get(key string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(v[key])
}

// ValuesFromSignals converts decoded client signals into Values.
// Non-string signals are ignored.
func ValuesFromSignals(signals map[string]any) Values {
	values := make(Values, len(signals))
	for k, v := range signals {
		if s, ok := v.(string); ok {
			values[k] = s
		}
	}
	return values
}
