package listview

import (
	"fmt"
	"strconv"
	"strings"
)

// Action identifier prefixes.
const (
	headerPrefix  = "list_header_"
	bodyPrefix    = "list_body_"
	actionPrefix  = "list_action_"
	controlPrefix = "list_button_"
)

// ControlKind names a fixed list control.
type ControlKind string

// List controls.
const (
	Close   ControlKind = "close"
	Refresh ControlKind = "refresh"
	Search  ControlKind = "search"
	First   ControlKind = "first"
	Prev10  ControlKind = "prev_10"
	Prev    ControlKind = "prev"
	Next    ControlKind = "next"
	Next10  ControlKind = "next_10"
	Last    ControlKind = "last"
)

// Controls lists every control in toolbar order.
var Controls = []ControlKind{Close, Refresh, Search, First, Prev10, Prev, Next, Next10, Last}

// ActionID returns the identifier of the control.
func (k ControlKind) ActionID() string {
	return controlPrefix + string(k)
}

func (k ControlKind) valid() bool {
	for _, c := range Controls {
		if c == k {
			return true
		}
	}
	return false
}

// SearchValue is the Values key carrying the submitted search text.
const SearchValue = "search"

// SearchPlaceholder is the search box placeholder; submitting it clears the filter.
const SearchPlaceholder = "Search..."

// HeaderAction encodes a header click on column col.
func HeaderAction(col int) string {
	return headerPrefix + strconv.Itoa(col)
}

// BodyAction encodes a click on the cell at (row, col).
func BodyAction(row, col int) string {
	return fmt.Sprintf("%s%d_%d", bodyPrefix, row, col)
}

// RowAction encodes a click on action button act of row.
func RowAction(row, act int) string {
	return fmt.Sprintf("%s%d_%d", actionPrefix, row, act)
}

// Event is a decoded action identifier. It is one of HeaderClick, BodyClick,
// ActionClick, Control or Unrecognized.
type Event interface {
	event()
}

// HeaderClick toggles sorting on a column.
type HeaderClick struct {
	Col int
}

// BodyClick invokes the handler of a column for one materialized row.
type BodyClick struct {
	Row, Col int
}

// ActionClick invokes a row action for one materialized row.
type ActionClick struct {
	Row, Action int
}

// Control is one of the fixed list controls.
type Control struct {
	Kind ControlKind
}

// Unrecognized is an identifier the router does not handle.
type Unrecognized struct {
	ID string
}

func (HeaderClick) event()  {}
func (BodyClick) event()    {}
func (ActionClick) event()  {}
func (Control) event()      {}
func (Unrecognized) event() {}

// ParseEvent decodes an action identifier. Identifiers that carry a known
// prefix but malformed indices yield Unrecognized and a *MalformedActionError.
// Identifiers without a known prefix yield Unrecognized and a nil error.
func ParseEvent(id string) (Event, error) {
	switch {
	case strings.HasPrefix(id, headerPrefix):
		idx, err := parseIndices(id, headerPrefix, 1)
		if err != nil {
			return Unrecognized{ID: id}, err
		}
		return HeaderClick{Col: idx[0]}, nil

	case strings.HasPrefix(id, bodyPrefix):
		idx, err := parseIndices(id, bodyPrefix, 2)
		if err != nil {
			return Unrecognized{ID: id}, err
		}
		return BodyClick{Row: idx[0], Col: idx[1]}, nil

	case strings.HasPrefix(id, actionPrefix):
		idx, err := parseIndices(id, actionPrefix, 2)
		if err != nil {
			return Unrecognized{ID: id}, err
		}
		return ActionClick{Row: idx[0], Action: idx[1]}, nil

	case strings.HasPrefix(id, controlPrefix):
		kind := ControlKind(strings.TrimPrefix(id, controlPrefix))
		if !kind.valid() {
			return Unrecognized{ID: id}, &MalformedActionError{Action: id, Reason: "unknown control"}
		}
		return Control{Kind: kind}, nil
	}
	return Unrecognized{ID: id}, nil
}

func parseIndices(id, prefix string, n int) ([]int, error) {
	parts := strings.Split(strings.TrimPrefix(id, prefix), "_")
	if len(parts) != n {
		return nil, &MalformedActionError{Action: id, Reason: fmt.Sprintf("expected %d indices, got %d", n, len(parts))}
	}
	out := make([]int, n)
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return nil, &MalformedActionError{Action: id, Reason: fmt.Sprintf("index %q is not a number", p)}
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, &MalformedActionError{Action: id, Reason: err.Error()}
		}
		out[i] = v
	}
	return out, nil
}
