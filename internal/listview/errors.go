package listview

import (
	"errors"
	"fmt"
)

// ErrNoQuery is returned by a refresh when neither Config.Query nor
// Config.QueryFunc is set.
var ErrNoQuery = errors.New("listview: no query configured")

// ErrInvalidTarget is returned when a display is requested without a viewer login.
var ErrInvalidTarget = errors.New("listview: no viewer given to display the list to")

// QueryError wraps a failure of the query collaborator.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("listview: %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// MalformedActionError describes an action identifier that could not be
// decoded or resolved. The router logs it and drops the event.
type MalformedActionError struct {
	Action string
	Reason string
}

func (e *MalformedActionError) Error() string {
	return fmt.Sprintf("listview: invalid action %q: %s", e.Action, e.Reason)
}
