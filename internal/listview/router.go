package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaplist/pkg/core"
)

// HandleAction routes one inbound UI event for viewer. Malformed or
// out-of-range identifiers are logged at warning level and dropped. Events
// from a viewer without an open session are dropped at debug level.
// Errors returned by column or action handlers are passed through unchanged.
func (v *View) HandleAction(ctx context.Context, viewer core.Viewer, id string, values core.Values) error {
	if viewer.Login == "" {
		return ErrInvalidTarget
	}

	ev, err := ParseEvent(id)
	if err != nil {
		v.drop(err)
		return nil
	}
	if u, ok := ev.(Unrecognized); ok {
		v.logger.Debug("ignoring unrecognized action", slog.String("action", u.ID))
		return nil
	}

	ctx, s, release, ok := v.acquire(ctx, viewer, false)
	defer release()
	if !ok {
		v.logger.Debug("ignoring action from viewer without the list open",
			slog.String("action", id),
			slog.String("login", viewer.Login))
		return nil
	}

	switch ev := ev.(type) {
	case HeaderClick:
		if ev.Col < 0 || ev.Col >= len(v.fields) {
			v.drop(&MalformedActionError{Action: id, Reason: fmt.Sprintf("column %d out of range", ev.Col)})
			return nil
		}
		if !s.ToggleSort(ev.Col, &v.fields[ev.Col]) {
			return nil
		}
		return v.refresh(ctx, s)

	case BodyClick:
		row, err := v.resolveRow(id, s, ev.Row)
		if err != nil {
			v.drop(err)
			return nil
		}
		if ev.Col < 0 || ev.Col >= len(v.fields) {
			v.drop(&MalformedActionError{Action: id, Reason: fmt.Sprintf("column %d out of range", ev.Col)})
			return nil
		}
		handler := v.fields[ev.Col].Handler
		if handler == nil {
			v.drop(&MalformedActionError{Action: id, Reason: fmt.Sprintf("column %d has no handler", ev.Col)})
			return nil
		}
		return handler(ctx, viewer, values, row)

	case ActionClick:
		row, err := v.resolveRow(id, s, ev.Row)
		if err != nil {
			v.drop(err)
			return nil
		}
		if ev.Action < 0 || ev.Action >= len(v.actions) {
			v.drop(&MalformedActionError{Action: id, Reason: fmt.Sprintf("action %d out of range", ev.Action)})
			return nil
		}
		handler := v.actions[ev.Action].Handler
		if handler == nil {
			v.drop(&MalformedActionError{Action: id, Reason: fmt.Sprintf("action %d has no handler", ev.Action)})
			return nil
		}
		return handler(ctx, viewer, values, row)

	case Control:
		return v.control(ctx, s, ev.Kind, values)
	}
	return nil
}

func (v *View) control(ctx context.Context, s *Session, kind ControlKind, values core.Values) error {
	switch kind {
	case Close:
		return v.close(ctx, s)
	case Refresh:
		return v.refresh(ctx, s)
	case Search:
		s.SetSearch(values[SearchValue])
		return v.refresh(ctx, s)
	case First:
		s.FirstPage()
		return v.refresh(ctx, s)
	case Last:
		s.LastPage()
		return v.refresh(ctx, s)
	}

	var changed bool
	switch kind {
	case Next:
		changed = s.NextPage()
	case Next10:
		changed = s.Next10Pages()
	case Prev:
		changed = s.PrevPage()
	case Prev10:
		changed = s.Prev10Pages()
	}
	if !changed {
		return nil
	}
	return v.refresh(ctx, s)
}

func (v *View) resolveRow(id string, s *Session, idx int) (core.Entity, error) {
	if idx < 0 || idx >= len(s.rows) {
		return nil, &MalformedActionError{Action: id, Reason: fmt.Sprintf("row %d out of range (%d rows)", idx, len(s.rows))}
	}
	return s.rows[idx], nil
}

func (v *View) drop(err error) {
	var mae *MalformedActionError
	if errors.As(err, &mae) {
		v.logger.Warn("dropping list action",
			slog.String("action", mae.Action),
			slog.String("reason", mae.Reason))
		return
	}
	v.logger.Warn("dropping list action", slog.String("error", err.Error()))
}
