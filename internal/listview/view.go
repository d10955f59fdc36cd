package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/fields"
)

// Display delivers frames to viewers and hides the list for them.
type Display interface {
	Render(ctx context.Context, viewer core.Viewer, f *Frame) error
	Hide(ctx context.Context, logins ...string) error
}

// QueryFunc builds the base query for a viewer.
type QueryFunc func(ctx context.Context, viewer core.Viewer) (core.Query, error)

// Config configures a View.
type Config struct {
	ID           string
	Title        string
	IconStyle    string
	IconSubstyle string

	Fields   []core.Column
	Actions  []core.Action
	PageSize int

	// HideSearch removes the search box from the rendered list.
	HideSearch bool

	// Query is the base query. QueryFunc takes precedence when set.
	Query     core.Query
	QueryFunc QueryFunc

	// Schema resolves column keys. Defaults to fields.Records().
	Schema core.Schema

	Display Display

	// Logger for structured logging. If nil, a discard logger is used.
	Logger *slog.Logger
}

// View is one list widget instance shared by all its viewers.
type View struct {
	cfg       Config
	fields    []core.Column
	actions   []core.Action
	accessors []core.FieldAccessor
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New validates cfg and returns a View. Column keys are resolved against the
// schema once, here.
func New(cfg Config) (*View, error) {
	if cfg.Display == nil {
		return nil, fmt.Errorf("listview %q: display is required", cfg.ID)
	}
	if cfg.Schema == nil {
		cfg.Schema = fields.Records()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	v := &View{
		cfg:       cfg,
		fields:    slices.Clone(cfg.Fields),
		actions:   slices.Clone(cfg.Actions),
		accessors: make([]core.FieldAccessor, len(cfg.Fields)),
		logger:    logger.With(slog.String("list", cfg.ID)),
		sessions:  make(map[string]*Session),
	}
	for i := range v.fields {
		col := &v.fields[i]
		col.Left, col.Sort = 0, core.SortNone
		if !col.HasSource() {
			continue
		}
		acc, ok := cfg.Schema.Field(col.Key)
		if !ok {
			return nil, fmt.Errorf("listview %q: column %q: unknown field %q", cfg.ID, col.Label, col.Key)
		}
		v.accessors[i] = acc
	}
	return v, nil
}

// ID returns the configured list identifier.
func (v *View) ID() string { return v.cfg.ID }

// Title returns the configured title.
func (v *View) Title() string { return v.cfg.Title }

// Fields returns a copy of the column descriptors.
func (v *View) Fields() []core.Column { return slices.Clone(v.fields) }

// Actions returns a copy of the action descriptors.
func (v *View) Actions() []core.Action { return slices.Clone(v.actions) }

// heldKey marks a session locked by the current call chain. The viewer of a
// session is written with both the session and view locks held.
type heldKey struct {
	view  *View
	login string
}

// acquire returns the locked session of viewer. If ctx already carries the
// session (a handler calling back into the view) it is returned without
// locking again. A missing session is created only when create is set;
// otherwise ok is false and release is a no-op.
func (v *View) acquire(ctx context.Context, viewer core.Viewer, create bool) (_ context.Context, _ *Session, release func(), ok bool) {
	key := heldKey{view: v, login: viewer.Login}
	if s, held := ctx.Value(key).(*Session); held {
		return ctx, s, func() {}, true
	}
	for {
		v.mu.Lock()
		s, found := v.sessions[viewer.Login]
		if !found {
			if !create {
				v.mu.Unlock()
				return ctx, nil, func() {}, false
			}
			s = NewSession(v.cfg.PageSize)
			s.viewer = viewer
			v.sessions[viewer.Login] = s
		}
		v.mu.Unlock()

		s.mu.Lock()
		v.mu.Lock()
		current := v.sessions[viewer.Login] == s
		if current {
			s.viewer = viewer
		}
		v.mu.Unlock()
		if !current {
			// closed while waiting
			s.mu.Unlock()
			continue
		}
		return context.WithValue(ctx, key, s), s, s.mu.Unlock, true
	}
}

// Display runs the pipeline for viewer and sends the result to the display.
func (v *View) Display(ctx context.Context, viewer core.Viewer) error {
	if viewer.Login == "" {
		return ErrInvalidTarget
	}
	ctx, s, release, _ := v.acquire(ctx, viewer, true)
	defer release()
	return v.refresh(ctx, s)
}

// Refresh re-renders the list for viewer with fresh data.
func (v *View) Refresh(ctx context.Context, viewer core.Viewer) error {
	return v.Display(ctx, viewer)
}

// Close discards the viewer's session and hides the list for that viewer only.
func (v *View) Close(ctx context.Context, viewer core.Viewer) error {
	if viewer.Login == "" {
		return ErrInvalidTarget
	}
	ctx, s, release, ok := v.acquire(ctx, viewer, false)
	defer release()
	if !ok {
		return v.cfg.Display.Hide(ctx, viewer.Login)
	}
	return v.close(ctx, s)
}

// Forget drops the session of login without hiding the list, for viewers
// that disconnected.
func (v *View) Forget(login string) {
	v.mu.Lock()
	delete(v.sessions, login)
	v.mu.Unlock()
}

// Viewers returns the viewers with an open session, ordered by login.
func (v *View) Viewers() []core.Viewer {
	v.mu.Lock()
	out := make([]core.Viewer, 0, len(v.sessions))
	for _, s := range v.sessions {
		out = append(out, s.viewer)
	}
	v.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out
}

// RefreshAll re-renders every open session.
func (v *View) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, viewer := range v.Viewers() {
		if err := v.Refresh(ctx, viewer); err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", viewer.Login, err))
		}
	}
	return errors.Join(errs...)
}

// State is a snapshot of one viewer's session.
type State struct {
	Page     int
	NumPages int
	Count    int
	Rows     int
	Search   string
	Order    string
}

// State returns a snapshot of the session of login. It must not be called
// from a handler running for the same viewer.
func (v *View) State(login string) (State, bool) {
	v.mu.Lock()
	s, ok := v.sessions[login]
	v.mu.Unlock()
	if !ok {
		return State{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := v.frame(s)
	return State{
		Page:     f.Page,
		NumPages: f.NumPages,
		Count:    f.Count,
		Rows:     len(f.Rows),
		Search:   f.Search,
		Order:    f.Order,
	}, true
}

func (v *View) refresh(ctx context.Context, s *Session) error {
	if err := v.run(ctx, s); err != nil {
		return err
	}
	return v.cfg.Display.Render(ctx, s.viewer, v.frame(s))
}

func (v *View) close(ctx context.Context, s *Session) error {
	login := s.viewer.Login
	v.mu.Lock()
	if v.sessions[login] == s {
		delete(v.sessions, login)
	}
	v.mu.Unlock()
	return v.cfg.Display.Hide(ctx, login)
}
