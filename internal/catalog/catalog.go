package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaplist/internal/cli/config"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/starlark"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource"
)

// Env holds what list views are built from.
type Env struct {
	DB       *sql.DB
	Dialect  *sqlsource.Dialect
	Handlers *Handlers
	// Displays returns the display of one list.
	Displays func(listID string) listview.Display
	// Pool is shared by the render expressions of all lists. If nil, one is created.
	Pool *starlark.ThreadPool
	// Logger for structured logging. If nil, a discard logger is used.
	Logger *slog.Logger
}

// Build turns one list definition into a view querying its table.
func Build(lc config.ListConfig, env Env) (*listview.View, error) {
	if env.DB == nil || env.Dialect == nil {
		return nil, fmt.Errorf("list %q: database connection not established", lc.ID)
	}
	if env.Handlers == nil {
		return nil, fmt.Errorf("list %q: handler registry is required", lc.ID)
	}
	if env.Displays == nil {
		return nil, fmt.Errorf("list %q: display is required", lc.ID)
	}
	if env.Pool == nil {
		env.Pool = starlark.NewThreadPool(0)
	}
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	table := lc.Table
	if table == "" {
		table = lc.ID
	}

	// handlers refresh through the view, which exists only after New
	var view *listview.View
	bind := func(name string) (core.Handler, error) {
		if name == "" {
			return nil, nil
		}
		h, err := env.Handlers.Get(name)
		if err != nil {
			return nil, err
		}
		if !h.Refresh {
			return h.Fn, nil
		}
		fn := h.Fn
		return func(ctx context.Context, viewer core.Viewer, values core.Values, row core.Entity) error {
			if err := fn(ctx, viewer, values, row); err != nil {
				return err
			}
			return view.Refresh(ctx, viewer)
		}, nil
	}

	cols := make([]core.Column, len(lc.Fields))
	for i, fc := range lc.Fields {
		col := core.Column{
			Label:      fc.Label,
			Key:        fc.Key,
			Searchable: fc.Search,
			Sortable:   fc.Sort,
			Width:      fc.Width,
			Type:       fc.Type,
		}
		if fc.Render != "" {
			r, err := starlark.Compile(fmt.Sprintf("%s.fields[%d]", lc.ID, i), fc.Render, starlark.Options{
				Pool:   env.Pool,
				Logger: logger,
			})
			if err != nil {
				return nil, fmt.Errorf("list %q: field %q: %w", lc.ID, fc.Label, err)
			}
			col.Renderer = r.Func()
		}
		h, err := bind(fc.Handler)
		if err != nil {
			return nil, fmt.Errorf("list %q: field %q: %w", lc.ID, fc.Label, err)
		}
		col.Handler = h
		cols[i] = col
	}

	actions := make([]core.Action, len(lc.Actions))
	for i, ac := range lc.Actions {
		h, err := bind(ac.Handler)
		if err != nil {
			return nil, fmt.Errorf("list %q: action %q: %w", lc.ID, ac.Label, err)
		}
		actions[i] = core.Action{
			Label:        ac.Label,
			IconStyle:    ac.IconStyle,
			IconSubstyle: ac.IconSubstyle,
			Handler:      h,
		}
	}

	view, err := listview.New(listview.Config{
		ID:           lc.ID,
		Title:        lc.Title,
		IconStyle:    lc.IconStyle,
		IconSubstyle: lc.IconSubstyle,
		Fields:       cols,
		Actions:      actions,
		PageSize:     lc.PageSize,
		HideSearch:   lc.HideSearch,
		Query:        sqlsource.Table(env.DB, env.Dialect, table, nil, logger),
		Display:      env.Displays(lc.ID),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Catalog is the set of views served by one process.
type Catalog struct {
	views []*listview.View
	byID  map[string]*listview.View
}

// New builds a view for every list. The default lists are used when lists is empty.
func New(lists []config.ListConfig, env Env) (*Catalog, error) {
	if len(lists) == 0 {
		lists = DefaultLists()
	}
	if env.Pool == nil {
		env.Pool = starlark.NewThreadPool(0)
	}
	c := &Catalog{byID: make(map[string]*listview.View, len(lists))}
	for _, lc := range lists {
		if _, dup := c.byID[lc.ID]; dup {
			return nil, fmt.Errorf("duplicate list id %q", lc.ID)
		}
		view, err := Build(lc, env)
		if err != nil {
			return nil, err
		}
		c.views = append(c.views, view)
		c.byID[lc.ID] = view
	}
	return c, nil
}

// Get returns the view with id.
func (c *Catalog) Get(id string) (*listview.View, bool) {
	v, ok := c.byID[id]
	return v, ok
}

// Views returns the views in definition order.
func (c *Catalog) Views() []*listview.View {
	return c.views
}

// RefreshAll re-renders every open session of every view.
func (c *Catalog) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, v := range c.views {
		if err := v.RefreshAll(ctx); err != nil {
			errs = append(errs, fmt.Errorf("list %s: %w", v.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Forget drops the sessions of login in every view.
func (c *Catalog) Forget(login string) {
	for _, v := range c.views {
		v.Forget(login)
	}
}
