package starlark

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/fields"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Options configures a Renderer.
type Options struct {
	// Schema resolves row attributes. Rows that are core.Record need none.
	Schema core.Schema
	// Pool supplies threads. If nil, a private pool is used.
	Pool *ThreadPool
	// Logger for structured logging. If nil, a discard logger is used.
	Logger *slog.Logger
}

// Renderer evaluates one render expression against list rows.
//
// The expression sees these globals:
//
//	row          dict of the row's attributes
//	value        the column's own attribute, or None
//	column       struct with label, key and type
//	strip_styles removes ManiaPlanet formatting codes
//	format_time  formats milliseconds as m:ss.mmm
type Renderer struct {
	name   string
	expr   string
	schema core.Schema
	pool   *ThreadPool
	logger *slog.Logger

	mu        sync.Mutex
	accessors map[string]core.FieldAccessor
}

// Compile checks the syntax of expr and returns a Renderer for it.
// The name is used in error messages.
func Compile(name, expr string, opts Options) (*Renderer, error) {
	if _, err := syntax.ParseExpr(name, expr, 0); err != nil { //nolint:staticcheck // SA1019: will migrate to FileOptions later
		return nil, &EvalError{Name: name, Expr: expr, Message: err.Error()}
	}
	if opts.Pool == nil {
		opts.Pool = NewThreadPool(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		name:      name,
		expr:      expr,
		schema:    opts.Schema,
		pool:      opts.Pool,
		logger:    opts.Logger,
		accessors: make(map[string]core.FieldAccessor),
	}, nil
}

// Expr returns the source expression.
func (r *Renderer) Expr() string { return r.expr }

// Eval renders row for col.
func (r *Renderer) Eval(row core.Entity, col *core.Column) (string, error) {
	value := starlark.Value(starlark.None)
	if col != nil && col.Key != "" {
		if get, ok := r.accessor(col.Key); ok {
			if v, ok := get(row); ok {
				value = toValue(v)
			}
		}
	}

	thread := r.pool.Get(r.name)
	defer r.pool.Put(thread)

	globals := Predeclared(r.rowValue(row), value, ColumnInfoFrom(col))
	result, err := starlark.Eval(thread, r.name, r.expr, globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return "", &EvalError{Name: r.name, Expr: r.expr, Message: err.Error()}
	}
	return ToString(result), nil
}

// Func adapts the renderer to core.Column.Renderer. Evaluation errors are
// logged and render as "".
func (r *Renderer) Func() func(row core.Entity, col *core.Column) string {
	return func(row core.Entity, col *core.Column) string {
		out, err := r.Eval(row, col)
		if err != nil {
			r.logger.Warn("render expression failed", slog.String("renderer", r.name), slog.String("error", err.Error()))
			return ""
		}
		return out
	}
}

func (r *Renderer) accessor(key string) (core.FieldAccessor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if get, ok := r.accessors[key]; ok {
		return get, true
	}
	schema := r.schema
	if schema == nil {
		schema = fields.Records()
	}
	get, ok := schema.Field(key)
	if ok {
		r.accessors[key] = get
	}
	return get, ok
}

type namedSchema interface {
	Names() []string
}

func (r *Renderer) rowValue(row core.Entity) starlark.Value {
	switch rec := row.(type) {
	case core.Record:
		return toValue(map[string]any(rec))
	case map[string]any:
		return toValue(rec)
	}
	named, ok := r.schema.(namedSchema)
	if !ok {
		return starlark.None
	}
	m := make(map[string]any)
	for _, name := range named.Names() {
		if get, ok := r.accessor(name); ok {
			if v, ok := get(row); ok {
				m[name] = v
			}
		}
	}
	return toValue(m)
}

// toValue converts v, falling back to its printed form for unsupported types.
func toValue(v any) starlark.Value {
	sv, err := GoToStarlark(v)
	if err == nil {
		return sv
	}
	if m, ok := v.(map[string]any); ok {
		dict := starlark.NewDict(len(m))
		for k, item := range m {
			_ = dict.SetKey(starlark.String(k), toValue(item))
		}
		return dict
	}
	return starlark.String(fmt.Sprint(v))
}

// EvalError represents an error compiling or evaluating a render expression.
type EvalError struct {
	Name    string
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: error evaluating %q: %s", e.Name, e.Expr, e.Message)
}
