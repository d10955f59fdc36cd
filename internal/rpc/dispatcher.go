// Package rpc executes named remote procedure calls against the game
// server state. Arguments arrive as text tokens and each method coerces
// them itself.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
)

// Method is one callable procedure.
type Method func(ctx context.Context, args []string) (any, error)

type entry struct {
	help string
	fn   Method
}

// Dispatcher is a registry of methods.
type Dispatcher struct {
	mu      sync.RWMutex
	methods map[string]entry
	logger  *slog.Logger
}

// NewDispatcher returns a dispatcher holding system.listMethods.
// If logger is nil, a discard logger is used.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{methods: make(map[string]entry), logger: logger}
	d.Register("system.listMethods", "Return the names of all methods.", func(context.Context, []string) (any, error) {
		return d.Methods(), nil
	})
	return d
}

// Register adds or replaces a method.
func (d *Dispatcher) Register(name, help string, fn Method) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.methods[name] = entry{help: help, fn: fn}
}

// Methods returns the registered method names (sorted).
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns the description of a method.
func (d *Dispatcher) Help(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.methods[name]
	return e.help, ok
}

// Execute runs method with args.
func (d *Dispatcher) Execute(ctx context.Context, method string, args ...string) (any, error) {
	d.mu.RLock()
	e, ok := d.methods[method]
	d.mu.RUnlock()
	if !ok {
		return nil, &UnknownMethodError{Name: method, Available: d.Methods()}
	}

	d.logger.Debug("executing call",
		slog.String("method", method),
		slog.Any("args", args))

	result, err := e.fn(ctx, args)
	if err != nil {
		return nil, &FaultError{Method: method, Err: err}
	}
	return result, nil
}

// UnknownMethodError is returned when an unregistered method is called.
type UnknownMethodError struct {
	Name      string
	Available []string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q\nAvailable methods: %v", e.Name, e.Available)
}

// FaultError wraps an error raised by a method.
type FaultError struct {
	Method string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// ArgError reports a missing or malformed argument.
type ArgError struct {
	Index  int
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("argument %d: %s", e.Index+1, e.Reason)
}

// FormatResult renders a method result for chat. Strings are returned as-is,
// everything else as JSON, so a list prints as ["a","b"] and a bool as true.
func FormatResult(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func argString(args []string, i int) (string, error) {
	if i >= len(args) {
		return "", &ArgError{Index: i, Reason: "missing"}
	}
	return args[i], nil
}

func argInt(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, &ArgError{Index: i, Reason: fmt.Sprintf("%q is not an integer", args[i])}
	}
	return n, nil
}
