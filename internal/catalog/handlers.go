// Package catalog defines the lists served by leaplist: the named handlers
// list fields and actions refer to, the default list definitions, and the
// construction of list views from configuration.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaplist/internal/cli/config"
	"github.com/leapstack-labs/leaplist/internal/state"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/fields"
)

// Permission names checked by the built-in handlers.
const (
	PermManagePlayers = "admin:manage_players"
	PermManageMaps    = "admin:manage_maps"
)

// Chat sends a message to one viewer.
type Chat interface {
	SendChat(ctx context.Context, login, message string) error
}

// Permissions registers and checks named permissions.
type Permissions interface {
	Register(name, description string, minLevel int)
	Has(viewer core.Viewer, name string) bool
}

// Handler is a named row handler.
type Handler struct {
	Name        string
	Description string
	Fn          core.Handler
	// Refresh re-renders the list for the acting viewer after Fn succeeds.
	Refresh bool
}

// Handlers is a registry of named row handlers.
type Handlers struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// HandlerDeps are the services used by the built-in handlers.
type HandlerDeps struct {
	Store       state.Store
	Chat        Chat
	Permissions Permissions
	Logger      *slog.Logger
}

// NewHandlers returns a registry holding the built-in handlers.
func NewHandlers(deps HandlerDeps) *Handlers {
	h := &Handlers{handlers: make(map[string]Handler)}
	b := &builtins{HandlerDeps: deps}
	if b.Logger == nil {
		b.Logger = slog.New(slog.DiscardHandler)
	}
	if b.Permissions != nil {
		b.Permissions.Register(PermManagePlayers, "Remove and promote players", 2)
		b.Permissions.Register(PermManageMaps, "Remove maps", 2)
	}

	h.Register(Handler{Name: "players.remove", Description: "Remove the player", Fn: b.removePlayer, Refresh: true})
	h.Register(Handler{Name: "players.promote", Description: "Raise the player's admin level", Fn: b.promotePlayer, Refresh: true})
	h.Register(Handler{Name: "maps.remove", Description: "Remove the map", Fn: b.removeMap, Refresh: true})
	h.Register(Handler{Name: "row.inspect", Description: "Show the row in chat", Fn: b.inspect})
	return h
}

// Register adds or replaces a handler.
func (h *Handlers) Register(handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[handler.Name] = handler
}

// Get returns the named handler or an *UnknownHandlerError.
func (h *Handlers) Get(name string) (Handler, error) {
	h.mu.RLock()
	handler, ok := h.handlers[name]
	h.mu.RUnlock()
	if !ok {
		return Handler{}, &UnknownHandlerError{Name: name, Available: h.Names()}
	}
	return handler, nil
}

// Names returns the registered handler names (sorted).
func (h *Handlers) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.handlers))
	for name := range h.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownHandlerError is returned when a list refers to an unregistered handler.
type UnknownHandlerError struct {
	Name      string
	Available []string
}

func (e *UnknownHandlerError) Error() string {
	return fmt.Sprintf("unknown handler %q\nAvailable handlers: %v\nHint: Check the handler names of your lists in leaplist.yaml", e.Name, e.Available)
}

type builtins struct {
	HandlerDeps
}

func (b *builtins) allowed(ctx context.Context, viewer core.Viewer, perm string) bool {
	if b.Permissions == nil || b.Permissions.Has(viewer, perm) {
		return true
	}
	b.Logger.Info("permission denied",
		slog.String("login", viewer.Login),
		slog.String("permission", perm))
	b.say(ctx, viewer, "$f00You are not allowed to do this.")
	return false
}

func (b *builtins) say(ctx context.Context, viewer core.Viewer, msg string) {
	if b.Chat == nil {
		return
	}
	if err := b.Chat.SendChat(ctx, viewer.Login, msg); err != nil {
		b.Logger.Warn("failed to send chat message",
			slog.String("login", viewer.Login),
			slog.String("error", err.Error()))
	}
}

func (b *builtins) removePlayer(ctx context.Context, viewer core.Viewer, _ core.Values, row core.Entity) error {
	if !b.allowed(ctx, viewer, PermManagePlayers) {
		return nil
	}
	login, err := attr(row, "login")
	if err != nil {
		return err
	}
	if err := b.Store.DeletePlayer(ctx, login); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			b.say(ctx, viewer, "$ff0Player "+login+" is already gone.")
			return nil
		}
		return err
	}
	b.say(ctx, viewer, "$ff0Removed player "+login+".")
	return nil
}

func (b *builtins) promotePlayer(ctx context.Context, viewer core.Viewer, _ core.Values, row core.Entity) error {
	if !b.allowed(ctx, viewer, PermManagePlayers) {
		return nil
	}
	login, err := attr(row, "login")
	if err != nil {
		return err
	}
	p, err := b.Store.GetPlayer(ctx, login)
	if err != nil {
		return err
	}
	if p.Level >= config.MaxAdminLevel {
		b.say(ctx, viewer, fmt.Sprintf("$ff0Player %s already has level %d.", login, p.Level))
		return nil
	}
	if err := b.Store.SetPlayerLevel(ctx, login, p.Level+1); err != nil {
		return err
	}
	b.say(ctx, viewer, fmt.Sprintf("$ff0Promoted %s to level %d.", login, p.Level+1))
	return nil
}

func (b *builtins) removeMap(ctx context.Context, viewer core.Viewer, _ core.Values, row core.Entity) error {
	if !b.allowed(ctx, viewer, PermManageMaps) {
		return nil
	}
	uid, err := attr(row, "uid")
	if err != nil {
		return err
	}
	if err := b.Store.DeleteMap(ctx, uid); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil
		}
		return err
	}
	b.say(ctx, viewer, "$ff0Removed map "+uid+".")
	return nil
}

func (b *builtins) inspect(ctx context.Context, viewer core.Viewer, _ core.Values, row core.Entity) error {
	b.say(ctx, viewer, "$z$s$fff» $ff0"+describe(row))
	return nil
}

// attr returns the named attribute of a record row as a string.
func attr(row core.Entity, key string) (string, error) {
	acc, _ := fields.Records().Field(key)
	v, ok := acc(row)
	if !ok {
		return "", fmt.Errorf("row has no %q attribute", key)
	}
	s := fields.Stringify(v)
	if s == "" {
		return "", fmt.Errorf("row has an empty %q attribute", key)
	}
	return s, nil
}

func describe(row core.Entity) string {
	rec, ok := row.(core.Record)
	if !ok {
		return fields.Stringify(row)
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + fields.Stringify(rec[k])
	}
	return strings.Join(parts, ", ")
}
