// Package chat handles chat lines typed by browser viewers, running admin
// commands and echoing plain messages.
package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leaplist/internal/admin"
	"github.com/leapstack-labs/leaplist/internal/ui/features/common"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// Signal is the datastar signal holding the chat line.
const Signal = "chat"

// Handlers provides HTTP handlers for the chat feature.
type Handlers struct {
	commands     *admin.CommandManager
	transport    *transport.Transport
	sessionStore sessions.Store
	levels       common.Levels
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(commands *admin.CommandManager, tr *transport.Transport, sessionStore sessions.Store, levels common.Levels, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		commands:     commands,
		transport:    tr,
		sessionStore: sessionStore,
		levels:       levels,
		logger:       logger,
	}
}

// Send runs a command line or echoes a plain message back to the viewer.
func (h *Handlers) Send(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentViewer(r, h.sessionStore, h.levels)
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	signals := map[string]any{}
	if r.ContentLength != 0 {
		if err := datastar.ReadSignals(r, &signals); err != nil {
			http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	line := core.ValuesFromSignals(signals).Get(Signal)
	if line == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := r.Context()
	err := h.commands.Execute(ctx, viewer, line)

	var unknown *admin.UnknownCommandError
	var usage *admin.UsageError
	switch {
	case err == nil:
	case errors.Is(err, admin.ErrNotCommand):
		_ = h.transport.SendChat(ctx, viewer.Login, "$fff"+viewer.DisplayName()+"$z$s: "+line)
	case errors.Is(err, admin.ErrPermissionDenied), errors.As(err, &unknown), errors.As(err, &usage):
		// already reported to the viewer
	default:
		h.logger.Warn("command failed",
			slog.String("login", viewer.Login),
			slog.String("line", line),
			slog.String("error", err.Error()))
		_ = h.transport.SendChat(ctx, viewer.Login, "$z$s$fff» $f00Error: "+err.Error())
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetupRoutes configures routes for the chat feature.
func SetupRoutes(
	router chi.Router,
	commands *admin.CommandManager,
	tr *transport.Transport,
	sessionStore sessions.Store,
	levels common.Levels,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(commands, tr, sessionStore, levels, logger)
	router.Post("/chat", handlers.Send)
	return nil
}
