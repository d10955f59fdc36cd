// Package lists serves the list views to browser viewers.
package lists

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/ui/features/common"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the lists feature.
type Handlers struct {
	catalog      *catalog.Catalog
	transport    *transport.Transport
	sessionStore sessions.Store
	levels       common.Levels
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cat *catalog.Catalog, tr *transport.Transport, sessionStore sessions.Store, levels common.Levels, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		catalog:      cat,
		transport:    tr,
		sessionStore: sessionStore,
		levels:       levels,
		logger:       logger,
	}
}

// IndexPage renders the login form or the available lists.
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentViewer(r, h.sessionStore, h.levels)

	var links []common.ListLink
	for _, v := range h.catalog.Views() {
		links = append(links, common.ListLink{ID: v.ID(), Title: v.Title()})
	}

	if err := common.Page("Lists", common.Index(viewer, ok, links)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Login stores the posted login in the session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	login := strings.TrimSpace(r.PostFormValue("login"))
	if login == "" || strings.ContainsAny(login, " /\t") {
		http.Error(w, "invalid login", http.StatusBadRequest)
		return
	}
	if err := common.SaveViewer(w, r, h.sessionStore, login, r.PostFormValue("nickname")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.logger.Info("viewer logged in", slog.String("login", login))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ListPage renders the page shell of a list.
func (h *Handlers) ListPage(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	if _, ok := common.CurrentViewer(r, h.sessionStore, h.levels); !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := common.Page(view.Title(), common.ListPage(view.ID())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListUpdates is the long-lived SSE endpoint of a list. It displays the list
// for the viewer, pushes every new frame and chat message, and forgets the
// viewer's session when the viewer's last stream of the list ends.
func (h *Handlers) ListUpdates(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	viewer, ok := common.CurrentViewer(r, h.sessionStore, h.levels)
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	n := h.transport.Notifier()
	updates := n.Subscribe(transport.ListTopic(view.ID(), viewer.Login), transport.ChatTopic(viewer.Login))
	defer n.Unsubscribe(updates)
	h.transport.Attach(view.ID(), viewer.Login)
	defer h.transport.Detach(view.ID(), viewer.Login, func() {
		view.Forget(viewer.Login)
	})

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	if err := view.Display(ctx, viewer); err != nil {
		h.logger.Error("failed to display list",
			slog.String("list", view.ID()),
			slog.String("login", viewer.Login),
			slog.String("error", err.Error()))
		_ = sse.ConsoleError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.push(sse, view.ID(), viewer.Login); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) push(sse *datastar.ServerSentEventGenerator, listID, login string) error {
	frame, visible := h.transport.Frame(listID, login)
	if frame != nil && visible {
		if err := sse.PatchElementTempl(common.List(frame)); err != nil {
			return err
		}
	} else if err := sse.PatchElementTempl(common.Hidden(listID)); err != nil {
		return err
	}
	return sse.PatchElementTempl(common.ChatPanel(h.transport.Chat(login)))
}

// Action routes one UI action of the viewer to the list.
func (h *Handlers) Action(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
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

	action := chi.URLParam(r, "action")
	err := view.HandleAction(r.Context(), viewer, action, core.ValuesFromSignals(signals))
	if err != nil {
		h.logger.Error("list action failed",
			slog.String("list", view.ID()),
			slog.String("action", action),
			slog.String("login", viewer.Login),
			slog.String("error", err.Error()))

		status := http.StatusInternalServerError
		if errors.Is(err, listview.ErrInvalidTarget) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) view(w http.ResponseWriter, r *http.Request) (*listview.View, bool) {
	id := chi.URLParam(r, "id")
	view, ok := h.catalog.Get(id)
	if !ok {
		http.Error(w, "unknown list "+id, http.StatusNotFound)
		return nil, false
	}
	return view, true
}
