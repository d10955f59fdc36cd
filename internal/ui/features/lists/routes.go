package lists

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	"github.com/leapstack-labs/leaplist/internal/ui/features/common"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
)

// SetupRoutes configures routes for the lists feature.
func SetupRoutes(
	router chi.Router,
	cat *catalog.Catalog,
	tr *transport.Transport,
	sessionStore sessions.Store,
	levels common.Levels,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(cat, tr, sessionStore, levels, logger)

	router.Get("/", handlers.IndexPage)
	router.Post("/login", handlers.Login)

	router.Route("/lists/{id}", func(r chi.Router) {
		r.Get("/", handlers.ListPage)
		r.Get("/updates", handlers.ListUpdates)
		r.Post("/action/{action}", handlers.Action)
	})

	return nil
}
