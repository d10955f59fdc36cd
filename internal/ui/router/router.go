// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leaplist/internal/admin"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	chatFeature "github.com/leapstack-labs/leaplist/internal/ui/features/chat"
	"github.com/leapstack-labs/leaplist/internal/ui/features/common"
	listsFeature "github.com/leapstack-labs/leaplist/internal/ui/features/lists"
	"github.com/leapstack-labs/leaplist/internal/ui/resources"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
)

// Deps holds everything the routes are served from.
type Deps struct {
	Catalog      *catalog.Catalog
	Transport    *transport.Transport
	Commands     *admin.CommandManager
	SessionStore sessions.Store
	Levels       common.Levels
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	router.Handle("/static/*", resources.Handler())

	if err := listsFeature.SetupRoutes(router, deps.Catalog, deps.Transport, deps.SessionStore, deps.Levels, deps.Logger); err != nil {
		return err
	}

	if err := chatFeature.SetupRoutes(router, deps.Commands, deps.Transport, deps.SessionStore, deps.Levels, deps.Logger); err != nil {
		return err
	}

	return nil
}
