// Package ui provides the browser transport for leaplist: list pages fed
// over SSE, viewer sessions and chat commands.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leaplist/internal/admin"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	"github.com/leapstack-labs/leaplist/internal/state"
	"github.com/leapstack-labs/leaplist/internal/ui/features/common"
	"github.com/leapstack-labs/leaplist/internal/ui/router"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
	"golang.org/x/sync/errgroup"
)

// Seeder reloads seed files into the store.
type Seeder interface {
	SeedCSV(ctx context.Context, dir string) (state.SeedResult, error)
}

// Server is the main UI server.
type Server struct {
	catalog         *catalog.Catalog
	transport       *transport.Transport
	commands        *admin.CommandManager
	seeder          Seeder
	sessionStore    *sessions.CookieStore
	levels          common.Levels
	addr            string
	watch           bool
	seedsDir        string
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Catalog   *catalog.Catalog
	Transport *transport.Transport
	Commands  *admin.CommandManager
	// Seeder reloads SeedsDir when Watch is set and a seed file changes.
	Seeder          Seeder
	Levels          common.Levels
	Host            string
	Port            int
	Watch           bool
	SeedsDir        string
	SessionSecret   string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// NewServer creates a new UI server instance. Without a session secret a
// random one is generated, so sessions do not survive a restart.
func NewServer(cfg Config) *Server {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Server{
		catalog:         cfg.Catalog,
		transport:       cfg.Transport,
		commands:        cfg.Commands,
		seeder:          cfg.Seeder,
		sessionStore:    common.NewSessionStore(string(secret)),
		levels:          cfg.Levels,
		addr:            net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		watch:           cfg.Watch,
		seedsDir:        cfg.SeedsDir,
		shutdownTimeout: timeout,
		logger:          logger,
	}
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		Catalog:      s.catalog,
		Transport:    s.transport,
		Commands:     s.commands,
		SessionStore: s.sessionStore,
		Levels:       s.levels,
		Logger:       s.logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	s.logger.Info("starting UI server", slog.String("addr", "http://"+s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.seeder != nil && s.seedsDir != "" {
		eg.Go(func() error {
			return s.watchSeeds(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchSeeds reseeds the store and refreshes every open list when a seed
// file changes.
func (s *Server) watchSeeds(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.seedsDir); err != nil {
		s.logger.Error("failed to watch seeds directory",
			slog.String("dir", s.seedsDir),
			slog.String("error", err.Error()))
		// keep serving without live reload
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Ext(event.Name) != ".csv" {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("seed file changed, reseeding", slog.String("file", name))
				s.reseed(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func (s *Server) reseed(ctx context.Context) {
	res, err := s.seeder.SeedCSV(ctx, s.seedsDir)
	if err != nil {
		s.logger.Error("reseed failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("reseeded",
		slog.Int("players", res.Players),
		slog.Int("maps", res.Maps))

	if err := s.catalog.RefreshAll(ctx); err != nil {
		s.logger.Error("refresh after reseed failed", slog.String("error", err.Error()))
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// requestLogger logs each request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
