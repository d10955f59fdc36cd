package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leaplist/internal/admin"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	"github.com/leapstack-labs/leaplist/internal/cli/config"
	"github.com/leapstack-labs/leaplist/internal/cli/output"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/rpc"
	"github.com/leapstack-labs/leaplist/internal/starlark"
	"github.com/leapstack-labs/leaplist/internal/state"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource"
	"github.com/spf13/cobra"

	// The default list source is the sqlite state store.
	_ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/sqlite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	if cfg.NoColor {
		r.DisableColor()
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}
}

// Viewer returns the viewer the CLI acts as.
func (c *CommandContext) Viewer() core.Viewer {
	return core.Viewer{Login: c.Cfg.Login, Level: c.Cfg.AdminLevel(c.Cfg.Login)}
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		SeedsDir:     config.DefaultSeedsDir,
		StatePath:    config.DefaultStateFile,
		Login:        config.DefaultLogin,
		OutputFormat: config.DefaultOutput,
		Admins:       map[string]int{config.DefaultLogin: config.MaxAdminLevel},
	}
}

// openStore opens and migrates the state store, creating its directory.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}
	return store, nil
}

// Chat delivers chat lines to a viewer.
type Chat interface {
	SendChat(ctx context.Context, login, message string) error
}

// Stack is the wired list system shared by serve, browse and call.
type Stack struct {
	Store       *state.SQLiteStore
	Permissions *admin.PermissionManager
	Commands    *admin.CommandManager
	RPC         *rpc.Dispatcher
	Catalog     *catalog.Catalog

	closers []func() error
}

// StackOptions supplies the transport side of a Stack.
type StackOptions struct {
	Chat     Chat
	Displays func(listID string) listview.Display
	// Seed loads the seeds directory into the store when it exists.
	Seed bool
}

// openStack opens the store and the list source and wires admin commands,
// the RPC dispatcher and the list catalog over them.
func openStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts StackOptions) (*Stack, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	st := &Stack{Store: store, closers: []func() error{store.Close}}

	if opts.Seed && cfg.ValidateSeedsDir() == nil {
		res, err := store.SeedCSV(ctx, cfg.SeedsDir)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to load seeds: %w", err)
		}
		logger.Debug("loaded seeds", slog.Int("players", res.Players), slog.Int("maps", res.Maps))
	}

	db, dialect, err := st.openSource(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	st.Permissions = admin.NewPermissionManager(logger)
	st.Commands = admin.NewCommandManager(st.Permissions, opts.Chat, logger)
	st.RPC = rpc.NewDispatcher(logger)
	rpc.RegisterGame(st.RPC, rpc.Game{Store: store, Chat: opts.Chat, StartedAt: time.Now()})

	dev := &admin.DevComponent{
		Permissions: st.Permissions,
		Commands:    st.Commands,
		RPC:         st.RPC,
		Logger:      logger,
	}
	if err := dev.OnStart(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	st.Catalog, err = catalog.New(cfg.Lists, catalog.Env{
		DB:      db,
		Dialect: dialect,
		Handlers: catalog.NewHandlers(catalog.HandlerDeps{
			Store:       store,
			Chat:        opts.Chat,
			Permissions: st.Permissions,
			Logger:      logger,
		}),
		Displays: opts.Displays,
		Pool:     starlark.NewThreadPool(0),
		Logger:   logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// openSource returns the database the lists query. The default source is the
// state store itself.
func (st *Stack) openSource(ctx context.Context, cfg *config.Config) (*sql.DB, *sqlsource.Dialect, error) {
	src := cfg.GetSource()
	if cfg.UsesStateStore() {
		d, ok := sqlsource.Get(src.Driver)
		if !ok {
			return nil, nil, &sqlsource.UnknownDialectError{Name: src.Driver, Available: sqlsource.ListDialects()}
		}
		return st.Store.DB(), d, nil
	}
	db, d, err := sqlsource.Open(ctx, src.Driver, src.DSN)
	if err != nil {
		return nil, nil, err
	}
	st.closers = append(st.closers, db.Close)
	return db, d, nil
}

// Close releases the list source and the store.
func (st *Stack) Close() error {
	var errs []error
	for i := len(st.closers) - 1; i >= 0; i-- {
		errs = append(errs, st.closers[i]())
	}
	st.closers = nil
	return errors.Join(errs...)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
