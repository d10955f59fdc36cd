package commands

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leaplist/internal/ui"
	"github.com/leapstack-labs/leaplist/internal/ui/notifier"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser overlay server",
		Long: `Start a local web server showing the lists to logged-in players.

Each browser tab is one viewer with its own page, sort order and search text.
Frames and chat lines are pushed over server-sent events. When ui.watch is set
(the default) edits to the seed CSV files are loaded and every open list is
refreshed.`,
		Example: `  # Start on the default port
  leaplist serve

  # Start on a custom port without watching seeds
  leaplist serve --port 3000 --watch=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	return cmd
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cc := NewCommandContext(cmd)
	cfg := cc.Cfg
	uiCfg := cfg.GetUIConfig()

	tr := transport.New(notifier.New(), cc.Logger)
	st, err := openStack(ctx, cfg, cc.Logger, StackOptions{Chat: tr, Displays: tr.Display, Seed: true})
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	server := ui.NewServer(ui.Config{
		Catalog:         st.Catalog,
		Transport:       tr,
		Commands:        st.Commands,
		Seeder:          st.Store,
		Levels:          cfg.AdminLevel,
		Host:            uiCfg.Host,
		Port:            uiCfg.Port,
		Watch:           uiCfg.Watch && cfg.ValidateSeedsDir() == nil,
		SeedsDir:        cfg.SeedsDir,
		SessionSecret:   uiCfg.SessionSecret,
		ShutdownTimeout: uiCfg.ShutdownTimeout,
		Logger:          cc.Logger,
	})

	r := cc.Renderer
	r.Success(fmt.Sprintf("Serving %s on http://%s", pluralize(len(st.Catalog.Views()), "list"),
		net.JoinHostPort(uiCfg.Host, fmt.Sprint(uiCfg.Port))))
	r.Println(r.Muted("Press Ctrl+C to stop"))

	return server.Serve(ctx)
}
