package commands

import (
	"github.com/leapstack-labs/leaplist/internal/cli/output"
	"github.com/leapstack-labs/leaplist/internal/state"
	"github.com/spf13/cobra"
)

// SeedOutput is the YAML shape of the seed command.
type SeedOutput struct {
	SeedsDir string `yaml:"seeds_dir"`
	Players  int    `yaml:"players"`
	Maps     int    `yaml:"maps"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load players and maps from CSV files",
		Long: `Load players.csv and maps.csv from the seeds directory into the state store.

Rows are upserted by login (players) and uid (maps), so seeding twice is safe.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: YAML

Use --output to override: auto, text, yaml`,
		Example: `  # Load seeds from ./seeds
  leaplist seed

  # Load seeds from a specific directory
  leaplist seed --seeds-dir ./data/seeds`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd)
		},
	}

	return cmd
}

func runSeed(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	if err := cc.Cfg.ValidateSeedsDir(); err != nil {
		return err
	}

	store, err := openStore(cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := store.SeedCSV(cmd.Context(), cc.Cfg.SeedsDir)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeYAML {
		return r.YAML(SeedOutput{SeedsDir: cc.Cfg.SeedsDir, Players: res.Players, Maps: res.Maps})
	}
	seedText(r, cc.Cfg.SeedsDir, res)
	return nil
}

func seedText(r *output.Renderer, seedsDir string, res state.SeedResult) {
	r.Println(r.Styles().Header.Render("Loaded Seeds"))
	r.Success(pluralize(res.Players, "player") + " from " + state.PlayersSeed)
	r.Success(pluralize(res.Maps, "map") + " from " + state.MapsSeed)
	r.Println(r.Muted("Source: " + seedsDir))
}
