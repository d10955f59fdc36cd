package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register source dialects via init()
	_ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/postgres"
	_ "github.com/leapstack-labs/leaplist/pkg/source/sqlsource/sqlite"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leaplist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "")
	flags.String("seeds-dir", "", "")
	flags.String("source-driver", "", "")
	flags.String("source-dsn", "", "")
	flags.Int("port", 0, "")
	flags.String("login", "", "")
	flags.Bool("verbose", false, "")
	flags.String("output", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultSeedsDir), cfg.SeedsDir)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultLogin, cfg.Login)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, "sqlite", cfg.Source.Driver)
	assert.True(t, cfg.UsesStateStore())
	assert.Equal(t, 3, cfg.AdminLevel(DefaultLogin))
	assert.Zero(t, cfg.AdminLevel("stranger"))

	ui := cfg.GetUIConfig()
	assert.Equal(t, DefaultUIPort, ui.Port)
	assert.Equal(t, DefaultShutdownTimeout, ui.ShutdownTimeout)
	assert.True(t, ui.Watch)
	assert.Empty(t, cfg.Lists)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()

	writeConfig(t, dir, `
seeds_dir: data
source:
  driver: postgres
  dsn: postgres://${LEAPLIST_TEST_PGUSER}@localhost/game
ui:
  port: 9000
  shutdown_timeout: 250ms
  session_secret: s3cret
admins:
  alice: 3
  bob: 1
lists:
  - id: records
    title: Records
    table: records
    page_size: 15
    fields:
      - label: Player
        key: login
        search: true
        sort: true
        width: 40
      - label: Time
        key: time
        width: 20
        render: format_time(value)
    actions:
      - label: Delete
        icon_style: Icons64x64_1
        icon_substyle: Close
        handler: row.inspect
`)
	t.Setenv("LEAPLIST_TEST_PGUSER", "game")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "leaplist.yaml"), GetConfigFileUsed())
	assert.Equal(t, filepath.Join(dir, "data"), cfg.SeedsDir)
	assert.Equal(t, "postgres", cfg.Source.Driver)
	assert.Equal(t, "postgres://game@localhost/game", cfg.Source.DSN)
	assert.False(t, cfg.UsesStateStore())

	ui := cfg.GetUIConfig()
	assert.Equal(t, 9000, ui.Port)
	assert.Equal(t, 250*time.Millisecond, ui.ShutdownTimeout)
	assert.Equal(t, "s3cret", ui.SessionSecret)

	assert.Equal(t, 3, cfg.AdminLevel("alice"))
	assert.Equal(t, 1, cfg.AdminLevel("bob"))
	assert.Equal(t, 3, cfg.AdminLevel(DefaultLogin))

	require.Len(t, cfg.Lists, 1)
	l := cfg.Lists[0]
	assert.Equal(t, "records", l.ID)
	assert.Equal(t, 15, l.PageSize)
	require.Len(t, l.Fields, 2)
	assert.True(t, l.Fields[0].Search)
	assert.Equal(t, 40.0, l.Fields[0].Width)
	assert.Equal(t, "format_time(value)", l.Fields[1].Render)
	require.Len(t, l.Actions, 1)
	assert.Equal(t, "row.inspect", l.Actions[0].Handler)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()

	writeConfig(t, dir, "login: from-file\nui:\n  port: 9000\noutput: text\n")
	t.Setenv("LEAPLIST_LOGIN", "from-env")
	t.Setenv("LEAPLIST_UI__PORT", "9100")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--port", "9200", "--state", ":memory:"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Login, "env overrides file")
	assert.Equal(t, 9200, cfg.GetUIConfig().Port, "flag overrides env")
	assert.Equal(t, "text", cfg.OutputFormat, "file overrides defaults")
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_FlagPathsRelativeToCWD(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeConfig(t, root, "seeds_dir: seeds\n")
	t.Chdir(sub)
	ResetConfig()

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--seeds-dir", "local"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, resolvedRoot, gotRoot, "project root found upward")
	assert.Equal(t, "local", filepath.Base(cfg.SeedsDir))
	assert.Equal(t, "sub", filepath.Base(filepath.Dir(cfg.SeedsDir)))
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("state_path: db/state.db\n"), 0o600))
	ResetConfig()

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(dir, "db", "state.db"), cfg.StatePath)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		errSubstr string
	}{
		{"unknown driver", "source:\n  driver: oracle\n", `unknown source driver "oracle"`},
		{"bad port", "ui:\n  port: 70000\n", "out of range"},
		{"bad duration", "ui:\n  shutdown_timeout: soon\n", "unable to decode config"},
		{"bad admin level", "admins:\n  alice: 9\n", "admins.alice"},
		{"bad output", "output: xml\n", "unknown output format"},
		{"list without id", "lists:\n  - title: X\n    fields:\n      - key: a\n", "id is required"},
		{"duplicate list", "lists:\n  - id: a\n    fields: [{key: a}]\n  - id: a\n    fields: [{key: a}]\n", "duplicate list id"},
		{"list without fields", "lists:\n  - id: a\n", "at least one field"},
		{"list id with quote", "lists:\n  - id: \"x');alert(1)//\"\n    fields: [{key: a}]\n", "may only contain"},
		{"list id with slash", "lists:\n  - id: a/b\n    fields: [{key: a}]\n", "may only contain"},
		{"action without handler", "lists:\n  - id: a\n    fields: [{key: a}]\n    actions: [{label: Go}]\n", "needs a handler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			ResetConfig()
			writeConfig(t, dir, tt.yaml)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateSeedsDir(t *testing.T) {
	cfg := &Config{SeedsDir: filepath.Join(t.TempDir(), "missing")}
	assert.ErrorContains(t, cfg.ValidateSeedsDir(), "seeds directory does not exist")

	cfg.SeedsDir = t.TempDir()
	assert.NoError(t, cfg.ValidateSeedsDir())
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEAPLIST_TEST_HOST", "db.local")
	assert.Equal(t, "host=db.local port=${LEAPLIST_TEST_UNSET}", expandEnvVars("host=${LEAPLIST_TEST_HOST} port=${LEAPLIST_TEST_UNSET}"))
}
