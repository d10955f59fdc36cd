// Package config provides configuration management for the leaplist CLI.
//
// Configuration is layered with koanf: built-in defaults, then leaplist.yaml,
// then LEAPLIST_ environment variables, then explicitly set flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	SeedsDir     string         `koanf:"seeds_dir"`
	StatePath    string         `koanf:"state_path"`
	Login        string         `koanf:"login"`
	Verbose      bool           `koanf:"verbose"`
	NoColor      bool           `koanf:"no_color"`
	OutputFormat string         `koanf:"output"`
	Source       *SourceConfig  `koanf:"source"`
	UI           *UIConfig      `koanf:"ui"`
	Admins       map[string]int `koanf:"admins"`
	Lists        []ListConfig   `koanf:"lists"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// SourceConfig selects the database the lists query.
// An sqlite source with an empty DSN reads the state store.
type SourceConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// UIConfig holds configuration for the browser overlay server.
type UIConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Watch           bool          `koanf:"watch"`
	SessionSecret   string        `koanf:"session_secret"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ListConfig declares one list.
type ListConfig struct {
	ID           string         `koanf:"id"`
	Title        string         `koanf:"title"`
	IconStyle    string         `koanf:"icon_style"`
	IconSubstyle string         `koanf:"icon_substyle"`
	Table        string         `koanf:"table"`
	PageSize     int            `koanf:"page_size"`
	HideSearch   bool           `koanf:"hide_search"`
	Fields       []FieldConfig  `koanf:"fields"`
	Actions      []ActionConfig `koanf:"actions"`
}

// FieldConfig declares one list column.
type FieldConfig struct {
	Label   string  `koanf:"label"`
	Key     string  `koanf:"key"`
	Search  bool    `koanf:"search"`
	Sort    bool    `koanf:"sort"`
	Width   float64 `koanf:"width"`
	Type    string  `koanf:"type"`
	Render  string  `koanf:"render"`  // Starlark expression
	Handler string  `koanf:"handler"` // registered handler name for body clicks
}

// ActionConfig declares one row action.
type ActionConfig struct {
	Label        string `koanf:"label"`
	IconStyle    string `koanf:"icon_style"`
	IconSubstyle string `koanf:"icon_substyle"`
	Handler      string `koanf:"handler"`
}

// Default configuration values.
const (
	DefaultSeedsDir        = "seeds"
	DefaultStateFile       = ".leaplist/state.db"
	DefaultLogin           = "console"
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=yaml
	DefaultSourceDriver    = "sqlite"
	DefaultUIHost          = "127.0.0.1"
	DefaultUIPort          = 8766
	DefaultShutdownTimeout = 5 * time.Second
)

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Host:            DefaultUIHost,
		Port:            DefaultUIPort,
		Watch:           true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Host == "" {
		ui.Host = DefaultUIHost
	}
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	if ui.ShutdownTimeout == 0 {
		ui.ShutdownTimeout = DefaultShutdownTimeout
	}
	return ui
}

// GetSource returns the source config with defaults applied.
func (c *Config) GetSource() *SourceConfig {
	if c.Source == nil {
		return &SourceConfig{Driver: DefaultSourceDriver}
	}
	if c.Source.Driver == "" {
		c.Source.Driver = DefaultSourceDriver
	}
	return c.Source
}

// UsesStateStore reports whether lists read from the state store database.
func (c *Config) UsesStateStore() bool {
	src := c.GetSource()
	return src.Driver == DefaultSourceDriver && src.DSN == ""
}

// AdminLevel returns the admin level of login, 0 for regular players.
func (c *Config) AdminLevel(login string) int {
	return c.Admins[login]
}
