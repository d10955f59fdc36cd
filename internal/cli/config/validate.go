package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource"
)

// MaxAdminLevel is the highest admin level.
const MaxAdminLevel = 3

// listIDPattern restricts list ids, which appear in URLs and action ids.
var listIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	src := c.GetSource()
	if _, ok := sqlsource.Get(src.Driver); !ok {
		return &sqlsource.UnknownDialectError{Name: src.Driver, Available: sqlsource.ListDialects()}
	}

	ui := c.GetUIConfig()
	if ui.Port < 0 || ui.Port > 65535 {
		return fmt.Errorf("ui.port %d out of range", ui.Port)
	}
	if ui.ShutdownTimeout < 0 {
		return fmt.Errorf("ui.shutdown_timeout must not be negative")
	}

	for login, level := range c.Admins {
		if level < 0 || level > MaxAdminLevel {
			return fmt.Errorf("admins.%s: level %d out of range 0..%d", login, level, MaxAdminLevel)
		}
	}

	switch c.OutputFormat {
	case "", "auto", "text", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want auto, text or yaml)", c.OutputFormat)
	}

	seen := make(map[string]bool)
	for i, l := range c.Lists {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("lists[%d]: id is required", i)
		}
		if !listIDPattern.MatchString(l.ID) {
			return fmt.Errorf("lists[%d]: id %q may only contain letters, digits, '_' and '-'", i, l.ID)
		}
		if seen[l.ID] {
			return fmt.Errorf("lists[%d]: duplicate list id %q", i, l.ID)
		}
		seen[l.ID] = true
		if l.PageSize < 0 {
			return fmt.Errorf("list %s: page_size must not be negative", l.ID)
		}
		if len(l.Fields) == 0 {
			return fmt.Errorf("list %s: at least one field is required", l.ID)
		}
		for j, f := range l.Fields {
			if f.Label == "" && f.Key == "" {
				return fmt.Errorf("list %s: fields[%d] needs a label or a key", l.ID, j)
			}
			if f.Width < 0 {
				return fmt.Errorf("list %s: fields[%d] width must not be negative", l.ID, j)
			}
		}
		for j, a := range l.Actions {
			if a.Handler == "" {
				return fmt.Errorf("list %s: actions[%d] needs a handler", l.ID, j)
			}
		}
	}
	return nil
}

// ValidateSeedsDir checks that the seeds directory exists.
func (c *Config) ValidateSeedsDir() error {
	if _, err := os.Stat(c.SeedsDir); os.IsNotExist(err) {
		return fmt.Errorf("seeds directory does not exist: %s\nHint: Create the directory or use --seeds-dir to specify a different path", c.SeedsDir)
	}
	return nil
}
