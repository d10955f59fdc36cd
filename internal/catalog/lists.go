package catalog

import "github.com/leapstack-labs/leaplist/internal/cli/config"

// DefaultLists returns the lists served when the configuration defines none.
func DefaultLists() []config.ListConfig {
	return []config.ListConfig{
		{
			ID:           "players",
			Title:        "Players",
			IconStyle:    "Icons128x128_1",
			IconSubstyle: "Buddies",
			Table:        "players",
			Fields: []config.FieldConfig{
				{Label: "Login", Key: "login", Search: true, Sort: true, Width: 40, Handler: "row.inspect"},
				{Label: "Nickname", Key: "nickname", Search: true, Sort: true, Width: 50, Render: "strip_styles(value)"},
				{Label: "Level", Key: "level", Sort: true, Width: 15},
				{Label: "Zone", Key: "zone", Search: true, Sort: true, Width: 40},
				{Label: "Last seen", Key: "last_seen", Sort: true, Width: 35},
			},
			Actions: []config.ActionConfig{
				{Label: "Promote", IconStyle: "Icons64x64_1", IconSubstyle: "ArrowUp", Handler: "players.promote"},
				{Label: "Remove", IconStyle: "Icons64x64_1", IconSubstyle: "Close", Handler: "players.remove"},
			},
		},
		{
			ID:           "maps",
			Title:        "Maps",
			IconStyle:    "Icons128x128_1",
			IconSubstyle: "Browse",
			Table:        "maps",
			Fields: []config.FieldConfig{
				{Label: "Name", Key: "name", Search: true, Sort: true, Width: 60, Render: "strip_styles(value)", Handler: "row.inspect"},
				{Label: "Author", Key: "author", Search: true, Sort: true, Width: 35},
				{Label: "Environment", Key: "environment", Search: true, Sort: true, Width: 25},
				{Label: "Author time", Key: "author_time", Sort: true, Width: 25, Render: "format_time(value)"},
			},
			Actions: []config.ActionConfig{
				{Label: "Remove", IconStyle: "Icons64x64_1", IconSubstyle: "Close", Handler: "maps.remove"},
			},
		},
	}
}
