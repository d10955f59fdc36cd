package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	"github.com/leapstack-labs/leaplist/internal/cli/config"
	"github.com/leapstack-labs/leaplist/internal/cli/output"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/pkg/fields"
	"github.com/spf13/cobra"
)

// ListInfo is the YAML shape of one list in the lists command.
type ListInfo struct {
	ID       string      `yaml:"id"`
	Title    string      `yaml:"title,omitempty"`
	Table    string      `yaml:"table"`
	PageSize int         `yaml:"page_size"`
	Search   bool        `yaml:"search"`
	Fields   []FieldInfo `yaml:"fields"`
	Actions  []string    `yaml:"actions,omitempty"`
}

// FieldInfo describes one column of a list.
type FieldInfo struct {
	Label    string `yaml:"label"`
	Key      string `yaml:"key,omitempty"`
	Sortable bool   `yaml:"sortable,omitempty"`
	Search   bool   `yaml:"search,omitempty"`
	Handler  string `yaml:"handler,omitempty"`
}

// NewListsCommand creates the lists command.
func NewListsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show the configured lists",
		Long: `Show every list with its table, columns and row actions.

Without lists in leaplist.yaml the built-in players and maps lists are shown.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: YAML

Use --output to override: auto, text, yaml`,
		Example: `  # Show lists
  leaplist lists

  # Show lists as YAML
  leaplist lists --output yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			return renderLists(cc.Renderer, describeLists(cc.Cfg.Lists))
		},
	}

	return cmd
}

func describeLists(lists []config.ListConfig) []ListInfo {
	if len(lists) == 0 {
		lists = catalog.DefaultLists()
	}
	out := make([]ListInfo, 0, len(lists))
	for _, lc := range lists {
		info := ListInfo{
			ID:       lc.ID,
			Title:    lc.Title,
			Table:    lc.Table,
			PageSize: lc.PageSize,
			Search:   !lc.HideSearch,
		}
		if info.Table == "" {
			info.Table = lc.ID
		}
		if info.PageSize == 0 {
			info.PageSize = listview.DefaultPageSize
		}
		for _, f := range lc.Fields {
			label := f.Label
			if label == "" {
				label = fields.Label(f.Key)
			}
			info.Fields = append(info.Fields, FieldInfo{
				Label:    label,
				Key:      f.Key,
				Sortable: f.Sort,
				Search:   f.Search,
				Handler:  f.Handler,
			})
		}
		for _, a := range lc.Actions {
			info.Actions = append(info.Actions, a.Handler)
		}
		out = append(out, info)
	}
	return out
}

func renderLists(r *output.Renderer, lists []ListInfo) error {
	if r.EffectiveMode() == output.ModeYAML {
		return r.YAML(lists)
	}

	styles := r.Styles()
	r.Println(styles.Header.Render("Lists (" + pluralize(len(lists), "list") + ")"))
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Table", "Page size", "Columns", "Actions"})
	for _, l := range lists {
		cols := make([]string, 0, len(l.Fields))
		for _, f := range l.Fields {
			label := f.Label
			if f.Sortable {
				label += "*"
			}
			cols = append(cols, label)
		}
		t.AppendRow(table.Row{l.ID, l.Title, l.Table, l.PageSize, strings.Join(cols, ", "), strings.Join(l.Actions, ", ")})
	}
	t.Render()
	r.Println(r.Muted("* sortable"))
	return nil
}
