package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leaplist/internal/cli/output"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/starlark"
	"github.com/leapstack-labs/leaplist/pkg/core"
)

// terminal is the console transport: it prints list frames as tables and
// chat lines as plain text. It keeps the last frame of every list so the
// REPL can validate row and column numbers.
type terminal struct {
	r *output.Renderer

	mu     sync.Mutex
	frames map[string]*listview.Frame
}

func newTerminal(r *output.Renderer) *terminal {
	return &terminal{r: r, frames: make(map[string]*listview.Frame)}
}

// SendChat prints a chat line with its color codes removed.
func (t *terminal) SendChat(_ context.Context, _ string, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.r.Println(t.r.Styles().Info.Render(starlark.StripStyles(message)))
	return nil
}

// Display returns the display of list id.
func (t *terminal) Display(id string) listview.Display {
	return &termList{t: t, id: id}
}

// Frame returns the last frame rendered for list id, if it is shown.
func (t *terminal) Frame(id string) (*listview.Frame, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.frames[id]
	return f, ok
}

type termList struct {
	t  *terminal
	id string
}

func (d *termList) Render(_ context.Context, _ core.Viewer, f *listview.Frame) error {
	d.t.mu.Lock()
	defer d.t.mu.Unlock()
	d.t.frames[d.id] = f
	renderFrame(d.t.r, f)
	return nil
}

func (d *termList) Hide(_ context.Context, _ ...string) error {
	d.t.mu.Lock()
	defer d.t.mu.Unlock()
	delete(d.t.frames, d.id)
	d.t.r.Println(d.t.r.Muted("(list " + d.id + " closed)"))
	return nil
}

// renderFrame prints f: a title line, the search box, the rows numbered from
// zero and the pager.
func renderFrame(r *output.Renderer, f *listview.Frame) {
	styles := r.Styles()
	title := f.Title
	if title == "" {
		title = f.ID
	}
	r.Println(styles.Header.Render(starlark.StripStyles(title)))
	if f.ProvideSearch {
		search := f.Search
		if search == "" {
			search = listview.SearchPlaceholder
		}
		r.Println(r.Muted("Search: ") + search)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	for i, col := range f.Fields {
		label := fmt.Sprintf("%s [%d]", col.Label, i)
		switch col.Sort {
		case core.SortAsc:
			label += " ▲"
		case core.SortDesc:
			label += " ▼"
		}
		header = append(header, label)
	}
	if len(f.Actions) > 0 {
		header = append(header, "Actions")
	}
	t.AppendHeader(header)

	actions := make([]string, len(f.Actions))
	for i, a := range f.Actions {
		actions[i] = fmt.Sprintf("[%d] %s", i, a.Label)
	}
	for i, cells := range f.Cells() {
		row := table.Row{i}
		for _, c := range cells {
			row = append(row, starlark.StripStyles(c))
		}
		if len(actions) > 0 {
			row = append(row, strings.Join(actions, " "))
		}
		t.AppendRow(row)
	}
	t.Render()
	r.Println(r.Muted(fmt.Sprintf("Page %d / %d (%d)", f.Page, f.NumPages, f.Count)))
}
