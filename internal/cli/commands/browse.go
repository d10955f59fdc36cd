package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leaplist/internal/admin"
	"github.com/leapstack-labs/leaplist/internal/cli/output"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/spf13/cobra"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <list>",
		Short: "Browse a list in the terminal",
		Long: `Open a list in an interactive terminal session.

The list is printed as a table after every change. Rows, columns and actions
are numbered from zero. Lines starting with / or // run chat commands, so
admins can use //call here too.

Type help inside the session for the available commands.`,
		Example: `  # Browse the players list
  leaplist browse players

  # Browse as another login
  leaplist browse maps --login alice`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var ids []string
			for _, l := range describeLists(getConfig().Lists) {
				ids = append(ids, l.ID)
			}
			return ids, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args[0])
		},
	}

	return cmd
}

func runBrowse(cmd *cobra.Command, listID string) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)
	term := newTerminal(cc.Renderer)

	st, err := openStack(ctx, cc.Cfg, cc.Logger, StackOptions{Chat: term, Displays: term.Display, Seed: true})
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	view, ok := st.Catalog.Get(listID)
	if !ok {
		var ids []string
		for _, v := range st.Catalog.Views() {
			ids = append(ids, v.ID())
		}
		return fmt.Errorf("unknown list %q\nAvailable lists: %v", listID, ids)
	}

	b := &browser{
		view:     view,
		viewer:   cc.Viewer(),
		commands: st.Commands,
		term:     term,
		r:        cc.Renderer,
	}
	if err := view.Display(ctx, b.viewer); err != nil {
		return err
	}

	historyFile := ""
	if cc.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StatePath), "browse_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          listID + "> ",
		HistoryFile:     historyFile,
		AutoComplete:    browseCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Println(cc.Renderer.Muted("Type help for commands, quit to exit"))
	return b.loop(ctx, rl)
}

// lineReader is satisfied by *readline.Instance.
type lineReader interface {
	Readline() (string, error)
}

type browser struct {
	view     *listview.View
	viewer   core.Viewer
	commands *admin.CommandManager
	term     *terminal
	r        *output.Renderer
}

// loop reads lines until the list is closed or input ends. End of input
// closes the list.
func (b *browser) loop(ctx context.Context, in lineReader) error {
	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return b.view.Close(ctx, b.viewer)
		}
		if err != nil {
			return err
		}

		quit, err := b.exec(ctx, line)
		if err != nil {
			b.r.Error(err.Error())
		}
		if quit {
			return nil
		}
	}
}

// exec runs one line and reports whether the session is over.
func (b *browser) exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false, nil
	case line == "help":
		printBrowseHelp(b.r)
		return false, nil
	case strings.HasPrefix(line, "/"):
		return false, b.command(ctx, line)
	}

	id, values, err := parseBrowseLine(line)
	if err != nil {
		return false, err
	}
	if err := b.view.HandleAction(ctx, b.viewer, id, values); err != nil {
		return false, err
	}
	_, shown := b.term.Frame(b.view.ID())
	return !shown, nil
}

// command runs a chat command. Failures the command manager already reported
// in chat are not repeated.
func (b *browser) command(ctx context.Context, line string) error {
	err := b.commands.Execute(ctx, b.viewer, line)
	var unknown *admin.UnknownCommandError
	var usage *admin.UsageError
	switch {
	case err == nil,
		errors.Is(err, admin.ErrPermissionDenied),
		errors.As(err, &unknown),
		errors.As(err, &usage):
		return nil
	}
	return err
}

var browseControls = map[string]listview.ControlKind{
	"next":    listview.Next,
	"n":       listview.Next,
	"prev":    listview.Prev,
	"p":       listview.Prev,
	"n10":     listview.Next10,
	"p10":     listview.Prev10,
	"first":   listview.First,
	"last":    listview.Last,
	"refresh": listview.Refresh,
	"close":   listview.Close,
	"quit":    listview.Close,
	"exit":    listview.Close,
}

// parseBrowseLine translates a REPL line into a list action identifier and
// the values submitted with it.
func parseBrowseLine(line string) (string, core.Values, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, errors.New("empty command")
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	if kind, ok := browseControls[name]; ok {
		if len(args) > 0 {
			return "", nil, fmt.Errorf("usage: %s", name)
		}
		return kind.ActionID(), nil, nil
	}

	switch name {
	case "search":
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		return listview.Search.ActionID(), core.Values{listview.SearchValue: text}, nil
	case "sort":
		n, err := browseInts(args, "sort <column>")
		if err != nil {
			return "", nil, err
		}
		return listview.HeaderAction(n[0]), nil, nil
	case "open":
		n, err := browseInts(args, "open <row> <column>")
		if err != nil {
			return "", nil, err
		}
		return listview.BodyAction(n[0], n[1]), nil, nil
	case "do":
		n, err := browseInts(args, "do <row> <action>")
		if err != nil {
			return "", nil, err
		}
		return listview.RowAction(n[0], n[1]), nil, nil
	}
	return "", nil, fmt.Errorf("unknown command %q (type help for commands)", name)
}

// browseInts parses the non-negative integer arguments named by usage.
func browseInts(args []string, usage string) ([]int, error) {
	want := len(strings.Fields(usage)) - 1
	if len(args) != want {
		return nil, fmt.Errorf("usage: %s", usage)
	}
	out := make([]int, want)
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("usage: %s (%q is not a row or column number)", usage, a)
		}
		out[i] = n
	}
	return out, nil
}

func browseCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("next"),
		readline.PcItem("prev"),
		readline.PcItem("n10"),
		readline.PcItem("p10"),
		readline.PcItem("first"),
		readline.PcItem("last"),
		readline.PcItem("sort"),
		readline.PcItem("open"),
		readline.PcItem("do"),
		readline.PcItem("search"),
		readline.PcItem("refresh"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem("//call"),
	)
}

func printBrowseHelp(r *output.Renderer) {
	r.Println(`Commands:
  next, prev          Move one page
  n10, p10            Move ten pages
  first, last         Jump to the first or last page
  sort <col>          Cycle sorting of a column (asc, desc, off)
  open <row> <col>    Click a cell
  do <row> <action>   Run a row action
  search [text]       Filter rows; no text clears the filter
  refresh             Reload the current page
  /cmd, //cmd         Run a chat command
  quit                Close the list and exit`)
}
