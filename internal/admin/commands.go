package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/spf13/cobra"
)

var (
	// ErrNotCommand is returned for chat lines that are not commands.
	ErrNotCommand = errors.New("not a command")
	// ErrPermissionDenied is returned when the viewer lacks the command's permission.
	ErrPermissionDenied = errors.New("permission denied")
)

// Chat sends a message to one viewer.
type Chat interface {
	SendChat(ctx context.Context, login, message string) error
}

// Param is a positional command parameter.
type Param struct {
	Name     string
	Optional bool
	// Variadic collects all remaining tokens. Only valid on the last parameter.
	Variadic bool
}

// CommandFunc runs a command.
type CommandFunc func(ctx context.Context, viewer core.Viewer, args Args) error

// Command is a chat command, typed as /name or, for admin commands, //name.
type Command struct {
	Name        string
	Description string
	Admin       bool
	// Perm is required to run the command when set.
	Perm    string
	Params  []Param
	Handler CommandFunc
}

// Usage returns the command's usage line.
func (c Command) Usage() string {
	var b strings.Builder
	b.WriteString("/")
	if c.Admin {
		b.WriteString("/")
	}
	b.WriteString(c.Name)
	for _, p := range c.Params {
		name := p.Name
		if p.Variadic {
			name += "..."
		}
		if p.Optional || p.Variadic {
			fmt.Fprintf(&b, " [%s]", name)
		} else {
			fmt.Fprintf(&b, " <%s>", name)
		}
	}
	return b.String()
}

func (c Command) validateArgs(_ *cobra.Command, args []string) error {
	required, variadic := 0, false
	for _, p := range c.Params {
		if p.Variadic {
			variadic = true
			continue
		}
		if !p.Optional {
			required++
		}
	}
	if len(args) < required {
		return &UsageError{Usage: c.Usage(), Reason: fmt.Sprintf("expected at least %d argument(s), got %d", required, len(args))}
	}
	if !variadic && len(args) > len(c.Params) {
		return &UsageError{Usage: c.Usage(), Reason: fmt.Sprintf("expected at most %d argument(s), got %d", len(c.Params), len(args))}
	}
	return nil
}

func (c Command) bind(tokens []string) Args {
	args := Args{}
	for i, p := range c.Params {
		if i >= len(tokens) {
			break
		}
		if p.Variadic {
			args[p.Name] = append([]string(nil), tokens[i:]...)
			break
		}
		args[p.Name] = []string{tokens[i]}
	}
	return args
}

// Args holds parsed command arguments by parameter name.
type Args map[string][]string

// Get returns the first token bound to name.
func (a Args) Get(name string) string {
	if v := a[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// List returns all tokens bound to name.
func (a Args) List(name string) []string {
	return a[name]
}

type commandKey struct {
	admin bool
	name  string
}

// CommandManager registers and runs chat commands.
type CommandManager struct {
	mu       sync.RWMutex
	commands map[commandKey]Command
	perms    *PermissionManager
	chat     Chat
	logger   *slog.Logger
}

// NewCommandManager creates a manager checking perms and replying through chat.
// If logger is nil, a discard logger is used.
func NewCommandManager(perms *PermissionManager, chat Chat, logger *slog.Logger) *CommandManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandManager{
		commands: make(map[commandKey]Command),
		perms:    perms,
		chat:     chat,
		logger:   logger,
	}
}

// Register adds commands, replacing any with the same name and kind.
func (m *CommandManager) Register(cmds ...Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cmds {
		if c.Name == "" || strings.ContainsAny(c.Name, " /") {
			return fmt.Errorf("invalid command name %q", c.Name)
		}
		if c.Handler == nil {
			return fmt.Errorf("command %q has no handler", c.Name)
		}
		for i, p := range c.Params {
			if p.Variadic && i != len(c.Params)-1 {
				return fmt.Errorf("command %q: variadic parameter %q must be last", c.Name, p.Name)
			}
		}
		m.commands[commandKey{admin: c.Admin, name: c.Name}] = c
	}
	return nil
}

// Commands returns the registered commands ordered by usage.
func (m *CommandManager) Commands() []Command {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Command, 0, len(m.commands))
	for _, c := range m.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Usage() < out[j].Usage() })
	return out
}

// Execute parses a chat line and runs the command it names. Lines that do
// not start with "/" return ErrNotCommand. Permission and usage failures are
// also reported to the viewer.
func (m *CommandManager) Execute(ctx context.Context, viewer core.Viewer, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return ErrNotCommand
	}
	admin := strings.HasPrefix(line, "//")
	tokens := strings.Fields(strings.TrimLeft(line, "/"))
	if len(tokens) == 0 {
		return ErrNotCommand
	}
	return m.Run(ctx, viewer, admin, tokens)
}

// Run runs the command tokens[0] with the remaining tokens as arguments.
func (m *CommandManager) Run(ctx context.Context, viewer core.Viewer, admin bool, tokens []string) error {
	if len(tokens) == 0 {
		return ErrNotCommand
	}
	m.mu.RLock()
	cmd, ok := m.commands[commandKey{admin: admin, name: tokens[0]}]
	m.mu.RUnlock()
	if !ok {
		err := &UnknownCommandError{Name: tokens[0], Admin: admin}
		m.reply(ctx, viewer, "$z$s$fff» $f00"+err.Error())
		return err
	}

	if cmd.Perm != "" && (m.perms == nil || !m.perms.Has(viewer, cmd.Perm)) {
		m.logger.Info("command denied",
			slog.String("login", viewer.Login),
			slog.String("command", cmd.Name),
			slog.String("permission", cmd.Perm))
		m.reply(ctx, viewer, "$z$s$fff» $f00You are not allowed to use this command.")
		return ErrPermissionDenied
	}

	cc := &cobra.Command{
		Use:                cmd.Name,
		Short:              cmd.Description,
		Args:               cmd.validateArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cc *cobra.Command, args []string) error {
			return cmd.Handler(cc.Context(), viewer, cmd.bind(args))
		},
	}
	cc.SetArgs(tokens[1:])
	cc.SetOut(io.Discard)
	cc.SetErr(io.Discard)

	m.logger.Debug("running command",
		slog.String("login", viewer.Login),
		slog.String("command", cmd.Usage()))

	err := cc.ExecuteContext(ctx)
	var ue *UsageError
	if errors.As(err, &ue) {
		m.reply(ctx, viewer, "$z$s$fff» $f00Usage: "+ue.Usage)
	}
	return err
}

func (m *CommandManager) reply(ctx context.Context, viewer core.Viewer, msg string) {
	if m.chat == nil {
		return
	}
	if err := m.chat.SendChat(ctx, viewer.Login, msg); err != nil {
		m.logger.Warn("failed to send chat message",
			slog.String("login", viewer.Login),
			slog.String("error", err.Error()))
	}
}

// UnknownCommandError is returned for an unregistered command.
type UnknownCommandError struct {
	Name  string
	Admin bool
}

func (e *UnknownCommandError) Error() string {
	prefix := "/"
	if e.Admin {
		prefix = "//"
	}
	return fmt.Sprintf("unknown command %s%s", prefix, e.Name)
}

// UsageError reports arguments that do not fit the command's parameters.
type UsageError struct {
	Usage  string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s (usage: %s)", e.Reason, e.Usage)
}
