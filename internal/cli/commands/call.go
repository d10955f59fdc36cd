package commands

import (
	"github.com/spf13/cobra"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <method> [args...]",
		Short: "Execute a server call and show the result",
		Long: `Execute a server call as the configured login, the same way the //call
chat command does. The result is printed as a chat line.

The login needs the admin:execute_calls permission (admin level 3).`,
		Example: `  # List the available methods
  leaplist call system.listMethods

  # Show the first ten players
  leaplist call GetPlayerList 10 0

  # Send a chat message to two players
  leaplist call ChatSendServerMessageToLogin "Hello" alice,bob`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args)
		},
	}
	// method arguments may look like flags ("-1")
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)
	term := newTerminal(cc.Renderer)

	st, err := openStack(ctx, cc.Cfg, cc.Logger, StackOptions{Chat: term, Displays: term.Display})
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return st.Commands.Run(ctx, cc.Viewer(), true, append([]string{"call"}, args...))
}
