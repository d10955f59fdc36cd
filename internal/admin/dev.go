package admin

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leaplist/internal/rpc"
	"github.com/leapstack-labs/leaplist/pkg/core"
)

// PermExecuteCalls allows running //call.
const PermExecuteCalls = "admin:execute_calls"

// Caller executes RPC methods by name.
type Caller interface {
	Execute(ctx context.Context, method string, args ...string) (any, error)
}

// DevComponent provides developer tooling to admins.
type DevComponent struct {
	Permissions *PermissionManager
	Commands    *CommandManager
	RPC         Caller
	// Logger for structured logging. If nil, a discard logger is used.
	Logger *slog.Logger
}

// OnStart registers the execute_calls permission and the //call command.
func (d *DevComponent) OnStart(_ context.Context) error {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	d.Permissions.Register(PermExecuteCalls, "Can execute calls to server.", 3)
	return d.Commands.Register(Command{
		Name:        "call",
		Description: "Execute a server call and show the result.",
		Admin:       true,
		Perm:        PermExecuteCalls,
		Params: []Param{
			{Name: "method"},
			{Name: "args", Variadic: true},
		},
		Handler: d.adminCall,
	})
}

func (d *DevComponent) adminCall(ctx context.Context, viewer core.Viewer, args Args) error {
	method := args.Get("method")
	result, err := d.RPC.Execute(ctx, method, args.List("args")...)
	if err != nil {
		d.Logger.Warn("call failed",
			slog.String("method", method),
			slog.String("error", err.Error()))
		return err
	}

	message := "$z$s$fff» $ff0Result: " + rpc.FormatResult(result)
	_, err = d.RPC.Execute(ctx, "ChatSendServerMessageToLogin", message, viewer.Login)
	return err
}
