package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leaplist/internal/state"
)

// Chat delivers server messages to players.
type Chat interface {
	SendChat(ctx context.Context, login, message string) error
}

// Status is the result of GetStatus.
type Status struct {
	Code   int    `json:"Code"`
	Name   string `json:"Name"`
	Uptime int64  `json:"Uptime"` // seconds
}

// PlayerInfo is one entry of GetPlayerList.
type PlayerInfo struct {
	Login    string `json:"Login"`
	NickName string `json:"NickName"`
	Level    int    `json:"Level"`
	Zone     string `json:"Zone"`
}

// Game holds the services behind the game methods.
type Game struct {
	Store     state.Store
	Chat      Chat
	StartedAt time.Time
}

// RegisterGame adds GetStatus, GetPlayerList and ChatSendServerMessageToLogin.
func RegisterGame(d *Dispatcher, g Game) {
	if g.StartedAt.IsZero() {
		g.StartedAt = time.Now()
	}
	d.Register("GetStatus", "Return the server status.", g.status)
	d.Register("GetPlayerList", "Return players. Args: [limit [offset]].", g.playerList)
	d.Register("ChatSendServerMessageToLogin", "Send a message to a comma-separated list of logins. Args: message logins.", g.chatToLogin)
}

func (g Game) status(context.Context, []string) (any, error) {
	return Status{
		Code:   4,
		Name:   "Running - Play",
		Uptime: int64(time.Since(g.StartedAt) / time.Second),
	}, nil
}

func (g Game) playerList(ctx context.Context, args []string) (any, error) {
	limit, err := argInt(args, 0, -1)
	if err != nil {
		return nil, err
	}
	offset, err := argInt(args, 1, 0)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, &ArgError{Index: 1, Reason: "offset must not be negative"}
	}
	if g.Store == nil {
		return nil, fmt.Errorf("no player store")
	}

	players, err := g.Store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if offset > len(players) {
		offset = len(players)
	}
	players = players[offset:]
	if limit >= 0 && limit < len(players) {
		players = players[:limit]
	}

	out := make([]PlayerInfo, len(players))
	for i, p := range players {
		out[i] = PlayerInfo{Login: p.Login, NickName: p.Nickname, Level: p.Level, Zone: p.Zone}
	}
	return out, nil
}

func (g Game) chatToLogin(ctx context.Context, args []string) (any, error) {
	message, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	logins, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	if g.Chat == nil {
		return nil, fmt.Errorf("no chat transport")
	}
	for _, login := range strings.Split(logins, ",") {
		login = strings.TrimSpace(login)
		if login == "" {
			continue
		}
		if err := g.Chat.SendChat(ctx, login, message); err != nil {
			return nil, err
		}
	}
	return true, nil
}
