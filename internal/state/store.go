// Package state is the demo data store behind the default lists: players and
// maps of a game server, kept in SQLite.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a row addressed by its natural key does not exist.
var ErrNotFound = errors.New("not found")

// Player is a known player of the server.
type Player struct {
	ID       string    `list:"id"`
	Login    string    `list:"login"`
	Nickname string    `list:"nickname"`
	Level    int       `list:"level"`
	Zone     string    `list:"zone"`
	LastSeen time.Time `list:"last_seen"`
}

// Map is a map in the server's map list.
type Map struct {
	ID          string `list:"id"`
	UID         string `list:"uid"`
	Name        string `list:"name"`
	Author      string `list:"author"`
	Environment string `list:"environment"`
	AuthorTime  int64  `list:"author_time"` // milliseconds
}

// Store is the data store used by list handlers and the RPC layer.
type Store interface {
	UpsertPlayer(ctx context.Context, p *Player) error
	GetPlayer(ctx context.Context, login string) (*Player, error)
	ListPlayers(ctx context.Context) ([]*Player, error)
	DeletePlayer(ctx context.Context, login string) error
	SetPlayerLevel(ctx context.Context, login string, level int) error
	CountPlayers(ctx context.Context) (int, error)

	UpsertMap(ctx context.Context, m *Map) error
	ListMaps(ctx context.Context) ([]*Map, error)
	DeleteMap(ctx context.Context, uid string) error

	SeedCSV(ctx context.Context, dir string) (SeedResult, error)
}

// SeedResult counts rows loaded by SeedCSV.
type SeedResult struct {
	Players int
	Maps    int
}
