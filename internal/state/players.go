package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertPlayer inserts p or updates the player with the same login.
// A missing ID is generated; on update the stored ID is kept and copied to p.
func (s *SQLiteStore) UpsertPlayer(ctx context.Context, p *Player) error {
	if err := s.opened(); err != nil {
		return err
	}
	if p.Login == "" {
		return fmt.Errorf("player login is required")
	}
	if p.ID == "" {
		p.ID = generateID()
	}
	if p.LastSeen.IsZero() {
		p.LastSeen = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO players (id, login, nickname, level, zone, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(login) DO UPDATE SET
			nickname = excluded.nickname,
			level = excluded.level,
			zone = excluded.zone,
			last_seen = excluded.last_seen
		RETURNING id`,
		p.ID, p.Login, p.Nickname, p.Level, p.Zone, p.LastSeen,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.Login, err)
	}
	return nil
}

// GetPlayer returns the player with login, or ErrNotFound.
func (s *SQLiteStore) GetPlayer(ctx context.Context, login string) (*Player, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}

	p := &Player{}
	var lastSeen sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, nickname, level, zone, last_seen FROM players WHERE login = ?`, login,
	).Scan(&p.ID, &p.Login, &p.Nickname, &p.Level, &p.Zone, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", login, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", login, err)
	}
	p.LastSeen = lastSeen.Time
	return p, nil
}

// ListPlayers returns all players ordered by login.
func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]*Player, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, login, nickname, level, zone, last_seen FROM players ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Player
	for rows.Next() {
		p := &Player{}
		var lastSeen sql.NullTime
		if err := rows.Scan(&p.ID, &p.Login, &p.Nickname, &p.Level, &p.Zone, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.LastSeen = lastSeen.Time
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePlayer removes the player with login, or returns ErrNotFound.
func (s *SQLiteStore) DeletePlayer(ctx context.Context, login string) error {
	if err := s.opened(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE login = ?`, login)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", login, err)
	}
	return expectOne(res, "player "+login)
}

// SetPlayerLevel sets the admin level of the player with login.
func (s *SQLiteStore) SetPlayerLevel(ctx context.Context, login string, level int) error {
	if err := s.opened(); err != nil {
		return err
	}
	if level < 0 {
		return fmt.Errorf("invalid level %d", level)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE players SET level = ? WHERE login = ?`, level, login)
	if err != nil {
		return fmt.Errorf("failed to set level of %s: %w", login, err)
	}
	return expectOne(res, "player "+login)
}

// CountPlayers returns the number of players.
func (s *SQLiteStore) CountPlayers(ctx context.Context) (int, error) {
	if err := s.opened(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
