package state

import (
	"context"
	"fmt"
)

// UpsertMap inserts m or updates the map with the same UID.
func (s *SQLiteStore) UpsertMap(ctx context.Context, m *Map) error {
	if err := s.opened(); err != nil {
		return err
	}
	if m.UID == "" {
		return fmt.Errorf("map uid is required")
	}
	if m.ID == "" {
		m.ID = generateID()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO maps (id, uid, name, author, environment, author_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			author = excluded.author,
			environment = excluded.environment,
			author_time = excluded.author_time
		RETURNING id`,
		m.ID, m.UID, m.Name, m.Author, m.Environment, m.AuthorTime,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert map %s: %w", m.UID, err)
	}
	return nil
}

// ListMaps returns all maps ordered by name.
func (s *SQLiteStore) ListMaps(ctx context.Context) ([]*Map, error) {
	if err := s.opened(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, name, author, environment, author_time FROM maps ORDER BY name, uid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Map
	for rows.Next() {
		m := &Map{}
		if err := rows.Scan(&m.ID, &m.UID, &m.Name, &m.Author, &m.Environment, &m.AuthorTime); err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMap removes the map with uid, or returns ErrNotFound.
func (s *SQLiteStore) DeleteMap(ctx context.Context, uid string) error {
	if err := s.opened(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM maps WHERE uid = ?`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete map %s: %w", uid, err)
	}
	return expectOne(res, "map "+uid)
}
