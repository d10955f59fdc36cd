package state

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Seed file names inside the seeds directory.
const (
	PlayersSeed = "players.csv"
	MapsSeed    = "maps.csv"
)

// SeedCSV upserts players.csv and maps.csv from dir. Missing files and a
// missing directory are not errors. Columns are matched by header name;
// players need "login" and maps need "uid".
func (s *SQLiteStore) SeedCSV(ctx context.Context, dir string) (SeedResult, error) {
	var res SeedResult
	if err := s.opened(); err != nil {
		return res, err
	}

	n, err := seedFile(filepath.Join(dir, PlayersSeed), "login", func(rec map[string]string) error {
		p := &Player{
			Login:    rec["login"],
			Nickname: rec["nickname"],
			Zone:     rec["zone"],
		}
		if v := rec["level"]; v != "" {
			level, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid level %q: %w", v, err)
			}
			p.Level = level
		}
		if v := rec["last_seen"]; v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return fmt.Errorf("invalid last_seen %q: %w", v, err)
			}
			p.LastSeen = ts.UTC()
		}
		return s.UpsertPlayer(ctx, p)
	})
	if err != nil {
		return res, err
	}
	res.Players = n

	n, err = seedFile(filepath.Join(dir, MapsSeed), "uid", func(rec map[string]string) error {
		m := &Map{
			UID:         rec["uid"],
			Name:        rec["name"],
			Author:      rec["author"],
			Environment: rec["environment"],
		}
		if v := rec["author_time"]; v != "" {
			ms, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid author_time %q: %w", v, err)
			}
			m.AuthorTime = ms
		}
		return s.UpsertMap(ctx, m)
	})
	if err != nil {
		return res, err
	}
	res.Maps = n

	s.logger.Debug("seeded state store", "dir", dir, "players", res.Players, "maps", res.Maps)
	return res, nil
}

// seedFile reads path as CSV with a header row and calls load per record.
func seedFile(path, required string, load func(rec map[string]string) error) (int, error) {
	file, err := os.Open(path) //nolint:gosec // seeds dir is user configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header of %s: %w", filepath.Base(path), err)
	}
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	if !slices.Contains(headers, required) {
		return 0, fmt.Errorf("%s: missing %q column", filepath.Base(path), required)
	}

	count := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			}
		}
		line, _ := reader.FieldPos(0)
		if err := load(rec); err != nil {
			return count, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		count++
	}
	return count, nil
}
