package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// Register adds a dialect to the registry.
// Called by driver subpackages in their init() functions.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name] = d
}

// Get retrieves a dialect by name.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// ListDialects returns all registered dialect names (sorted).
func ListDialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens and pings a database for the named dialect.
func Open(ctx context.Context, dialect, dsn string) (*sql.DB, *Dialect, error) {
	d, ok := Get(dialect)
	if !ok {
		return nil, nil, &UnknownDialectError{Name: dialect, Available: ListDialects()}
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", d.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping %s database: %w", d.Name, err)
	}
	return db, d, nil
}

// UnknownDialectError is returned when an unregistered dialect is requested.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown source driver %q\nAvailable drivers: %v\nHint: Check source.driver in leaplist.yaml", e.Name, e.Available)
}
