// Package admin holds the in-game admin tooling: named permissions gated by
// admin level, chat commands, and the developer component that forwards
// calls to the RPC dispatcher.
package admin

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/leaplist/pkg/core"
)

// Permission is a named capability granted from an admin level upwards.
type Permission struct {
	Name        string
	Description string
	MinLevel    int
}

// PermissionManager is the registry of permissions.
type PermissionManager struct {
	mu     sync.RWMutex
	perms  map[string]Permission
	logger *slog.Logger
}

// NewPermissionManager creates an empty registry.
// If logger is nil, a discard logger is used.
func NewPermissionManager(logger *slog.Logger) *PermissionManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PermissionManager{perms: make(map[string]Permission), logger: logger}
}

// Register adds or replaces a permission.
func (m *PermissionManager) Register(name, description string, minLevel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perms[name] = Permission{Name: name, Description: description, MinLevel: minLevel}
	m.logger.Debug("registered permission",
		slog.String("permission", name),
		slog.Int("min_level", minLevel))
}

// Get returns the named permission.
func (m *PermissionManager) Get(name string) (Permission, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.perms[name]
	return p, ok
}

// Has reports whether viewer holds the permission. Unknown permissions are
// held by nobody.
func (m *PermissionManager) Has(viewer core.Viewer, name string) bool {
	p, ok := m.Get(name)
	return ok && viewer.Level >= p.MinLevel
}

// Permissions returns all permissions ordered by name.
func (m *PermissionManager) Permissions() []Permission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Permission, 0, len(m.perms))
	for _, p := range m.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
