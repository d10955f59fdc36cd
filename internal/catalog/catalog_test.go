package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/leapstack-labs/leaplist/internal/cli/config"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/state"
	"github.com/leapstack-labs/leaplist/internal/testutil"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frames struct {
	mu   sync.Mutex
	last map[string]*listview.Frame
	n    map[string]int
}

func newFrames() *frames {
	return &frames{last: make(map[string]*listview.Frame), n: make(map[string]int)}
}

func (d *frames) Render(_ context.Context, viewer core.Viewer, f *listview.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last[viewer.Login] = f
	d.n[viewer.Login]++
	return nil
}

func (d *frames) Hide(context.Context, ...string) error { return nil }

type chatLog struct {
	mu   sync.Mutex
	msgs []string
}

func (c *chatLog) SendChat(_ context.Context, login, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, login+": "+message)
	return nil
}

func (c *chatLog) lastMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) == 0 {
		return ""
	}
	return c.msgs[len(c.msgs)-1]
}

type levelPerms struct {
	min map[string]int
}

func (p *levelPerms) Register(name, _ string, minLevel int) {
	if p.min == nil {
		p.min = make(map[string]int)
	}
	p.min[name] = minLevel
}

func (p *levelPerms) Has(viewer core.Viewer, name string) bool {
	minLevel, ok := p.min[name]
	return ok && viewer.Level >= minLevel
}

type fixture struct {
	store   *state.SQLiteStore
	display *frames
	chat    *chatLog
	perms   *levelPerms
	catalog *Catalog
	env     Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	for _, p := range []state.Player{
		{Login: "alice", Nickname: "$f00Ali$ice", Level: 0, Zone: "World|Europe"},
		{Login: "bob", Nickname: "Bob", Level: 2, Zone: "World|Asia"},
		{Login: "carol", Nickname: "$oCarol", Level: 3, Zone: "World|Europe"},
	} {
		require.NoError(t, store.UpsertPlayer(ctx, &p))
	}
	require.NoError(t, store.UpsertMap(ctx, &state.Map{UID: "m1", Name: "$sA01", Author: "nadeo", Environment: "Stadium", AuthorTime: 65432}))

	f := &fixture{
		store:   store,
		display: newFrames(),
		chat:    &chatLog{},
		perms:   &levelPerms{},
	}
	f.env = Env{
		DB:      store.DB(),
		Dialect: sqlite.Dialect,
		Handlers: NewHandlers(HandlerDeps{
			Store:       store,
			Chat:        f.chat,
			Permissions: f.perms,
			Logger:      testutil.NewTestLogger(t),
		}),
		Displays: func(string) listview.Display { return f.display },
		Logger:   testutil.NewTestLogger(t),
	}
	cat, err := New(nil, f.env)
	require.NoError(t, err)
	f.catalog = cat
	return f
}

func (f *fixture) view(t *testing.T, id string) *listview.View {
	t.Helper()
	v, ok := f.catalog.Get(id)
	require.True(t, ok, "list %s", id)
	return v
}

func (f *fixture) frame(t *testing.T, login string) *listview.Frame {
	t.Helper()
	f.display.mu.Lock()
	defer f.display.mu.Unlock()
	fr, ok := f.display.last[login]
	require.True(t, ok, "no frame for %s", login)
	return fr
}

var admin = core.Viewer{Login: "root", Level: 3}

func TestCatalog_DefaultLists(t *testing.T) {
	f := newFixture(t)

	ids := make([]string, 0)
	for _, v := range f.catalog.Views() {
		ids = append(ids, v.ID())
	}
	assert.Equal(t, []string{"players", "maps"}, ids)
	assert.Equal(t, 2, f.perms.min[PermManagePlayers])
	assert.Equal(t, 2, f.perms.min[PermManageMaps])

	_, ok := f.catalog.Get("records")
	assert.False(t, ok)
}

func TestCatalog_RendersRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.view(t, "players").Display(ctx, admin))
	fr := f.frame(t, admin.Login)
	assert.Equal(t, 3, fr.Count)
	assert.Equal(t, "alice", fr.Cell(0, 0))
	assert.Equal(t, "Alice", fr.Cell(0, 1), "render expression strips styles")
	assert.Equal(t, "Carol", fr.Cell(2, 1))
	assert.Equal(t, "2", fr.Cell(1, 2))

	require.NoError(t, f.view(t, "maps").Display(ctx, admin))
	fr = f.frame(t, admin.Login)
	assert.Equal(t, "maps", fr.ID)
	assert.Equal(t, "A01", fr.Cell(0, 0))
	assert.Equal(t, "1:05.432", fr.Cell(0, 3))
}

func TestCatalog_SearchAndSortHitSQL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.view(t, "players")
	require.NoError(t, v.Display(ctx, admin))

	require.NoError(t, v.HandleAction(ctx, admin, listview.Search.ActionID(), core.Values{listview.SearchValue: "europe"}))
	fr := f.frame(t, admin.Login)
	assert.Equal(t, 2, fr.Count)

	require.NoError(t, v.HandleAction(ctx, admin, listview.HeaderAction(0), nil))
	require.NoError(t, v.HandleAction(ctx, admin, listview.HeaderAction(0), nil))
	fr = f.frame(t, admin.Login)
	assert.Equal(t, "-login", fr.Order)
	assert.Equal(t, "carol", fr.Cell(0, 0))
	assert.Equal(t, "alice", fr.Cell(1, 0))
}

func TestCatalog_PromoteRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.view(t, "players")

	require.NoError(t, v.Display(ctx, admin))
	before := f.display.n[admin.Login]

	require.NoError(t, v.HandleAction(ctx, admin, listview.RowAction(0, 0), nil))

	p, err := f.store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, before+1, f.display.n[admin.Login], "acting viewer sees a refresh")
	assert.Equal(t, "1", f.frame(t, admin.Login).Cell(0, 2))
	assert.Equal(t, "root: $ff0Promoted alice to level 1.", f.chat.lastMessage())

	// carol is at the maximum level
	require.NoError(t, v.HandleAction(ctx, admin, listview.RowAction(2, 0), nil))
	assert.Contains(t, f.chat.lastMessage(), "already has level 3")
}

func TestCatalog_RemovePlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.view(t, "players")

	require.NoError(t, v.Display(ctx, admin))
	require.NoError(t, v.HandleAction(ctx, admin, listview.RowAction(1, 1), nil))

	_, err := f.store.GetPlayer(ctx, "bob")
	assert.ErrorIs(t, err, state.ErrNotFound)
	assert.Equal(t, 2, f.frame(t, admin.Login).Count)
}

func TestCatalog_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.view(t, "players")
	guest := core.Viewer{Login: "guest", Level: 1}

	require.NoError(t, v.Display(ctx, guest))
	before := f.display.n[guest.Login]
	require.NoError(t, v.HandleAction(ctx, guest, listview.RowAction(1, 1), nil))

	n, err := f.store.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, before, f.display.n[guest.Login])
	assert.Equal(t, "guest: $f00You are not allowed to do this.", f.chat.lastMessage())
}

func TestCatalog_InspectAndRemoveMap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.view(t, "maps")

	require.NoError(t, v.Display(ctx, admin))
	require.NoError(t, v.HandleAction(ctx, admin, listview.BodyAction(0, 0), nil))
	msg := f.chat.lastMessage()
	assert.True(t, strings.HasPrefix(msg, "root: $z$s$fff» $ff0"), msg)
	assert.Contains(t, msg, "uid=m1")
	assert.Contains(t, msg, "author=nadeo")
	assert.NotContains(t, msg, ", id=", "row ids are hidden")

	require.NoError(t, v.HandleAction(ctx, admin, listview.RowAction(0, 0), nil))
	maps, err := f.store.ListMaps(ctx)
	require.NoError(t, err)
	assert.Empty(t, maps)
	assert.Equal(t, 0, f.frame(t, admin.Login).Count)
}

func TestCatalog_RefreshAllAndForget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.view(t, "players").Display(ctx, admin))
	require.NoError(t, f.view(t, "maps").Display(ctx, admin))
	before := f.display.n[admin.Login]

	require.NoError(t, f.catalog.RefreshAll(ctx))
	assert.Equal(t, before+2, f.display.n[admin.Login])

	f.catalog.Forget(admin.Login)
	require.NoError(t, f.catalog.RefreshAll(ctx))
	assert.Equal(t, before+2, f.display.n[admin.Login])
}

func TestBuild_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		list      config.ListConfig
		env       func(Env) Env
		errSubstr string
	}{
		{
			name:      "unknown handler",
			list:      config.ListConfig{ID: "x", Table: "players", Fields: []config.FieldConfig{{Label: "Login", Key: "login", Handler: "nope"}}},
			errSubstr: `unknown handler "nope"`,
		},
		{
			name:      "unknown action handler",
			list:      config.ListConfig{ID: "x", Table: "players", Fields: []config.FieldConfig{{Key: "login"}}, Actions: []config.ActionConfig{{Label: "Go", Handler: "nope"}}},
			errSubstr: `action "Go"`,
		},
		{
			name:      "bad render expression",
			list:      config.ListConfig{ID: "x", Table: "players", Fields: []config.FieldConfig{{Label: "Login", Key: "login", Render: "value +"}}},
			errSubstr: `field "Login"`,
		},
		{
			name:      "no database",
			list:      config.ListConfig{ID: "x", Fields: []config.FieldConfig{{Key: "login"}}},
			env:       func(e Env) Env { e.DB = nil; return e },
			errSubstr: "database connection not established",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := f.env
			if tt.env != nil {
				env = tt.env(env)
			}
			_, err := Build(tt.list, env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	var uhe *UnknownHandlerError
	_, err := Build(tests[0].list, f.env)
	require.ErrorAs(t, err, &uhe)
	assert.Contains(t, uhe.Available, "row.inspect")
}

func TestNew_DuplicateID(t *testing.T) {
	f := newFixture(t)
	list := config.ListConfig{ID: "p", Table: "players", Fields: []config.FieldConfig{{Key: "login"}}}
	_, err := New([]config.ListConfig{list, list}, f.env)
	assert.ErrorContains(t, err, `duplicate list id "p"`)
}

func TestHandlers_Register(t *testing.T) {
	h := NewHandlers(HandlerDeps{})
	assert.Equal(t, []string{"maps.remove", "players.promote", "players.remove", "row.inspect"}, h.Names())

	h.Register(Handler{Name: "custom", Fn: func(context.Context, core.Viewer, core.Values, core.Entity) error { return nil }})
	got, err := h.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", got.Name)
}
