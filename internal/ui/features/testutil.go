// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplist/internal/admin"
	"github.com/leapstack-labs/leaplist/internal/catalog"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/rpc"
	"github.com/leapstack-labs/leaplist/internal/state"
	"github.com/leapstack-labs/leaplist/internal/testutil"
	"github.com/leapstack-labs/leaplist/internal/ui/features/common"
	"github.com/leapstack-labs/leaplist/internal/ui/notifier"
	"github.com/leapstack-labs/leaplist/internal/ui/transport"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/source/sqlsource/sqlite"
)

// TestPlayers is the number of players seeded by SetupTestFixture.
const TestPlayers = 45

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *state.SQLiteStore
	Transport    *transport.Transport
	Catalog      *catalog.Catalog
	Permissions  *admin.PermissionManager
	Commands     *admin.CommandManager
	RPC          *rpc.Dispatcher
	SessionStore *sessions.CookieStore
	Levels       map[string]int
}

// SetupTestFixture creates an in-memory store seeded with TestPlayers players
// named player01.. and one map, and builds the default lists over it.
// Login "root" has admin level 3.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	store := state.NewSQLiteStore(logger)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() {
		_ = store.Close()
	})

	for i := 1; i <= TestPlayers; i++ {
		require.NoError(t, store.UpsertPlayer(ctx, &state.Player{
			Login:    fmt.Sprintf("player%02d", i),
			Nickname: fmt.Sprintf("$f00Nick%02d", i),
			Zone:     "World",
		}))
	}
	require.NoError(t, store.UpsertMap(ctx, &state.Map{UID: "m1", Name: "A01", Author: "nadeo", AuthorTime: 23456}))

	tr := transport.New(notifier.New(), logger)
	perms := admin.NewPermissionManager(logger)
	commands := admin.NewCommandManager(perms, tr, logger)
	dispatcher := rpc.NewDispatcher(logger)
	rpc.RegisterGame(dispatcher, rpc.Game{Store: store, Chat: tr})
	dev := &admin.DevComponent{Permissions: perms, Commands: commands, RPC: dispatcher, Logger: logger}
	require.NoError(t, dev.OnStart(ctx))

	cat, err := catalog.New(nil, catalog.Env{
		DB:      store.DB(),
		Dialect: sqlite.Dialect,
		Handlers: catalog.NewHandlers(catalog.HandlerDeps{
			Store:       store,
			Chat:        tr,
			Permissions: perms,
			Logger:      logger,
		}),
		Displays: tr.Display,
		Logger:   logger,
	})
	require.NoError(t, err)

	return &TestFixture{
		Store:        store,
		Transport:    tr,
		Catalog:      cat,
		Permissions:  perms,
		Commands:     commands,
		RPC:          dispatcher,
		SessionStore: NewTestSessionStore(),
		Levels:       map[string]int{"root": 3},
	}
}

// Level returns the configured admin level of login.
func (f *TestFixture) Level(login string) int {
	return f.Levels[login]
}

// ViewerOf returns the viewer of login with its configured level.
func (f *TestFixture) ViewerOf(login string) core.Viewer {
	return core.Viewer{Login: login, Level: f.Level(login)}
}

// View returns the list view with id.
func (f *TestFixture) View(t *testing.T, id string) *listview.View {
	t.Helper()
	v, ok := f.Catalog.Get(id)
	require.True(t, ok, "list %s", id)
	return v
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// Login posts the login form to h and returns the session cookies.
func Login(t *testing.T, h http.Handler, login string) []*http.Cookie {
	t.Helper()
	form := url.Values{"login": {login}, "nickname": {"$o" + login}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

// SessionCookies returns cookies of a session logged in as login.
func SessionCookies(t *testing.T, store sessions.Store, login string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, common.SaveViewer(rec, httptest.NewRequest(http.MethodGet, "/", nil), store, login, ""))
	return rec.Result().Cookies()
}

// NewRequest builds a request carrying cookies. A non-empty body is sent as JSON.
func NewRequest(method, target, body string, cookies []*http.Cookie) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// StreamRecorder is a ResponseWriter safe to read while a handler streams.
type StreamRecorder struct {
	mu     sync.Mutex
	header http.Header
	code   int
	buf    bytes.Buffer
}

// NewStreamRecorder creates an empty recorder.
func NewStreamRecorder() *StreamRecorder {
	return &StreamRecorder{header: make(http.Header)}
}

// Header implements http.ResponseWriter.
func (s *StreamRecorder) Header() http.Header { return s.header }

// WriteHeader implements http.ResponseWriter.
func (s *StreamRecorder) WriteHeader(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == 0 {
		s.code = code
	}
}

// Write implements http.ResponseWriter.
func (s *StreamRecorder) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.buf.Write(p)
}

// Flush implements http.Flusher.
func (s *StreamRecorder) Flush() {}

// Code returns the response status.
func (s *StreamRecorder) Code() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// Body returns everything written so far.
func (s *StreamRecorder) Body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Stream is a running SSE request.
type Stream struct {
	Recorder *StreamRecorder
	cancel   context.CancelFunc
	done     chan struct{}
}

// OpenStream serves req on h in the background until Close.
func OpenStream(h http.Handler, req *http.Request) *Stream {
	ctx, cancel := context.WithCancel(req.Context())
	s := &Stream{Recorder: NewStreamRecorder(), cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		h.ServeHTTP(s.Recorder, req.WithContext(ctx))
	}()
	return s
}

// WaitFor waits until the stream body contains all of want.
func (s *Stream) WaitFor(t *testing.T, want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		body := s.Recorder.Body()
		for _, w := range want {
			if !strings.Contains(body, w) {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "stream never contained %q:\n%s", want, s.Recorder.Body())
}

// Close cancels the request and waits for the handler to return.
func (s *Stream) Close(t *testing.T) {
	t.Helper()
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not return")
	}
}
