package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplist/internal/testutil"
	"github.com/leapstack-labs/leaplist/internal/ui/features"
)

func newTestServer(t *testing.T, seedsDir string) (*Server, *features.TestFixture) {
	t.Helper()
	f := features.SetupTestFixture(t)
	s := NewServer(Config{
		Catalog:   f.Catalog,
		Transport: f.Transport,
		Commands:  f.Commands,
		Seeder:    f.Store,
		Levels:    f.Level,
		Port:      0,
		Watch:     true,
		SeedsDir:  seedsDir,
		Logger:    testutil.NewTestLogger(t),
	})
	return s, f
}

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Config{Host: "127.0.0.1", Port: 8766})
	assert.Equal(t, "127.0.0.1:8766", s.addr)
	assert.Equal(t, 5*time.Second, s.shutdownTimeout)
	assert.NotNil(t, s.sessionStore, "a random session secret is generated")
	assert.NotNil(t, s.logger)
}

func TestServer_Handler(t *testing.T) {
	s, _ := newTestServer(t, "")
	h, err := s.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/leaplist.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".list")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)

	cookies := features.Login(t, h, "root")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, features.NewRequest(http.MethodPost, "/chat", `{"chat":"//call system.listMethods"}`, cookies))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	msgs := s.transport.Chat("root")
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[len(msgs)-1], `"GetStatus"`)
}

func writeSeeds(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "players.csv"), []byte(content), 0o600))
}

func TestServer_ReseedRefreshesOpenLists(t *testing.T) {
	dir := t.TempDir()
	s, f := newTestServer(t, dir)
	h, err := s.Handler()
	require.NoError(t, err)
	cookies := features.Login(t, h, "root")

	stream := features.OpenStream(h, features.NewRequest(http.MethodGet, "/lists/players/updates", "", cookies))
	defer stream.Close(t)
	stream.WaitFor(t, "Page 1 / 3 (45)")

	writeSeeds(t, dir, "login,nickname,level\nzed,Zed,1\n")
	s.reseed(context.Background())

	stream.WaitFor(t, "Page 1 / 3 (46)")
	n, err := f.Store.CountPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 46, n)
}

func TestServer_WatchSeeds(t *testing.T) {
	dir := t.TempDir()
	s, f := newTestServer(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchSeeds(ctx) }()

	// the watcher registers asynchronously; rewrite until it notices
	require.Eventually(t, func() bool {
		writeSeeds(t, dir, "login,nickname\nnew1,New\n")
		_, err := f.Store.GetPlayer(context.Background(), "new1")
		return err == nil
	}, 3*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
