// Package common provides shared session handling and components for UI features.
package common

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leaplist/pkg/core"
)

// SessionName is the cookie name of the viewer session.
const SessionName = "leaplist"

// Levels maps a login to its admin level.
type Levels func(login string) int

// CurrentViewer returns the viewer of the request's session.
func CurrentViewer(r *http.Request, store sessions.Store, levels Levels) (core.Viewer, bool) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return core.Viewer{}, false
	}
	login, _ := session.Values["login"].(string)
	if login == "" {
		return core.Viewer{}, false
	}
	nickname, _ := session.Values["nickname"].(string)
	v := core.Viewer{Login: login, Nickname: nickname}
	if levels != nil {
		v.Level = levels(login)
	}
	return v, true
}

// SaveViewer stores login and nickname in the request's session.
func SaveViewer(w http.ResponseWriter, r *http.Request, store sessions.Store, login, nickname string) error {
	// a tampered or stale cookie yields a fresh session, which is fine here
	session, _ := store.Get(r, SessionName)
	session.Values["login"] = strings.TrimSpace(login)
	session.Values["nickname"] = strings.TrimSpace(nickname)
	return session.Save(r, w)
}

// NewSessionStore returns the cookie store used for viewer sessions.
func NewSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}
