// Package transport delivers list frames and chat messages to browser
// viewers. Each (list, login) pair has a mailbox holding the latest frame;
// SSE streams subscribe to the mailbox topics and re-read it when pinged.
package transport

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/ui/notifier"
	"github.com/leapstack-labs/leaplist/pkg/core"
)

// ChatHistory is the number of chat messages kept per viewer.
const ChatHistory = 50

type mailboxKey struct {
	list  string
	login string
}

type mailbox struct {
	frame   *listview.Frame
	visible bool
}

// Transport implements listview.Display for browser viewers.
type Transport struct {
	mu      sync.Mutex
	boxes   map[mailboxKey]*mailbox
	streams map[mailboxKey]int
	chat   map[string][]string
	notify *notifier.Notifier
	logger *slog.Logger
}

// New creates a transport pinging n. If logger is nil, a discard logger is used.
func New(n *notifier.Notifier, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transport{
		boxes:   make(map[mailboxKey]*mailbox),
		streams: make(map[mailboxKey]int),
		chat:    make(map[string][]string),
		notify:  n,
		logger:  logger,
	}
}

// ListTopic is the notifier topic of one viewer's mailbox for a list.
func ListTopic(listID, login string) string {
	return "list/" + listID + "/" + login
}

// ChatTopic is the notifier topic of one viewer's chat.
func ChatTopic(login string) string {
	return "chat/" + login
}

// Notifier returns the notifier pinged on every change.
func (t *Transport) Notifier() *notifier.Notifier {
	return t.notify
}

// Display returns the display of list listID.
func (t *Transport) Display(listID string) listview.Display {
	return &listDisplay{t: t, list: listID}
}

// Frame returns the latest frame of login for list and whether the list is
// currently shown.
func (t *Transport) Frame(listID, login string) (*listview.Frame, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	box, ok := t.boxes[mailboxKey{list: listID, login: login}]
	if !ok {
		return nil, false
	}
	return box.frame, box.visible
}

// Attach records an open stream of login for list. A login may have the
// same list open in several tabs; they share one mailbox.
func (t *Transport) Attach(listID, login string) {
	t.mu.Lock()
	t.streams[mailboxKey{list: listID, login: login}]++
	t.mu.Unlock()
}

// Detach records a closed stream of login for list and reports whether it
// was the last one. Then the mailbox is dropped and onLast runs before any
// new stream can attach.
func (t *Transport) Detach(listID, login string, onLast func()) bool {
	key := mailboxKey{list: listID, login: login}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := t.streams[key]; n > 1 {
		t.streams[key] = n - 1
		return false
	}
	delete(t.streams, key)
	delete(t.boxes, key)
	if onLast != nil {
		onLast()
	}
	return true
}

// Streams returns the number of open streams of login for list.
func (t *Transport) Streams(listID, login string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streams[mailboxKey{list: listID, login: login}]
}

// SendChat appends a message to the chat of login.
func (t *Transport) SendChat(_ context.Context, login, message string) error {
	t.mu.Lock()
	msgs := append(t.chat[login], message)
	if len(msgs) > ChatHistory {
		msgs = slices.Clone(msgs[len(msgs)-ChatHistory:])
	}
	t.chat[login] = msgs
	t.mu.Unlock()

	t.logger.Debug("chat message", slog.String("login", login), slog.String("message", message))
	t.notify.Notify(ChatTopic(login))
	return nil
}

// Chat returns the chat history of login, oldest first.
func (t *Transport) Chat(login string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.chat[login])
}

type listDisplay struct {
	t    *Transport
	list string
}

func (d *listDisplay) Render(_ context.Context, viewer core.Viewer, f *listview.Frame) error {
	key := mailboxKey{list: d.list, login: viewer.Login}
	d.t.mu.Lock()
	d.t.boxes[key] = &mailbox{frame: f, visible: true}
	d.t.mu.Unlock()

	d.t.notify.Notify(ListTopic(d.list, viewer.Login))
	return nil
}

func (d *listDisplay) Hide(_ context.Context, logins ...string) error {
	d.t.mu.Lock()
	for _, login := range logins {
		key := mailboxKey{list: d.list, login: login}
		if box, ok := d.t.boxes[key]; ok {
			box.visible = false
		} else {
			d.t.boxes[key] = &mailbox{}
		}
	}
	d.t.mu.Unlock()

	for _, login := range logins {
		d.t.notify.Notify(ListTopic(d.list, login))
	}
	return nil
}
