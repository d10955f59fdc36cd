package transport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/ui/notifier"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinged(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestTransport_RenderAndHide(t *testing.T) {
	ctx := context.Background()
	n := notifier.New()
	tr := New(n, nil)
	alice := core.Viewer{Login: "alice"}

	sub := n.Subscribe(ListTopic("players", "alice"))
	defer n.Unsubscribe(sub)
	other := n.Subscribe(ListTopic("maps", "alice"))
	defer n.Unsubscribe(other)

	_, visible := tr.Frame("players", "alice")
	assert.False(t, visible)

	frame := &listview.Frame{ID: "players", Page: 2}
	require.NoError(t, tr.Display("players").Render(ctx, alice, frame))
	assert.True(t, pinged(sub))
	assert.False(t, pinged(other), "other lists are not pinged")

	got, visible := tr.Frame("players", "alice")
	assert.True(t, visible)
	assert.Same(t, frame, got)

	require.NoError(t, tr.Display("players").Hide(ctx, "alice", "bob"))
	assert.True(t, pinged(sub))
	_, visible = tr.Frame("players", "alice")
	assert.False(t, visible)
	_, visible = tr.Frame("players", "bob")
	assert.False(t, visible)

	tr.Attach("players", "alice")
	assert.True(t, tr.Detach("players", "alice", nil))
	got, _ = tr.Frame("players", "alice")
	assert.Nil(t, got)
}

func TestTransport_LastStreamDropsMailbox(t *testing.T) {
	ctx := context.Background()
	tr := New(notifier.New(), nil)
	alice := core.Viewer{Login: "alice"}

	tr.Attach("players", "alice")
	tr.Attach("players", "alice")
	tr.Attach("maps", "alice")
	assert.Equal(t, 2, tr.Streams("players", "alice"))
	require.NoError(t, tr.Display("players").Render(ctx, alice, &listview.Frame{ID: "players"}))

	var forgotten int
	onLast := func() { forgotten++ }

	assert.False(t, tr.Detach("players", "alice", onLast))
	assert.Zero(t, forgotten)
	got, visible := tr.Frame("players", "alice")
	assert.NotNil(t, got, "the other tab keeps the mailbox")
	assert.True(t, visible)

	assert.True(t, tr.Detach("players", "alice", onLast))
	assert.Equal(t, 1, forgotten)
	got, _ = tr.Frame("players", "alice")
	assert.Nil(t, got)
	assert.Zero(t, tr.Streams("players", "alice"))
	assert.Equal(t, 1, tr.Streams("maps", "alice"))
}

func TestTransport_Chat(t *testing.T) {
	ctx := context.Background()
	n := notifier.New()
	tr := New(n, nil)

	sub := n.Subscribe(ChatTopic("alice"))
	defer n.Unsubscribe(sub)

	require.NoError(t, tr.SendChat(ctx, "alice", "hello"))
	assert.True(t, pinged(sub))
	assert.Equal(t, []string{"hello"}, tr.Chat("alice"))
	assert.Empty(t, tr.Chat("bob"))

	for i := 0; i < ChatHistory+5; i++ {
		require.NoError(t, tr.SendChat(ctx, "alice", fmt.Sprintf("m%d", i)))
	}
	msgs := tr.Chat("alice")
	require.Len(t, msgs, ChatHistory)
	assert.Equal(t, "m5", msgs[0])
	assert.Equal(t, fmt.Sprintf("m%d", ChatHistory+4), msgs[len(msgs)-1])
}
