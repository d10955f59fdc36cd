package common

import (
	"bytes"
	"context"
	"testing"

	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPath(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"players", "/lists/players"},
		{"bans_2024-q1", "/lists/bans_2024-q1"},
		{"a/b", "/lists/a%2Fb"},
		{"x');alert(1)//", "/lists/x%27%29%3Balert%281%29%2F%2F"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ListPath(tt.id))
		})
	}
}

func TestComponents_ListIDStaysInsideExpressions(t *testing.T) {
	const id = "x');alert(1)//"
	const path = "/lists/x%27%29%3Balert%281%29%2F%2F"
	ctx := context.Background()

	var list bytes.Buffer
	require.NoError(t, List(&listview.Frame{ID: id, Page: 1, NumPages: 1}).Render(ctx, &list))
	assert.Contains(t, list.String(), `@post('`+path+`/action/list_button_next')`)
	assert.NotContains(t, list.String(), "@post('/lists/x'")

	var page bytes.Buffer
	require.NoError(t, ListPage(id).Render(ctx, &page))
	assert.Contains(t, page.String(), `@get('`+path+`/updates')`)

	var index bytes.Buffer
	require.NoError(t, Index(core.Viewer{Login: "alice"}, true, []ListLink{{ID: id, Title: "Evil"}}).Render(ctx, &index))
	assert.Contains(t, index.String(), `href="`+path+`"`)
}
