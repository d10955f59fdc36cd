package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		id        string
		want      Event
		malformed bool
	}{
		{id: "list_header_0", want: HeaderClick{Col: 0}},
		{id: "list_header_12", want: HeaderClick{Col: 12}},
		{id: "list_body_3_1", want: BodyClick{Row: 3, Col: 1}},
		{id: "list_action_2_0", want: ActionClick{Row: 2, Action: 0}},
		{id: "list_button_next_10", want: Control{Kind: Next10}},
		{id: "list_button_prev", want: Control{Kind: Prev}},
		{id: "list_button_close", want: Control{Kind: Close}},
		{id: "other_widget_ok", want: Unrecognized{ID: "other_widget_ok"}},
		{id: "", want: Unrecognized{ID: ""}},
		{id: "list_header_", want: Unrecognized{ID: "list_header_"}, malformed: true},
		{id: "list_header_x", want: Unrecognized{ID: "list_header_x"}, malformed: true},
		{id: "list_header_1_2", want: Unrecognized{ID: "list_header_1_2"}, malformed: true},
		{id: "list_body_1", want: Unrecognized{ID: "list_body_1"}, malformed: true},
		{id: "list_body_-1_0", want: Unrecognized{ID: "list_body_-1_0"}, malformed: true},
		{id: "list_body_+1_0", want: Unrecognized{ID: "list_body_+1_0"}, malformed: true},
		{id: "list_action_1_2_3", want: Unrecognized{ID: "list_action_1_2_3"}, malformed: true},
		{id: "list_button_explode", want: Unrecognized{ID: "list_button_explode"}, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseEvent(tt.id)
			assert.Equal(t, tt.want, got)
			if tt.malformed {
				var mae *MalformedActionError
				require.ErrorAs(t, err, &mae)
				assert.Equal(t, tt.id, mae.Action)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActionEncodersRoundTrip(t *testing.T) {
	ev, err := ParseEvent(HeaderAction(4))
	require.NoError(t, err)
	assert.Equal(t, HeaderClick{Col: 4}, ev)

	ev, err = ParseEvent(BodyAction(19, 2))
	require.NoError(t, err)
	assert.Equal(t, BodyClick{Row: 19, Col: 2}, ev)

	ev, err = ParseEvent(RowAction(0, 1))
	require.NoError(t, err)
	assert.Equal(t, ActionClick{Row: 0, Action: 1}, ev)

	for _, kind := range Controls {
		ev, err := ParseEvent(kind.ActionID())
		require.NoError(t, err)
		assert.Equal(t, Control{Kind: kind}, ev)
	}
}

func TestControlActionIDs(t *testing.T) {
	assert.Equal(t, "list_button_first", First.ActionID())
	assert.Equal(t, "list_button_prev_10", Prev10.ActionID())
	assert.Equal(t, "list_button_search", Search.ActionID())
}
