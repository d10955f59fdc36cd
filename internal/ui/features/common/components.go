package common

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/leaplist/internal/listview"
	"github.com/leapstack-labs/leaplist/internal/starlark"
	"github.com/leapstack-labs/leaplist/internal/ui/resources"
	"github.com/leapstack-labs/leaplist/pkg/core"
)

// DatastarScript is the datastar client bundle.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// ChatID is the element id of the chat panel.
const ChatID = "chat"

// ListElementID returns the element id a list is rendered into.
func ListElementID(listID string) string {
	return "list-" + listID
}

var esc = templ.EscapeString[string]

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>%s - leaplist</title>`+
			`<link rel="stylesheet" href="%s"><script type="module" src="%s"></script></head><body>`,
			esc(title), resources.StaticPath("leaplist.css"), DatastarScript); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// ListLink is one entry of the index page.
type ListLink struct {
	ID    string
	Title string
}

// Index lists the available lists, or asks for a login.
func Index(viewer core.Viewer, loggedIn bool, lists []ListLink) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<main id="index">`)
		if !loggedIn {
			b.WriteString(`<form method="post" action="/login" class="login">` +
				`<input name="login" placeholder="Login" required>` +
				`<input name="nickname" placeholder="Nickname">` +
				`<button type="submit">Join</button></form>`)
		} else {
			fmt.Fprintf(&b, `<p class="viewer">Logged in as %s (level %d)</p><ul class="lists">`,
				esc(viewer.DisplayName()), viewer.Level)
			for _, l := range lists {
				fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, esc(ListPath(l.ID)), esc(l.Title))
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</main>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ListPage is the page shell of one list. The list itself arrives over SSE.
func ListPage(listID string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main data-signals="{%s: '', chat: ''}" data-init="@get('%s/updates')">`+
			`<div id="%s" class="list"></div>`+
			`<section class="chat"><ul id="%s"></ul>`+
			`<input data-bind:chat placeholder="Chat or //command" data-on:keydown="evt.key === 'Enter' && @post('/chat')">`+
			`</section></main>`,
			listview.SearchValue, esc(ListPath(listID)), esc(ListElementID(listID)), ChatID)
		return err
	})
}

// Hidden replaces a closed list with an empty placeholder.
func Hidden(listID string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="%s" class="list hidden"></div>`, esc(ListElementID(listID)))
		return err
	})
}

// ChatPanel renders the chat history with styles removed.
func ChatPanel(messages []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<ul id="%s">`, ChatID)
		for _, m := range messages {
			fmt.Fprintf(&b, `<li>%s</li>`, esc(starlark.StripStyles(m)))
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ListPath is the URL path of a list. The id is path-escaped so it cannot
// leave the quoted string of a datastar expression.
func ListPath(listID string) string {
	return "/lists/" + url.PathEscape(listID)
}

func post(listID, action string) string {
	return fmt.Sprintf(`data-on:click="@post('%s/action/%s')"`, esc(ListPath(listID)), url.PathEscape(action))
}

func sortMark(s core.SortIndicator) string {
	switch s {
	case core.SortAsc:
		return " ▲"
	case core.SortDesc:
		return " ▼"
	}
	return ""
}

// List renders one frame of a list.
func List(f *listview.Frame) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" class="list">`, esc(ListElementID(f.ID)))

		fmt.Fprintf(&b, `<header><span class="icon %s-%s"></span><h1>%s</h1>`,
			esc(f.IconStyle), esc(f.IconSubstyle), esc(f.Title))
		fmt.Fprintf(&b, `<button %s>Refresh</button><button %s>Close</button></header>`,
			post(f.ID, listview.Refresh.ActionID()), post(f.ID, listview.Close.ActionID()))

		if f.ProvideSearch {
			fmt.Fprintf(&b, `<div class="search"><input data-bind:%s placeholder="%s" value="%s">`+
				`<button %s>Search</button></div>`,
				listview.SearchValue, esc(listview.SearchPlaceholder), esc(f.Search), post(f.ID, listview.Search.ActionID()))
		}

		total := f.Width()
		b.WriteString(`<table><thead><tr>`)
		for i, col := range f.Fields {
			style := ""
			if total > 0 {
				style = fmt.Sprintf(`style="width:%.1f%%"`, col.Width/total*100)
			}
			if col.CanSort() {
				fmt.Fprintf(&b, `<th %s class="sortable" %s>%s%s</th>`,
					style, post(f.ID, listview.HeaderAction(i)), esc(col.Label), sortMark(col.Sort))
			} else {
				fmt.Fprintf(&b, `<th %s>%s</th>`, style, esc(col.Label))
			}
		}
		if len(f.Actions) > 0 {
			b.WriteString(`<th></th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)

		for r := range f.Rows {
			b.WriteString(`<tr>`)
			for c, col := range f.Fields {
				cell := esc(f.Cell(r, c))
				if col.Handler != nil {
					fmt.Fprintf(&b, `<td class="clickable %s" %s>%s</td>`, esc(col.Type), post(f.ID, listview.BodyAction(r, c)), cell)
				} else {
					fmt.Fprintf(&b, `<td class="%s">%s</td>`, esc(col.Type), cell)
				}
			}
			if len(f.Actions) > 0 {
				b.WriteString(`<td class="actions">`)
				for a, act := range f.Actions {
					fmt.Fprintf(&b, `<button title="%s" class="%s-%s" %s>%s</button>`,
						esc(act.Label), esc(act.IconStyle), esc(act.IconSubstyle), post(f.ID, listview.RowAction(r, a)), esc(act.Label))
				}
				b.WriteString(`</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)

		b.WriteString(`<footer>`)
		for _, kind := range []listview.ControlKind{listview.First, listview.Prev10, listview.Prev} {
			fmt.Fprintf(&b, `<button %s>%s</button>`, post(f.ID, kind.ActionID()), controlLabel(kind))
		}
		fmt.Fprintf(&b, `<span class="pages">Page %d / %d (%d)</span>`, f.Page, f.NumPages, f.Count)
		for _, kind := range []listview.ControlKind{listview.Next, listview.Next10, listview.Last} {
			fmt.Fprintf(&b, `<button %s>%s</button>`, post(f.ID, kind.ActionID()), controlLabel(kind))
		}
		b.WriteString(`</footer></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func controlLabel(kind listview.ControlKind) string {
	switch kind {
	case listview.First:
		return "«"
	case listview.Prev10:
		return "‹‹"
	case listview.Prev:
		return "‹"
	case listview.Next:
		return "›"
	case listview.Next10:
		return "››"
	case listview.Last:
		return "»"
	}
	return string(kind)
}
