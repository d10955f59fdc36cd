// Package listview implements a data-bound list widget: a paginated, sortable,
// searchable table over a core.Query, with per-viewer state and an event router
// that turns opaque action identifiers into state changes or handler calls.
//
// A View owns one Session per viewer login. Every event for a viewer is
// serialized on that session; different viewers never share mutable state.
// Rendering happens on a Frame, a private copy of the column descriptors with
// per-render values (left offset, sort indicator) filled in, which is handed
// to a Display for exactly one viewer.
package listview
