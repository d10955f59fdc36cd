package listview

import (
	"slices"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/leapstack-labs/leaplist/pkg/fields"
)

// Frame is the render context of one list for one viewer.
// Fields and Actions are copies; transports may read them freely.
type Frame struct {
	ID           string
	Title        string
	IconStyle    string
	IconSubstyle string

	Fields  []core.Column
	Actions []core.Action
	Rows    []core.Entity

	Page     int
	NumPages int
	Count    int
	PageSize int

	Search        string
	Order         string // "key", "-key" or ""
	ProvideSearch bool

	accessors []core.FieldAccessor
}

// Cell renders the value of column col for row. It uses the column's renderer
// when set and stringifies the source attribute otherwise. Decorative columns
// and out-of-range indices render as "".
func (f *Frame) Cell(row, col int) string {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Fields) {
		return ""
	}
	c := &f.Fields[col]
	if c.Renderer != nil {
		return c.Renderer(f.Rows[row], c)
	}
	if col >= len(f.accessors) || f.accessors[col] == nil {
		return ""
	}
	val, ok := f.accessors[col](f.Rows[row])
	if !ok {
		return ""
	}
	return fields.Stringify(val)
}

// Cells renders every cell of every row.
func (f *Frame) Cells() [][]string {
	out := make([][]string, len(f.Rows))
	for r := range f.Rows {
		out[r] = make([]string, len(f.Fields))
		for c := range f.Fields {
			out[r][c] = f.Cell(r, c)
		}
	}
	return out
}

// Width returns the summed width of all columns.
func (f *Frame) Width() float64 {
	if len(f.Fields) == 0 {
		return 0
	}
	last := f.Fields[len(f.Fields)-1]
	return last.Left + last.Width
}

func (v *View) frame(s *Session) *Frame {
	cols := slices.Clone(v.fields)
	sortCol, sortDir := s.Sort()

	left := 0.0
	for i := range cols {
		cols[i].Left = left
		left += cols[i].Width
		if cols[i].Type == "" {
			cols[i].Type = core.DefaultColumnType
		}
		cols[i].Sort = core.SortNone
		if i == sortCol {
			if sortDir == core.Descending {
				cols[i].Sort = core.SortDesc
			} else {
				cols[i].Sort = core.SortAsc
			}
		}
	}

	order := ""
	if sortCol >= 0 && sortCol < len(cols) {
		order = cols[sortCol].Key
		if sortDir == core.Descending {
			order = "-" + order
		}
	}
	search, _ := s.Search()

	return &Frame{
		ID:            v.cfg.ID,
		Title:         v.cfg.Title,
		IconStyle:     v.cfg.IconStyle,
		IconSubstyle:  v.cfg.IconSubstyle,
		Fields:        cols,
		Actions:       slices.Clone(v.actions),
		Rows:          slices.Clone(s.rows),
		Page:          s.page,
		NumPages:      s.NumPages(),
		Count:         s.count,
		PageSize:      s.pageSize,
		Search:        search,
		Order:         order,
		ProvideSearch: !v.cfg.HideSearch,
		accessors:     v.accessors,
	}
}
