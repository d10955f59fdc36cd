package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header    lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Highlight lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles for w. Without color every style renders plain text.
func NewStyles(w io.Writer, color bool) *Styles {
	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Bold:      lr.NewStyle().Bold(true),
		Muted:     lr.NewStyle().Foreground(lipgloss.Color("245")),
		Success:   lr.NewStyle().Foreground(lipgloss.Color("42")),
		Warning:   lr.NewStyle().Foreground(lipgloss.Color("214")),
		Error:     lr.NewStyle().Foreground(lipgloss.Color("196")),
		Info:      lr.NewStyle().Foreground(lipgloss.Color("117")),
		Highlight: lr.NewStyle().Foreground(lipgloss.Color("226")),

		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓"),
		StatusFailed:  lr.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗"),
	}
}

// NoColorEnv reports whether NO_COLOR or CLICOLOR=0 asks for plain output.
func NoColorEnv() bool {
	return termenv.EnvNoColor()
}
