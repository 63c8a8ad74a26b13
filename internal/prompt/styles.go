package prompt

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles of the prompt output
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Record  lipgloss.Style
}

// NewStyles creates styles rendering to w. Colors are dropped when w is
// not a terminal.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")),
		Label: r.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")),
		Value: r.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("#6C7086")),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")),
		Success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6E3A1")),
		Record: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1),
	}
}
