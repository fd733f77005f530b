package ui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the launcher view.
type Styles struct {
	Title    lipgloss.Style
	Phase    lipgloss.Style
	Muted    lipgloss.Style
	Value    lipgloss.Style
	Notice   lipgloss.Style
	Help     lipgloss.Style
	Disabled lipgloss.Style
	Frame    lipgloss.Style
}

// DefaultStyles returns the launcher's color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Phase:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Notice:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		Frame:    lipgloss.NewStyle().Padding(1, 2),
	}
}
