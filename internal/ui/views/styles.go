package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Container     lipgloss.Style
	Item          lipgloss.Style
	Selected      lipgloss.Style
	Hint          lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	Spinner       lipgloss.Style
	Submission    lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Dim: lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Container: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Item:          lipgloss.NewStyle(),
		Selected:      lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true),
		Hint:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Spinner:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Submission:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
	}
}
