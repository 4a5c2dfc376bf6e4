package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"autosearch/internal/autocomplete"
)

// KeyMap holds the bindings handled by the host rather than the widget
type KeyMap struct {
	Focus   key.Binding
	Help    key.Binding
	History key.Binding
	Quit    key.Binding
	Exit    key.Binding // only while the widget is blurred
}

// DefaultKeyMap returns the host bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Focus: key.NewBinding(
			key.WithKeys("/", "i"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		History: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "history"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Exit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpKeys joins widget and host bindings for the help footer
type helpKeys struct {
	widget  autocomplete.KeyMap
	host    KeyMap
	focused bool
}

func (k helpKeys) ShortHelp() []key.Binding {
	if k.focused {
		return append(k.widget.ShortHelp(), k.host.Help, k.host.Quit)
	}
	return []key.Binding{k.host.Focus, k.host.History, k.host.Help, k.host.Exit}
}

func (k helpKeys) FullHelp() [][]key.Binding {
	return append(k.widget.FullHelp(), []key.Binding{k.host.Focus, k.host.Help, k.host.History, k.host.Quit})
}
