package autocomplete

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap binds the widget actions to keys
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// NewKeyMap builds a KeyMap from key lists, keeping the default help text.
// An empty list keeps the default keys for that action.
func NewKeyMap(up, down, submit, cancel []string) KeyMap {
	km := DefaultKeyMap()
	rebind := func(b *key.Binding, keys []string) {
		if len(keys) > 0 {
			b.SetKeys(keys...)
			b.SetHelp(keys[0], b.Help().Desc)
		}
	}
	rebind(&km.Up, up)
	rebind(&km.Down, down)
	rebind(&km.Submit, submit)
	rebind(&km.Cancel, cancel)
	return km
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Submit, k.Cancel}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Submit, k.Cancel}}
}

func (k KeyMap) isZero() bool {
	return len(k.Up.Keys()) == 0 && len(k.Down.Keys()) == 0 &&
		len(k.Submit.Keys()) == 0 && len(k.Cancel.Keys()) == 0
}

func (k KeyMap) validate() error {
	if len(k.Submit.Keys()) == 0 {
		return fmt.Errorf("the submit action has no key")
	}
	owner := map[string]string{}
	actions := []struct {
		name    string
		binding key.Binding
	}{
		{"up", k.Up},
		{"down", k.Down},
		{"submit", k.Submit},
		{"cancel", k.Cancel},
	}
	for _, a := range actions {
		for _, kk := range a.binding.Keys() {
			if prev, taken := owner[kk]; taken && prev != a.name {
				return fmt.Errorf("key %q is bound to both %s and %s", kk, prev, a.name)
			}
			owner[kk] = a.name
		}
	}
	return nil
}
