// Package selection owns the suggestion list shown by the widget and the id
// of the highlighted suggestion.
package selection

import (
	"autosearch/internal/domain"
)

// Manager holds the suggestion list and the selected id.
//
// The selected id always names a member of the current list or is
// domain.NoID; any update that would break this resets the selection.
type Manager struct {
	set      domain.SuggestionSet
	byID     map[string]int // id -> index into set.Items
	selected string
}

// NewManager creates a manager holding a loaded, empty list
func NewManager() *Manager {
	return &Manager{
		set:  domain.Loaded(nil),
		byID: map[string]int{},
	}
}

// SetSuggestions replaces the list. The selection survives only if its id is
// still present.
func (m *Manager) SetSuggestions(set domain.SuggestionSet) {
	if set.State != domain.ListLoaded {
		set.Items = nil
	}
	m.set = set
	m.byID = make(map[string]int, len(set.Items))
	for i, s := range set.Items {
		m.byID[s.ID] = i
	}
	if _, ok := m.byID[m.selected]; !ok {
		m.selected = domain.NoID
	}
}

// SelectID selects id, or clears the selection for domain.NoID. It returns
// false and leaves the state alone when id is not in the list.
func (m *Manager) SelectID(id string) bool {
	if id == domain.NoID {
		m.selected = domain.NoID
		return true
	}
	if _, ok := m.byID[id]; !ok {
		return false
	}
	m.selected = id
	return true
}

// SelectPrevious moves the selection one step up. Moving up from the first
// item deselects. Returns the new selection or nil.
func (m *Manager) SelectPrevious() *domain.Suggestion {
	idx := m.SelectedIndex()
	if idx < 0 || len(m.set.Items) == 0 {
		return nil
	}
	if idx == 0 {
		m.selected = domain.NoID
		return nil
	}
	return m.selectIndex(idx - 1)
}

// SelectNext moves the selection one step down, stopping at the last item.
// From no selection it selects the first item. Returns the new selection or
// nil when the list is empty.
func (m *Manager) SelectNext() *domain.Suggestion {
	n := len(m.set.Items)
	if n == 0 {
		return nil
	}
	idx := m.SelectedIndex()
	if idx < n-1 {
		idx++
	}
	return m.selectIndex(idx)
}

// SuggestionByID looks up id in the current list
func (m *Manager) SuggestionByID(id string) *domain.Suggestion {
	if id == domain.NoID {
		return nil
	}
	idx, ok := m.byID[id]
	if !ok {
		return nil
	}
	s := m.set.Items[idx]
	return &s
}

// Selected returns the selected suggestion or nil
func (m *Manager) Selected() *domain.Suggestion {
	return m.SuggestionByID(m.selected)
}

// SelectedID returns the selected id or domain.NoID
func (m *Manager) SelectedID() string {
	return m.selected
}

// SelectedIndex returns the index of the selection, -1 when nothing is selected
func (m *Manager) SelectedIndex() int {
	if m.selected == domain.NoID {
		return -1
	}
	if idx, ok := m.byID[m.selected]; ok {
		return idx
	}
	return -1
}

// Suggestions returns the current list snapshot
func (m *Manager) Suggestions() domain.SuggestionSet {
	return m.set
}

func (m *Manager) selectIndex(idx int) *domain.Suggestion {
	s := m.set.Items[idx]
	m.selected = s.ID
	return &s
}
