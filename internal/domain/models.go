package domain

import (
	"errors"
	"fmt"
)

// NoID is the reserved id meaning "nothing selected"
const NoID = ""

var (
	ErrEmptyID     = errors.New("suggestion has an empty id")
	ErrDuplicateID = errors.New("suggestion id is not unique")
)

// Suggestion is a single candidate produced by a query executor
type Suggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Data any    `json:"data,omitempty"` // optional payload, passed through untouched
}

// ListState tells apart the three shapes a suggestion list can take
type ListState int

const (
	// ListPending means "don't know yet", e.g. right after queries were disposed
	ListPending ListState = iota
	// ListCleared means there is no applicable list
	ListCleared
	// ListLoaded means Items holds the latest accepted result (possibly empty)
	ListLoaded
)

func (s ListState) String() string {
	switch s {
	case ListPending:
		return "pending"
	case ListCleared:
		return "cleared"
	case ListLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("ListState(%d)", int(s))
	}
}

// SuggestionSet is an immutable snapshot of the suggestion list
type SuggestionSet struct {
	State ListState
	Items []Suggestion
}

// Pending returns a set in the transitional "unknown" state
func Pending() SuggestionSet {
	return SuggestionSet{State: ListPending}
}

// Cleared returns a set with no applicable list
func Cleared() SuggestionSet {
	return SuggestionSet{State: ListCleared}
}

// Loaded returns a set holding items. The slice is copied so later
// mutation by the producer cannot leak into the snapshot.
func Loaded(items []Suggestion) SuggestionSet {
	cp := make([]Suggestion, len(items))
	copy(cp, items)
	return SuggestionSet{State: ListLoaded, Items: cp}
}

// IsLoaded reports whether the set holds an accepted result
func (s SuggestionSet) IsLoaded() bool {
	return s.State == ListLoaded
}

// Len returns the number of items (0 unless loaded)
func (s SuggestionSet) Len() int {
	if s.State != ListLoaded {
		return 0
	}
	return len(s.Items)
}

// ValidateSuggestions checks the id constraints of a result set
func ValidateSuggestions(items []Suggestion) error {
	seen := make(map[string]struct{}, len(items))
	for i, s := range items {
		if s.ID == NoID {
			return fmt.Errorf("item %d (%q): %w", i, s.Text, ErrEmptyID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("item %d (%q): id %q: %w", i, s.Text, s.ID, ErrDuplicateID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Initiator identifies the input device that locked a submission
type Initiator int

const (
	NoInitiator Initiator = iota
	Keyboard
	Pointer
)

func (i Initiator) String() string {
	switch i {
	case Keyboard:
		return "keyboard"
	case Pointer:
		return "pointer"
	default:
		return "none"
	}
}

// Submission is what the widget hands to its OnSubmit callback
type Submission struct {
	ID          string // NoID when the query text was submitted without a selection
	Query       string
	Suggestions SuggestionSet
	Initiator   Initiator
}

// Selected returns the submitted suggestion, if any
func (s Submission) Selected() (Suggestion, bool) {
	if s.ID == NoID {
		return Suggestion{}, false
	}
	for _, item := range s.Suggestions.Items {
		if item.ID == s.ID {
			return item, true
		}
	}
	return Suggestion{}, false
}
