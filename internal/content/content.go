// Package content decides which panel the widget shows below the input.
package content

import "autosearch/internal/domain"

// Kind is the panel to render
type Kind int

const (
	MinChars Kind = iota
	Error
	NoResults
	List
)

func (k Kind) String() string {
	switch k {
	case MinChars:
		return "min-chars"
	case Error:
		return "error"
	case NoResults:
		return "no-results"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Select returns the panel for the given state. The min-chars hint wins over
// everything, then the error panel, then the list itself. A list that is not
// loaded yet falls back to the hint.
func Select(gteMinChars, hasError bool, set domain.SuggestionSet) Kind {
	switch {
	case !gteMinChars:
		return MinChars
	case hasError:
		return Error
	case set.IsLoaded() && len(set.Items) > 0:
		return List
	case set.IsLoaded():
		return NoResults
	default:
		return MinChars
	}
}
