package autocomplete

import "autosearch/internal/domain"

// PointerOverMsg tells the widget the pointer rests on a suggestion
type PointerOverMsg struct {
	ID string
}

// PointerLeaveMsg tells the widget the pointer left the suggestion list
type PointerLeaveMsg struct{}

// PointerDownMsg tells the widget a suggestion was pressed
type PointerDownMsg struct {
	ID string
}

// SubmittedMsg is emitted after OnSubmit ran
type SubmittedMsg struct {
	Owner      string
	Submission domain.Submission
}

// pointerCommitMsg arrives once the text of a pressed suggestion is shown
type pointerCommitMsg struct {
	owner   string
	trigger uint64
}
