// Package perceived tracks the text visibly shown in the input field.
//
// The visible text differs from what the user typed while a suggestion is
// highlighted. Every Set produces a fresh trigger, so a flow that changed the
// text can wait for its own change to be applied before acting on it, even
// when the new text equals the old one.
package perceived

// Input holds the visible text and its change trigger
type Input struct {
	value   string
	trigger uint64
}

// Set stores the visible text and returns the trigger of this change
func (in *Input) Set(value string) uint64 {
	in.value = value
	in.trigger++
	return in.trigger
}

// Value returns the visible text
func (in *Input) Value() string {
	return in.value
}

// Trigger returns the trigger of the latest Set
func (in *Input) Trigger() uint64 {
	return in.trigger
}

// Current reports whether trigger belongs to the latest Set
func (in *Input) Current(trigger uint64) bool {
	return trigger != 0 && trigger == in.trigger
}
