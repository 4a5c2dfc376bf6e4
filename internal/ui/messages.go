package ui

import (
	"autosearch/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	title string
	err   error
}

// pauseRenderingMsg signals that an external pager owns the terminal
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals that the pager exited
type resumeRenderingMsg struct{}

// clearStatusMsg clears the status line
type clearStatusMsg struct{}
