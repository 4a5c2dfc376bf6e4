// Package submit arbitrates between the keyboard and the pointer, the two
// input devices that can each start a submission.
package submit

import (
	"sync"

	"autosearch/internal/domain"
)

// State is the lock state: Unlocked or Locked
type State interface {
	isState()
}

// Unlocked means no submission is in progress
type Unlocked struct{}

// Locked means a submission was started by By
type Locked struct {
	By domain.Initiator
}

func (Unlocked) isState() {}
func (Locked) isState()   {}

// Locker is a mutual-exclusion gate for the submit action. Only the first
// Lock wins; the submit handler then reads whose tracked id is authoritative.
type Locker interface {
	Lock(by domain.Initiator) bool
	Release()
	State() State
	IsLocked() bool
	LockInitiator() domain.Initiator

	// Per-device trackers are updated regardless of the lock state
	TrackKeyboard(id string)
	TrackPointer(id string)
	LastKeyboardID() string
	LastPointerID() string

	// SelectedID returns the tracked id of the device holding the lock
	SelectedID() string
	// Reset releases the lock and clears both trackers
	Reset()
}

type locker struct {
	mu         sync.Mutex
	state      State
	keyboardID string
	pointerID  string
}

// NewLocker creates an unlocked Locker
func NewLocker() Locker {
	return &locker{state: Unlocked{}}
}

func (l *locker) Lock(by domain.Initiator) bool {
	if by != domain.Keyboard && by != domain.Pointer {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, locked := l.state.(Locked); locked {
		return false
	}
	l.state = Locked{By: by}
	return true
}

func (l *locker) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Unlocked{}
}

func (l *locker) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *locker) IsLocked() bool {
	_, locked := l.State().(Locked)
	return locked
}

func (l *locker) LockInitiator() domain.Initiator {
	if s, ok := l.State().(Locked); ok {
		return s.By
	}
	return domain.NoInitiator
}

func (l *locker) TrackKeyboard(id string) {
	l.mu.Lock()
	l.keyboardID = id
	l.mu.Unlock()
}

func (l *locker) TrackPointer(id string) {
	l.mu.Lock()
	l.pointerID = id
	l.mu.Unlock()
}

func (l *locker) LastKeyboardID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keyboardID
}

func (l *locker) LastPointerID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pointerID
}

func (l *locker) SelectedID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.state.(Locked)
	if !ok {
		return domain.NoID
	}
	switch s.By {
	case domain.Keyboard:
		return l.keyboardID
	case domain.Pointer:
		return l.pointerID
	}
	return domain.NoID
}

func (l *locker) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Unlocked{}
	l.keyboardID = domain.NoID
	l.pointerID = domain.NoID
}
