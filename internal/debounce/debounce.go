// Package debounce turns a fast-changing raw value into a slow-changing
// settled value. It is a trailing-edge debouncer: every new raw value
// restarts the quiet period, there is no leading edge and no max-wait.
//
// The timer is a tea.Tick, so the settled value arrives through the
// Bubble Tea update loop as a TickMsg. Ticks that belong to an older input,
// to another debouncer, or to a stopped debouncer are ignored.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the quiet period used when none is configured
const DefaultInterval = 150 * time.Millisecond

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg is delivered when a quiet period ends
type TickMsg struct {
	ID    int
	Value string
	tag   int
}

// Debouncer holds the raw and settled values of one input
type Debouncer struct {
	id       int
	tag      int
	interval time.Duration
	raw      string
	settled  string
	pending  bool
	stopped  bool
}

// New creates a debouncer. A zero interval settles on the next loop turn.
func New(interval time.Duration) *Debouncer {
	if interval < 0 {
		interval = DefaultInterval
	}
	return &Debouncer{
		id:       nextID(),
		interval: interval,
	}
}

// ID identifies the debouncer in TickMsg
func (d *Debouncer) ID() int {
	return d.id
}

// Interval returns the quiet period
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Input records a new raw value and restarts the quiet period.
func (d *Debouncer) Input(value string) tea.Cmd {
	if d.stopped {
		return nil
	}
	d.raw = value
	d.tag++
	d.pending = true

	id, tag := d.id, d.tag
	if d.interval == 0 {
		return func() tea.Msg {
			return TickMsg{ID: id, Value: value, tag: tag}
		}
	}
	return tea.Tick(d.interval, func(time.Time) tea.Msg {
		return TickMsg{ID: id, Value: value, tag: tag}
	})
}

// Update consumes a TickMsg. It reports the settled value and true only for
// the tick issued by the latest Input.
func (d *Debouncer) Update(msg tea.Msg) (string, bool) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != d.id || d.stopped {
		return "", false
	}
	if tick.tag != d.tag || !d.pending {
		return "", false
	}
	d.pending = false
	d.settled = tick.Value
	return d.settled, true
}

// Reset sets raw and settled to value at once, dropping any pending tick
func (d *Debouncer) Reset(value string) {
	d.tag++
	d.pending = false
	d.raw = value
	d.settled = value
}

// Stop tears the debouncer down. A pending tick will never settle.
func (d *Debouncer) Stop() {
	d.stopped = true
	d.pending = false
	d.tag++
}

// Value returns the last settled value
func (d *Debouncer) Value() string {
	return d.settled
}

// Raw returns the last value passed to Input
func (d *Debouncer) Raw() string {
	return d.raw
}

// Pending reports whether a quiet period is running
func (d *Debouncer) Pending() bool {
	return d.pending
}
