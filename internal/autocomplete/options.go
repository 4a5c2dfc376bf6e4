package autocomplete

import (
	"errors"
	"fmt"
	"log"
	"time"

	"autosearch/internal/debounce"
	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
	"autosearch/internal/query"
)

// ErrInvalidOptions is wrapped by every error New returns
var ErrInvalidOptions = errors.New("autocomplete: invalid options")

// Executor runs one query; see query.Executor
type Executor = query.Executor

// ExecutorFunc adapts a plain function to Executor
type ExecutorFunc = query.ExecutorFunc

// Options configures a Model. Start from DefaultOptions; numeric fields are
// taken as given.
type Options struct {
	Executor Executor
	// OnQueryBecomesObsolete is told synchronously about every displaced or
	// disposed query. It may call Handle.Cancel to abort the executor call.
	OnQueryBecomesObsolete func(*query.Handle)
	// OnSubmit receives exactly one Submission per submit action
	OnSubmit func(domain.Submission)

	Debounce              time.Duration // zero settles on the next loop turn
	MinChars              int
	Limit                 int // zero selects query.DefaultLimit
	PreserveInputOnSubmit bool
	Placeholder           string

	KeyMap   KeyMap   // zero value selects DefaultKeyMap
	Renderer Renderer // nil selects PlainRenderer

	Bus    eventbus.EventBus // nil discards events
	Logger *log.Logger       // nil uses the standard logger
	Debug  bool              // log every keystroke and query outcome
	Now    func() time.Time
}

// DefaultOptions returns the documented defaults with no executor and no
// submit handler set
func DefaultOptions() Options {
	return Options{
		Debounce:              debounce.DefaultInterval,
		MinChars:              3,
		Limit:                 query.DefaultLimit,
		PreserveInputOnSubmit: true,
		KeyMap:                DefaultKeyMap(),
	}
}

func (o *Options) validate() error {
	switch {
	case o.Executor == nil:
		return fmt.Errorf("%w: an Executor is required", ErrInvalidOptions)
	case o.OnSubmit == nil:
		return fmt.Errorf("%w: an OnSubmit handler is required", ErrInvalidOptions)
	case o.Debounce < 0:
		return fmt.Errorf("%w: Debounce must not be negative, got %s", ErrInvalidOptions, o.Debounce)
	case o.MinChars < 0:
		return fmt.Errorf("%w: MinChars must not be negative, got %d", ErrInvalidOptions, o.MinChars)
	case o.Limit < 0:
		return fmt.Errorf("%w: Limit must not be negative, got %d", ErrInvalidOptions, o.Limit)
	}
	if o.KeyMap.isZero() {
		o.KeyMap = DefaultKeyMap()
	}
	if err := o.KeyMap.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

func (o *Options) fillDefaults() {
	if o.Renderer == nil {
		o.Renderer = PlainRenderer{}
	}
	if o.Bus == nil {
		o.Bus = eventbus.NullBus{}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
