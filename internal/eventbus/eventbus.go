package eventbus

import (
	"io"
	"log"
	"runtime/debug"
	"sync"

	"autosearch/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventQueryDispatched     = domain.EventQueryDispatched
	EventQueryObsolete       = domain.EventQueryObsolete
	EventQueryResolved       = domain.EventQueryResolved
	EventSuggestionSubmitted = domain.EventSuggestionSubmitted
	EventSourceReloaded      = domain.EventSourceReloaded
	EventScanCompleted       = domain.EventScanCompleted
	EventError               = domain.EventError
	EventConfigLoaded        = domain.EventConfigLoaded
	EventConfigSaved         = domain.EventConfigSaved
)

// Re-export domain event types
type QueryDispatchedEvent = domain.QueryDispatchedEvent
type QueryObsoleteEvent = domain.QueryObsoleteEvent
type QueryResolvedEvent = domain.QueryResolvedEvent
type SuggestionSubmittedEvent = domain.SuggestionSubmittedEvent
type SourceReloadedEvent = domain.SourceReloadedEvent
type ScanCompletedEvent = domain.ScanCompletedEvent
type ErrorEvent = domain.ErrorEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
	logger    *log.Logger
}

// New creates a new event bus logging through the standard logger
func New() EventBus {
	return NewWithLogger(log.Default())
}

// NewWithLogger creates a new event bus with its own logger
func NewWithLogger(logger *log.Logger) EventBus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
		logger:    logger,
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	switch event.Type() {
	case EventQueryDispatched, EventQueryObsolete:
		// Too chatty while typing
	default:
		b.logger.Printf("EventBus: Publishing event %s", event.Type())
	}

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		b.logger.Printf("Event bus channel full, dropping event: %v", event.Type())
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher. Pending events are discarded.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := b.handlers[event.Type()]
			// Copy so handlers run without the lock held
			subsCopy := make([]subscription, len(subs))
			copy(subsCopy, subs)
			b.mu.RUnlock()

			for _, s := range subsCopy {
				go func(h EventHandler, eventType EventType) {
					defer func() {
						if r := recover(); r != nil {
							b.logger.Printf("Event handler panic for %s: %v\nStack: %s", eventType, r, debug.Stack())
						}
					}()
					h(event)
				}(s.handler, event.Type())
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

// NullBus discards every event
type NullBus struct{}

func (NullBus) Publish(DomainEvent)                      {}
func (NullBus) Subscribe(EventType, EventHandler) func() { return func() {} }
func (NullBus) Close()                                   {}
