package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryDispatched     EventType = "QueryDispatched"
	EventQueryObsolete       EventType = "QueryObsolete"
	EventQueryResolved       EventType = "QueryResolved"
	EventSuggestionSubmitted EventType = "SuggestionSubmitted"
	EventSourceReloaded      EventType = "SourceReloaded"
	EventScanCompleted       EventType = "ScanCompleted"
	EventError               EventType = "Error"
	EventConfigLoaded        EventType = "ConfigLoaded"
	EventConfigSaved         EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryDispatchedEvent is emitted when a widget hands a query to its executor
type QueryDispatchedEvent struct {
	Widget string
	Seq    uint64
	Query  string
}

func (e QueryDispatchedEvent) Type() EventType { return EventQueryDispatched }

// QueryObsoleteEvent is emitted when a dispatched query is displaced or disposed
type QueryObsoleteEvent struct {
	Widget string
	Seq    uint64
	Query  string
}

func (e QueryObsoleteEvent) Type() EventType { return EventQueryObsolete }

// QueryResolvedEvent is emitted when a query result has been arbitrated
type QueryResolvedEvent struct {
	Widget     string
	Seq        uint64
	Query      string
	Resolution string
	Count      int
	Err        error
}

func (e QueryResolvedEvent) Type() EventType { return EventQueryResolved }

// SuggestionSubmittedEvent is emitted once per submit action
type SuggestionSubmittedEvent struct {
	Widget     string
	Submission Submission
}

func (e SuggestionSubmittedEvent) Type() EventType { return EventSuggestionSubmitted }

// SourceReloadedEvent is emitted when a dataset backing an executor changes
type SourceReloadedEvent struct {
	Path  string
	Count int
}

func (e SourceReloadedEvent) Type() EventType { return EventSourceReloaded }

// ScanCompletedEvent is emitted when repository discovery finishes
type ScanCompletedEvent struct {
	Root       string
	ReposFound int
}

func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// ErrorEvent is emitted when a background component fails
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
