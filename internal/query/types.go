package query

import (
	"context"
	"fmt"
	"time"

	"autosearch/internal/domain"
)

// DefaultLimit is the number of suggestions kept from an accepted result
const DefaultLimit = 7

// Executor runs one query. Implementations should return promptly once ctx
// is cancelled; the manager never retries.
type Executor interface {
	Query(ctx context.Context, text string) ([]domain.Suggestion, error)
}

// ExecutorFunc adapts a plain function to Executor
type ExecutorFunc func(ctx context.Context, text string) ([]domain.Suggestion, error)

func (f ExecutorFunc) Query(ctx context.Context, text string) ([]domain.Suggestion, error) {
	return f(ctx, text)
}

// Handle identifies one dispatched query. Recency is decided by Seq, which
// increases with every dispatch of the owning manager.
type Handle struct {
	Seq          uint64
	Query        string
	DispatchedAt time.Time

	cancel   context.CancelFunc
	obsolete bool
}

// Cancel aborts the executor call behind the handle. The manager itself never
// calls it; OnObsolete callbacks may.
func (h *Handle) Cancel() {
	if h != nil && h.cancel != nil {
		h.cancel()
	}
}

// Obsolete reports whether the handle was displaced or disposed
func (h *Handle) Obsolete() bool {
	return h != nil && h.obsolete
}

func (h *Handle) String() string {
	if h == nil {
		return "<nil>"
	}
	return fmt.Sprintf("#%d %q", h.Seq, h.Query)
}

// ResultMsg carries an executor outcome back into the update loop
type ResultMsg struct {
	Owner       string
	Seq         uint64
	Query       string
	Suggestions []domain.Suggestion
	Err         error
}

// Resolution is the verdict on one ResultMsg
type Resolution int

const (
	// Unknown: the message was not issued by this manager
	Unknown Resolution = iota
	// Accepted: the result is authoritative and replaces the suggestions
	Accepted
	// Failed: the current query failed and the error should be shown
	Failed
	// Stale: a more recently dispatched result was already accepted
	Stale
	// Disposed: the queries were disposed after this one was dispatched
	Disposed
	// FailureSuppressed: an obsolete or disposed query failed
	FailureSuppressed
)

func (r Resolution) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	case Disposed:
		return "disposed"
	case FailureSuppressed:
		return "failure-suppressed"
	default:
		return "unknown"
	}
}

// Outcome is returned by Manager.Resolve
type Outcome struct {
	Resolution  Resolution
	Seq         uint64
	Query       string
	Suggestions []domain.Suggestion // set when Accepted, already limited
	Err         error
}
