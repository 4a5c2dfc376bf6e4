package query

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"autosearch/internal/domain"
)

// Options configures a Manager
type Options struct {
	Owner      string // stamped on every ResultMsg
	Executor   Executor
	OnObsolete func(*Handle)
	Limit      int
	Now        func() time.Time
	Logger     *log.Logger
}

// Manager dispatches queries and decides which result is authoritative.
//
// Several queries may be in flight at once and their results may come back
// in any order. A success is accepted only if it was dispatched after the
// last accepted result and after the last disposal, so a slow reply can
// never overwrite a fresher one. A failure is shown only while its query is
// still current.
//
// Manager is not safe for concurrent use; it lives inside an update loop.
type Manager struct {
	owner      string
	executor   Executor
	onObsolete func(*Handle)
	limit      int
	now        func() time.Time
	logger     *log.Logger

	seq             uint64
	current         *Handle
	inflight        map[uint64]*Handle
	lastResolvedSeq uint64
	disposalSeq     uint64
}

// NewManager creates a query manager
func NewManager(opts Options) *Manager {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Manager{
		owner:      opts.Owner,
		executor:   opts.Executor,
		onObsolete: opts.OnObsolete,
		limit:      opts.Limit,
		now:        opts.Now,
		logger:     opts.Logger,
		inflight:   make(map[uint64]*Handle),
	}
}

// PerformQuery dispatches text to the executor and makes it the current
// query. The previously current query, if any, is reported obsolete before
// the new handle is stored. The returned command runs the executor.
func (m *Manager) PerformQuery(text string) tea.Cmd {
	m.seq++
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		Seq:          m.seq,
		Query:        text,
		DispatchedAt: m.now(),
		cancel:       cancel,
	}

	if m.current != nil {
		m.makeObsolete(m.current)
	}
	m.current = h
	m.inflight[h.Seq] = h
	m.logger.Printf("query %s dispatched (%d in flight)", h, len(m.inflight))

	executor, owner := m.executor, m.owner
	return func() tea.Msg {
		defer cancel()
		items, err := executor.Query(ctx, text)
		return ResultMsg{
			Owner:       owner,
			Seq:         h.Seq,
			Query:       text,
			Suggestions: items,
			Err:         err,
		}
	}
}

// DisposeQueries drops the current query. Results of every query dispatched
// so far will be ignored when they arrive. It reports whether a query was
// dropped.
func (m *Manager) DisposeQueries() bool {
	h := m.current
	if h == nil {
		return false
	}
	delete(m.inflight, h.Seq)
	m.current = nil
	m.makeObsolete(h)
	m.disposalSeq = m.seq
	m.logger.Printf("query %s disposed", h)
	return true
}

// Resolve arbitrates a ResultMsg. It always purges the handle.
func (m *Manager) Resolve(msg ResultMsg) Outcome {
	out := Outcome{Seq: msg.Seq, Query: msg.Query, Err: msg.Err}
	if msg.Owner != m.owner || msg.Seq == 0 || msg.Seq > m.seq {
		out.Resolution = Unknown
		return out
	}

	h := m.inflight[msg.Seq]
	delete(m.inflight, msg.Seq)
	wasCurrent := m.current != nil && m.current.Seq == msg.Seq
	if wasCurrent {
		m.current = nil
	}

	err := msg.Err
	if err == nil {
		if verr := domain.ValidateSuggestions(msg.Suggestions); verr != nil {
			err = fmt.Errorf("malformed result for %q: %w", msg.Query, verr)
			out.Err = err
		}
	}

	if err != nil {
		obsolete := h == nil || h.obsolete
		if wasCurrent && !obsolete && m.isFresh(msg.Seq) {
			m.lastResolvedSeq = msg.Seq
			out.Resolution = Failed
		} else {
			out.Resolution = FailureSuppressed
		}
		m.logger.Printf("query #%d %q %s: %v", msg.Seq, msg.Query, out.Resolution, err)
		return out
	}

	switch {
	case msg.Seq <= m.disposalSeq:
		out.Resolution = Disposed
	case msg.Seq <= m.lastResolvedSeq:
		out.Resolution = Stale
	default:
		m.lastResolvedSeq = msg.Seq
		out.Resolution = Accepted
		out.Suggestions = m.truncate(msg.Suggestions)
	}
	m.logger.Printf("query #%d %q %s (%d results)", msg.Seq, msg.Query, out.Resolution, len(msg.Suggestions))
	return out
}

// IsFetching reports whether a current query is in flight
func (m *Manager) IsFetching() bool {
	return m.current != nil
}

// Current returns the current handle or nil
func (m *Manager) Current() *Handle {
	return m.current
}

// InFlight returns the number of queries not yet resolved or disposed
func (m *Manager) InFlight() int {
	return len(m.inflight)
}

// Owner returns the id stamped on result messages
func (m *Manager) Owner() string {
	return m.owner
}

func (m *Manager) isFresh(seq uint64) bool {
	return seq > m.disposalSeq && seq > m.lastResolvedSeq
}

func (m *Manager) makeObsolete(h *Handle) {
	h.obsolete = true
	if m.onObsolete != nil {
		m.onObsolete(h)
	}
}

func (m *Manager) truncate(items []domain.Suggestion) []domain.Suggestion {
	if len(items) > m.limit {
		items = items[:m.limit]
	}
	out := make([]domain.Suggestion, len(items))
	copy(out, items)
	return out
}
