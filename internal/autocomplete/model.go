// Package autocomplete is a search input that fetches suggestions while the
// user types. It is a Bubble Tea component: hosts route messages to Update
// and print View.
//
// Typing feeds a debouncer; settled text is handed to a query manager that
// decides which of several overlapping results is shown. Arrow keys and the
// pointer both move the selection, and both may start a submission; a
// submit locker lets exactly one of them win.
package autocomplete

import (
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"autosearch/internal/content"
	"autosearch/internal/debounce"
	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
	"autosearch/internal/perceived"
	"autosearch/internal/query"
	"autosearch/internal/selection"
	"autosearch/internal/submit"
)

// Model is the autocomplete widget
type Model struct {
	owner    string
	minChars int
	preserve bool
	keys     KeyMap
	renderer Renderer
	onSubmit func(domain.Submission)
	onObs    func(*query.Handle)
	bus      eventbus.EventBus
	logger   *log.Logger
	debug    *log.Logger

	input     textinput.Model
	perceived perceived.Input
	debouncer *debounce.Debouncer
	queries   *query.Manager
	selection *selection.Manager
	locker    submit.Locker

	// lastQuery is the settled text most recently sent to the query manager
	lastQuery string
	hasError  bool
	focused   bool
}

// New validates opts and creates a blurred widget
func New(opts Options) (*Model, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.fillDefaults()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = opts.Placeholder

	m := &Model{
		owner:     uuid.NewString(),
		minChars:  opts.MinChars,
		preserve:  opts.PreserveInputOnSubmit,
		keys:      opts.KeyMap,
		renderer:  opts.Renderer,
		onSubmit:  opts.OnSubmit,
		onObs:     opts.OnQueryBecomesObsolete,
		bus:       opts.Bus,
		logger:    opts.Logger,
		debug:     log.New(io.Discard, "", 0),
		input:     ti,
		debouncer: debounce.New(opts.Debounce),
		selection: selection.NewManager(),
		locker:    submit.NewLocker(),
	}
	if opts.Debug {
		m.debug = opts.Logger
	}
	m.selection.SetSuggestions(domain.Cleared())
	m.queries = query.NewManager(query.Options{
		Owner:      m.owner,
		Executor:   opts.Executor,
		OnObsolete: m.queryObsolete,
		Limit:      opts.Limit,
		Now:        opts.Now,
		Logger:     m.debug,
	})
	return m, nil
}

// Owner is stamped on every asynchronous message this widget produces
func (m *Model) Owner() string {
	return m.owner
}

// SetStaticCursor stops cursor blinking
func (m *Model) SetStaticCursor() {
	m.input.Cursor.SetMode(cursor.CursorStatic)
}

// Init implements the first half of tea.Model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles a message and returns the follow-up command
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounce.TickMsg:
		if value, ok := m.debouncer.Update(msg); ok {
			return m.settled(value)
		}
		return nil

	case query.ResultMsg:
		if msg.Owner == m.owner {
			m.resolve(msg)
		}
		return nil

	case pointerCommitMsg:
		if msg.owner != m.owner {
			return nil
		}
		if m.locker.LockInitiator() != domain.Pointer {
			return nil
		}
		m.debug.Printf("pointer submission committed (trigger %d)", msg.trigger)
		return m.submit()

	case PointerOverMsg:
		if !m.focused {
			return nil
		}
		m.locker.TrackPointer(msg.ID)
		m.selection.SelectID(msg.ID)
		return nil

	case PointerLeaveMsg:
		m.locker.TrackPointer(domain.NoID)
		m.selection.SelectID(domain.NoID)
		return nil

	case PointerDownMsg:
		if !m.focused {
			return nil
		}
		return m.pointerDown(msg.ID)

	case tea.KeyMsg:
		if !m.focused {
			return nil
		}
		return m.handleKey(msg)
	}

	if !m.focused {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.keyboardSelect(m.selection.SelectPrevious())
		return nil
	case key.Matches(msg, m.keys.Down):
		m.keyboardSelect(m.selection.SelectNext())
		return nil
	case key.Matches(msg, m.keys.Submit):
		if !m.locker.Lock(domain.Keyboard) {
			return nil
		}
		return m.submit()
	case key.Matches(msg, m.keys.Cancel):
		m.Blur()
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return tea.Batch(cmd, m.changed(after))
	}
	return cmd
}

// changed reacts to text typed by the user
func (m *Model) changed(value string) tea.Cmd {
	if m.locker.IsLocked() {
		m.input.SetValue(m.perceived.Value())
		m.input.CursorEnd()
		return nil
	}

	// A cancelled query leaves the list unknown until the text settles
	if !m.reachesMinChars(value) && m.queries.DisposeQueries() {
		m.selection.SetSuggestions(domain.Pending())
	}
	m.locker.TrackKeyboard(domain.NoID)
	m.perceived.Set(value)
	m.debug.Printf("input %q", value)
	return m.debouncer.Input(value)
}

// settled reacts to the debounced text
func (m *Model) settled(value string) tea.Cmd {
	trimmed := strings.TrimSpace(value)
	if m.reachesMinChars(trimmed) {
		if trimmed == m.lastQuery && m.selection.Suggestions().State != domain.ListPending {
			return nil
		}
		m.lastQuery = trimmed
		cmd := m.queries.PerformQuery(trimmed)
		if h := m.queries.Current(); h != nil {
			m.bus.Publish(eventbus.QueryDispatchedEvent{Widget: m.owner, Seq: h.Seq, Query: h.Query})
		}
		return cmd
	}

	m.lastQuery = ""
	m.selection.SetSuggestions(domain.Cleared())
	m.hasError = false
	return nil
}

func (m *Model) resolve(msg query.ResultMsg) {
	out := m.queries.Resolve(msg)
	switch out.Resolution {
	case query.Accepted:
		m.hasError = false
		m.selection.SelectID(domain.NoID)
		m.selection.SetSuggestions(domain.Loaded(out.Suggestions))
	case query.Failed:
		m.hasError = true
		m.selection.SelectID(domain.NoID)
		m.selection.SetSuggestions(domain.Cleared())
		m.logger.Printf("query %q failed: %v", out.Query, out.Err)
	case query.Unknown:
		return
	}
	m.bus.Publish(eventbus.QueryResolvedEvent{
		Widget:     m.owner,
		Seq:        out.Seq,
		Query:      out.Query,
		Resolution: out.Resolution.String(),
		Count:      len(out.Suggestions),
		Err:        out.Err,
	})
}

func (m *Model) queryObsolete(h *query.Handle) {
	m.bus.Publish(eventbus.QueryObsoleteEvent{Widget: m.owner, Seq: h.Seq, Query: h.Query})
	if m.onObs != nil {
		m.onObs(h)
	}
}

// keyboardSelect shows the text of s, or the typed text when s is nil
func (m *Model) keyboardSelect(s *domain.Suggestion) {
	if s == nil {
		m.locker.TrackKeyboard(domain.NoID)
		m.setPerceived(m.debouncer.Raw())
		return
	}
	m.locker.TrackKeyboard(s.ID)
	m.setPerceived(s.Text)
}

// pointerDown locks the submission for the pointer and shows the pressed
// suggestion. The submission itself happens when the returned command's
// message comes back, after the new text was rendered.
func (m *Model) pointerDown(id string) tea.Cmd {
	if !m.locker.Lock(domain.Pointer) {
		return nil
	}
	s := m.selection.SuggestionByID(id)
	if s == nil {
		m.locker.Release()
		return nil
	}
	m.locker.TrackPointer(id)
	trigger := m.setPerceived(s.Text)

	owner := m.owner
	return func() tea.Msg {
		return pointerCommitMsg{owner: owner, trigger: trigger}
	}
}

func (m *Model) submit() tea.Cmd {
	m.queries.DisposeQueries()

	sub := domain.Submission{
		ID:          m.locker.SelectedID(),
		Query:       m.perceived.Value(),
		Suggestions: m.selection.Suggestions(),
		Initiator:   m.locker.LockInitiator(),
	}
	m.debug.Printf("submit %q id=%q by %s", sub.Query, sub.ID, sub.Initiator)
	m.onSubmit(sub)
	m.bus.Publish(eventbus.SuggestionSubmittedEvent{Widget: m.owner, Submission: sub})

	m.locker.Reset()
	m.selection.SetSuggestions(domain.Cleared())
	m.selection.SelectID(domain.NoID)
	if !m.preserve {
		m.setPerceived("")
	}
	m.debouncer.Reset("")
	m.lastQuery = ""
	m.hasError = false
	m.Blur()

	owner := m.owner
	return func() tea.Msg {
		return SubmittedMsg{Owner: owner, Submission: sub}
	}
}

func (m *Model) setPerceived(text string) uint64 {
	trigger := m.perceived.Set(text)
	m.input.SetValue(text)
	m.input.CursorEnd()
	return trigger
}

func (m *Model) reachesMinChars(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= m.minChars
}

// Focus opens the widget
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur closes the widget
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Close stops the debouncer and disposes the current query
func (m *Model) Close() {
	m.debouncer.Stop()
	m.queries.DisposeQueries()
}

// Focused reports whether the input has focus
func (m *Model) Focused() bool {
	return m.focused
}

// IsOpen reports whether the suggestion panel is shown
func (m *Model) IsOpen() bool {
	return m.focused
}

// IsFetching reports whether a query is in flight or about to be dispatched
func (m *Model) IsFetching() bool {
	if m.queries.IsFetching() {
		return true
	}
	raw := m.debouncer.Raw()
	return m.debouncer.Pending() && raw != m.debouncer.Value() && m.reachesMinChars(raw)
}

// Value returns the text shown in the input
func (m *Model) Value() string {
	return m.perceived.Value()
}

// HasError reports whether the error panel is active
func (m *Model) HasError() bool {
	return m.hasError
}

// Suggestions returns the current suggestion list
func (m *Model) Suggestions() domain.SuggestionSet {
	return m.selection.Suggestions()
}

// SelectedID returns the highlighted suggestion id
func (m *Model) SelectedID() string {
	return m.selection.SelectedID()
}

// MinChars returns the configured minimum query length
func (m *Model) MinChars() int {
	return m.minChars
}

// KeyMap returns the active key bindings
func (m *Model) KeyMap() KeyMap {
	return m.keys
}

// Content returns the panel to show below the input
func (m *Model) Content() content.Kind {
	return content.Select(m.reachesMinChars(m.debouncer.Value()), m.hasError, m.selection.Suggestions())
}

// InputProps returns the render props of the input line
func (m *Model) InputProps() InputProps {
	return InputProps{
		Field:       m.input.View(),
		Value:       m.perceived.Value(),
		Placeholder: m.input.Placeholder,
		Focused:     m.focused,
		Fetching:    m.IsFetching(),
	}
}

// ListProps returns the render props of the suggestion list
func (m *Model) ListProps() ListProps {
	return ListProps{
		Suggestions: m.selection.Suggestions().Items,
		SelectedID:  m.selection.SelectedID(),
		Fetching:    m.IsFetching(),
	}
}

// ContainerProps returns the render props of the panel
func (m *Model) ContainerProps() ContainerProps {
	return ContainerProps{
		Open:     m.IsOpen(),
		Fetching: m.IsFetching(),
		Content:  m.Content(),
	}
}

// View renders the input and, while open, the panel below it
func (m *Model) View() string {
	r := m.renderer
	in := r.Input(m.InputProps())
	if !m.IsOpen() {
		return in
	}

	var body string
	switch m.Content() {
	case content.List:
		body = r.List(m.ListProps())
	case content.NoResults:
		body = r.NoResults()
	case content.Error:
		body = r.Error()
	default:
		body = r.MinChars(m.minChars)
	}
	return lipgloss.JoinVertical(lipgloss.Left, in, r.Container(m.ContainerProps(), body))
}
