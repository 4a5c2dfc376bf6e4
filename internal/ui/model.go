package ui

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"autosearch/internal/autocomplete"
	"autosearch/internal/content"
	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
	"autosearch/internal/ui/views"
)

const defaultStatusTimeout = 4 * time.Second

// Params wires the host to its widget
type Params struct {
	Title    string
	Source   string // shown under the title, e.g. the dataset path
	Widget   *autocomplete.Model
	Renderer *views.SuggestionRenderer
	Styles   *views.Styles
	Ready    bool // print the readiness marker used by end-to-end tests
}

// Model is the application screen hosting one autocomplete widget
type Model struct {
	title    string
	source   string
	widget   *autocomplete.Model
	renderer *views.SuggestionRenderer
	styles   *views.Styles
	ready    bool

	keys    KeyMap
	help    help.Model
	helpers *HelpRenderer
	pager   *PagerOps

	width       int
	height      int
	hovering    bool
	inPagerMode bool

	status        string
	isError       bool
	statusTimeout time.Duration
	history       []domain.Submission

	program *tea.Program
}

// NewModel creates the host screen
func NewModel(p Params) *Model {
	if p.Styles == nil {
		p.Styles = views.NewStyles()
	}
	if p.Renderer == nil {
		p.Renderer = views.NewSuggestionRenderer(p.Styles)
	}
	return &Model{
		title:    p.Title,
		source:   p.Source,
		widget:   p.Widget,
		renderer: p.Renderer,
		styles:   p.Styles,
		ready:    p.Ready,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		helpers:  NewHelpRenderer(),
		pager:    NewPagerOps(),

		statusTimeout: defaultStatusTimeout,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// History returns the submissions made so far, oldest first
func (m *Model) History() []domain.Submission {
	return m.history
}

// Status returns the status line text
func (m *Model) Status() string {
	return m.status
}

// Init focuses the widget and starts the spinner
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.widget.Init(), m.widget.Focus(), m.renderer.Tick())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.renderer.SetWidth(msg.Width - m.styles.Main.GetHorizontalFrameSize())
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case spinner.TickMsg:
		if m.inPagerMode {
			return m, nil
		}
		return m, m.renderer.Update(msg)

	case autocomplete.SubmittedMsg:
		if msg.Owner != m.widget.Owner() {
			return m, nil
		}
		m.hovering = false
		m.history = append(m.history, msg.Submission)
		return m, m.setStatus(describeSubmission(msg.Submission), false)

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case pagerMsg:
		if msg.err != nil {
			log.Printf("%s pager failed: %v", msg.title, msg.err)
			return m, m.setStatus(fmt.Sprintf("Could not open %s: %v", msg.title, msg.err), true)
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, m.renderer.Tick()

	case clearStatusMsg:
		m.status = ""
		m.isError = false
		return m, nil
	}

	return m, m.widget.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.widget.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		return m.showPager("help", m.helpers.Help(m.widget.KeyMap(), m.keys, m.widget.MinChars()))
	case key.Matches(msg, m.keys.History):
		return m.showPager("history", m.helpers.History(m.history))
	}

	if m.widget.Focused() {
		return m.widget.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		return m.widget.Focus()
	case key.Matches(msg, m.keys.Exit):
		m.widget.Close()
		return tea.Quit
	}
	return nil
}

// handleMouse turns terminal mouse events into widget pointer messages
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.widget.IsOpen() || m.widget.Content() != content.List {
		return m.leave()
	}

	x := msg.X - m.styles.Main.GetPaddingLeft()
	id, ok := m.renderer.SuggestionAt(m.widget.ListProps(), x, msg.Y-m.widgetTop())
	switch msg.Action {
	case tea.MouseActionMotion:
		if !ok {
			return m.leave()
		}
		m.hovering = true
		return m.widget.Update(autocomplete.PointerOverMsg{ID: id})

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !ok {
			return nil
		}
		return m.widget.Update(autocomplete.PointerDownMsg{ID: id})
	}
	return nil
}

// leave reports the pointer leaving the list once per hover
func (m *Model) leave() tea.Cmd {
	if !m.hovering {
		return nil
	}
	m.hovering = false
	return m.widget.Update(autocomplete.PointerLeaveMsg{})
}

// widgetTop is the screen row of the widget's input line
func (m *Model) widgetTop() int {
	return m.styles.Main.GetPaddingTop() + lipgloss.Height(m.header())
}

func (m *Model) header() string {
	title := m.styles.Title.Render(m.title)
	if m.source == "" {
		return title
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.Dim.Render(m.source), "")
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.SourceReloadedEvent:
		return m.setStatus(fmt.Sprintf("Reloaded %d suggestions from %s", e.Count, e.Path), false)
	case eventbus.ScanCompletedEvent:
		return m.setStatus(fmt.Sprintf("Found %d repositories under %s", e.ReposFound, e.Root), false)
	case eventbus.ErrorEvent:
		return m.setStatus(e.Message, true)
	}
	return nil
}

func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.status = text
	m.isError = isError
	return tea.Tick(m.statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// showPager returns a command that pages text with ov
func (m *Model) showPager(title, text string) tea.Cmd {
	if m.program == nil {
		return m.setStatus(fmt.Sprintf("Could not open %s: no terminal", title), true)
	}
	return func() tea.Msg {
		m.program.Send(pauseRenderingMsg{})
		err := m.pager.Show(text)
		m.program.Send(resumeRenderingMsg{})
		return pagerMsg{title: title, err: err}
	}
}

// View renders the UI
func (m *Model) View() string {
	sections := []string{m.header(), m.widget.View()}

	if m.status != "" {
		style := m.styles.StatusSuccess
		if m.isError {
			style = m.styles.StatusError
		}
		sections = append(sections, m.styles.Status.Render(style.Render(m.status)))
	}

	keys := helpKeys{widget: m.widget.KeyMap(), host: m.keys, focused: m.widget.Focused()}
	sections = append(sections, m.styles.Help.Render(m.help.View(keys)))

	if m.ready {
		sections = append(sections, "__READY__")
	}
	return m.styles.Main.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
