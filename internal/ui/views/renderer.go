package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"autosearch/internal/autocomplete"
)

// Rows above the first suggestion: the input line and the container border
const listOffset = 2

// SuggestionRenderer is the default autocomplete.Renderer. It draws the
// panel in a bordered box and shows a spinner while the widget fetches.
type SuggestionRenderer struct {
	styles  *Styles
	spinner spinner.Model
	width   int // columns available to the widget, 0 for unlimited
}

var _ autocomplete.Renderer = (*SuggestionRenderer)(nil)

// NewSuggestionRenderer creates a renderer using styles
func NewSuggestionRenderer(styles *Styles) *SuggestionRenderer {
	return &SuggestionRenderer{
		styles: styles,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.Spinner),
		),
	}
}

// SetWidth limits suggestion rows so each fits on one terminal line
func (r *SuggestionRenderer) SetWidth(width int) {
	r.width = width
}

// Tick starts the spinner animation
func (r *SuggestionRenderer) Tick() tea.Cmd {
	return r.spinner.Tick
}

// Update advances the spinner; other messages are ignored
func (r *SuggestionRenderer) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	r.spinner, cmd = r.spinner.Update(msg)
	return cmd
}

func (r *SuggestionRenderer) Input(props autocomplete.InputProps) string {
	if props.Fetching {
		return props.Field + " " + r.spinner.View()
	}
	return props.Field
}

func (r *SuggestionRenderer) Container(props autocomplete.ContainerProps, body string) string {
	if !props.Open {
		return ""
	}
	return r.styles.Container.Render(body)
}

func (r *SuggestionRenderer) List(props autocomplete.ListProps) string {
	lines := make([]string, 0, len(props.Suggestions))
	for _, s := range props.Suggestions {
		// Keep one row per suggestion for SuggestionAt
		text := strings.ReplaceAll(s.Text, "\n", " ")
		style, marker := r.styles.Item, "  "
		if s.ID == props.SelectedID {
			style, marker = r.styles.Selected, "▸ "
		}
		if limit := r.width - r.styles.Container.GetHorizontalFrameSize(); r.width > 0 && limit > 0 {
			style = style.MaxWidth(limit)
		}
		lines = append(lines, style.Render(marker+text))
	}
	return strings.Join(lines, "\n")
}

func (r *SuggestionRenderer) MinChars(minChars int) string {
	return r.styles.Hint.Render(fmt.Sprintf("Type at least %d characters to search", minChars))
}

func (r *SuggestionRenderer) NoResults() string {
	return r.styles.Hint.Render("No results")
}

func (r *SuggestionRenderer) Error() string {
	return r.styles.StatusError.Render("Could not load suggestions, keep typing to retry")
}

// SuggestionAt maps a cell, counted from the top left of the widget, to
// the suggestion drawn there. Cells on the border or beside the box hold
// none.
func (r *SuggestionRenderer) SuggestionAt(props autocomplete.ListProps, x, y int) (string, bool) {
	idx := y - listOffset
	if idx < 0 || idx >= len(props.Suggestions) {
		return "", false
	}
	box := r.Container(autocomplete.ContainerProps{Open: true}, r.List(props))
	border := r.styles.Container.GetBorderLeftSize()
	if x < border || x >= lipgloss.Width(box)-r.styles.Container.GetBorderRightSize() {
		return "", false
	}
	return props.Suggestions[idx].ID, true
}
