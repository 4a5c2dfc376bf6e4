package autocomplete

import (
	"fmt"
	"strings"

	"autosearch/internal/content"
	"autosearch/internal/domain"
)

// InputProps describe the input line
type InputProps struct {
	Field       string // the rendered text input, cursor included
	Value       string // the perceived input
	Placeholder string
	Focused     bool
	Fetching    bool
}

// ListProps describe a non-empty suggestion list
type ListProps struct {
	Suggestions []domain.Suggestion
	SelectedID  string
	Fetching    bool
}

// ContainerProps describe the panel below the input
type ContainerProps struct {
	Open     bool
	Fetching bool
	Content  content.Kind
}

// Renderer turns widget state into text. It never mutates the widget;
// pointer input reaches the widget as PointerOverMsg, PointerLeaveMsg and
// PointerDownMsg.
type Renderer interface {
	Input(props InputProps) string
	Container(props ContainerProps, body string) string
	List(props ListProps) string
	MinChars(minChars int) string
	NoResults() string
	Error() string
}

// PlainRenderer renders without styling. The panel starts on the row below
// the input and lists one suggestion per row.
type PlainRenderer struct{}

func (PlainRenderer) Input(props InputProps) string {
	if props.Fetching {
		return props.Field + " …"
	}
	return props.Field
}

func (PlainRenderer) Container(_ ContainerProps, body string) string {
	return body
}

func (PlainRenderer) List(props ListProps) string {
	var b strings.Builder
	for i, s := range props.Suggestions {
		if i > 0 {
			b.WriteByte('\n')
		}
		marker := "  "
		if s.ID == props.SelectedID {
			marker = "> "
		}
		b.WriteString(marker + s.Text)
	}
	return b.String()
}

func (PlainRenderer) MinChars(minChars int) string {
	return fmt.Sprintf("Type at least %d characters", minChars)
}

func (PlainRenderer) NoResults() string {
	return "No results"
}

func (PlainRenderer) Error() string {
	return "Something went wrong"
}
