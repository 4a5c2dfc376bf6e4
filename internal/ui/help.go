package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"autosearch/internal/autocomplete"
	"autosearch/internal/domain"
)

// HelpRenderer renders the pages shown in the pager
type HelpRenderer struct {
	title   lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	desc    lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1),
		key:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		desc: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

func (r *HelpRenderer) binding(b *strings.Builder, kb key.Binding) {
	if !kb.Enabled() {
		return
	}
	keys := strings.Join(kb.Keys(), ", ")
	fmt.Fprintf(b, "  %-16s %s\n", r.key.Render(keys), r.desc.Render(kb.Help().Desc))
}

// Help renders the key reference
func (r *HelpRenderer) Help(widget autocomplete.KeyMap, host KeyMap, minChars int) string {
	var b strings.Builder

	b.WriteString(r.title.Render("Autosearch Help"))
	b.WriteString("\n")

	b.WriteString(r.section.Render("Search"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n", r.desc.Render(fmt.Sprintf("Suggestions appear once the query has %d characters.", minChars)))
	r.binding(&b, host.Focus)
	r.binding(&b, widget.Cancel)
	b.WriteString("\n")

	b.WriteString(r.section.Render("Suggestions"))
	b.WriteString("\n")
	r.binding(&b, widget.Up)
	r.binding(&b, widget.Down)
	r.binding(&b, widget.Submit)
	fmt.Fprintf(&b, "  %-16s %s\n", r.key.Render("click"), r.desc.Render("submit the suggestion under the pointer"))
	b.WriteString("\n")

	b.WriteString(r.section.Render("Other"))
	b.WriteString("\n")
	r.binding(&b, host.History)
	r.binding(&b, host.Help)
	r.binding(&b, host.Quit)

	return b.String()
}

// History renders submissions, newest first
func (r *HelpRenderer) History(history []domain.Submission) string {
	var b strings.Builder

	b.WriteString(r.title.Render("Submissions"))
	b.WriteString("\n")
	if len(history) == 0 {
		b.WriteString(r.desc.Render("Nothing submitted yet"))
		b.WriteString("\n")
		return b.String()
	}
	for i := len(history) - 1; i >= 0; i-- {
		b.WriteString(describeSubmission(history[i]))
		b.WriteString("\n")
	}
	return b.String()
}

// describeSubmission is the one-line form used by the status line and history
func describeSubmission(s domain.Submission) string {
	if item, ok := s.Selected(); ok {
		return fmt.Sprintf("selected %q (id %s, by %s)", item.Text, item.ID, s.Initiator)
	}
	return fmt.Sprintf("searched %q (by %s)", s.Query, s.Initiator)
}

// PagerOps shows long text in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps() *PagerOps {
	return &PagerOps{}
}

// SetProgram sets the program whose terminal the pager borrows
func (p *PagerOps) SetProgram(program *tea.Program) {
	p.program = program
}

// Show pages content with ov, taking the terminal from Bubble Tea while it runs
func (p *PagerOps) Show(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Do not write the page back on exit, it would scroll our screen
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
