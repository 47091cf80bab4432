// Package views provides TUI view components for the Helix application.
package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helix-dev/helix/internal/controller"
	"github.com/helix-dev/helix/internal/reply"
	"github.com/helix-dev/helix/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// EditStepMsg is sent when the user commits an edit to a sequence step field.
type EditStepMsg struct {
	StepKey string
	Field   string
	Value   string
}

// ============================================================================
// WorkspaceModel
// ============================================================================

// editableFields is the field cursor order within a step.
var editableFields = []struct {
	Name  string
	Label string
}{
	{controller.FieldChannel, "Channel"},
	{controller.FieldSubjectLine, "Subject"},
	{controller.FieldTiming, "Timing"},
	{controller.FieldMessageContent, "Message"},
}

// WorkspaceModel is the view model for the outreach-sequence workspace.
type WorkspaceModel struct {
	session controller.State

	stepKeys []string // sorted step keys of the displayed sequence
	stepIdx  int
	fieldIdx int

	editing   bool
	editInput textinput.Model

	width  int
	height int
}

// NewWorkspaceModel creates a new WorkspaceModel over the given session.
func NewWorkspaceModel(session controller.State, width, height int) WorkspaceModel {
	ei := textinput.New()
	ei.CharLimit = 2000
	ei.Width = width - 16

	m := WorkspaceModel{
		session:   session,
		editInput: ei,
		width:     width,
		height:    height,
	}
	m.reindex()
	return m
}

// SetSession refreshes the rendered session snapshot.
func (m *WorkspaceModel) SetSession(session controller.State) {
	m.session = session
	m.reindex()
}

// reindex rebuilds the sorted step key list and clamps the cursors.
func (m *WorkspaceModel) reindex() {
	m.stepKeys = nil
	if m.session.Sequence != nil {
		for k := range m.session.Sequence.Steps {
			m.stepKeys = append(m.stepKeys, k)
		}
		sort.Strings(m.stepKeys)
	}
	if m.stepIdx >= len(m.stepKeys) {
		m.stepIdx = 0
	}
	if m.fieldIdx >= len(editableFields) {
		m.fieldIdx = 0
	}
}

// Init returns the initial command for the workspace view.
func (m WorkspaceModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the workspace view.
func (m WorkspaceModel) Update(msg tea.Msg) (WorkspaceModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case tui.KeyEnter:
				m.editing = false
				m.editInput.Blur()
				stepKey := m.stepKeys[m.stepIdx]
				field := editableFields[m.fieldIdx].Name
				value := m.editInput.Value()
				return m, func() tea.Msg {
					return EditStepMsg{StepKey: stepKey, Field: field, Value: value}
				}
			case tui.KeyEsc:
				m.editing = false
				m.editInput.Blur()
				return m, nil
			}
			break
		}
		return m.updateBrowsing(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editInput.Width = msg.Width - 16
		return m, nil
	}

	if m.editing {
		m.editInput, cmd = m.editInput.Update(msg)
	}
	return m, cmd
}

// updateBrowsing handles keys while navigating steps and fields.
func (m WorkspaceModel) updateBrowsing(keyStr string) (WorkspaceModel, tea.Cmd) {
	switch keyStr {
	case tui.KeyUp:
		if m.fieldIdx > 0 {
			m.fieldIdx--
		}
	case tui.KeyDown:
		if m.fieldIdx < len(editableFields)-1 {
			m.fieldIdx++
		}
	case tui.KeyLeft:
		if m.stepIdx > 0 {
			m.stepIdx--
			m.fieldIdx = 0
		}
	case tui.KeyRight:
		if m.stepIdx < len(m.stepKeys)-1 {
			m.stepIdx++
			m.fieldIdx = 0
		}
	case tui.KeyEnter, "e":
		if len(m.stepKeys) == 0 {
			return m, nil
		}
		step := m.session.Sequence.Steps[m.stepKeys[m.stepIdx]]
		m.editInput.SetValue(fieldValue(step, editableFields[m.fieldIdx].Name))
		m.editInput.CursorEnd()
		m.editing = true
		return m, m.editInput.Focus()
	}
	return m, nil
}

// View renders the workspace view.
func (m WorkspaceModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render("Outreach Sequence")
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.session.Sequence == nil || len(m.stepKeys) == 0 {
		b.WriteString(tui.DimStyle.Render("No sequence yet."))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render("Ask the assistant to generate one, e.g."))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render("  \"Generate an outreach sequence for senior backend engineers\""))
	} else {
		b.WriteString(m.renderSequence())
	}

	b.WriteString("\n\n")

	var footer string
	if m.editing {
		footer = tui.DimStyle.Render("Enter: Save · Esc: Cancel")
	} else {
		footer = tui.DimStyle.Render("←/→: Step · ↑/↓: Field · Enter: Edit · Tab: Chat")
	}
	b.WriteString(footer)

	content := b.String()
	boxed := tui.BoxStyle.
		Width(m.width - 4).
		Render(content)

	contentHeight := lipgloss.Height(boxed)
	if m.height > contentHeight {
		padding := (m.height - contentHeight) / 3
		if padding > 0 {
			boxed = strings.Repeat("\n", padding) + boxed
		}
	}

	return boxed
}

// renderSequence renders the step tabs and the selected step's fields.
func (m WorkspaceModel) renderSequence() string {
	var b strings.Builder

	seq := m.session.Sequence
	if seq.ID != 0 {
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("Sequence #%d", seq.ID)))
		b.WriteString("\n\n")
	}

	// Step tab row
	var tabs []string
	for i, k := range m.stepKeys {
		label := stepLabel(k)
		if i == m.stepIdx {
			tabs = append(tabs, tui.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, tui.InactiveTabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	step := seq.Steps[m.stepKeys[m.stepIdx]]
	for i, f := range editableFields {
		label := tui.FieldLabelStyle.Render(fmt.Sprintf("%-8s", f.Label))
		cursor := "  "
		if i == m.fieldIdx {
			cursor = tui.SelectedStyle.Render("▸ ")
		}
		b.WriteString(cursor)
		b.WriteString(label)

		if m.editing && i == m.fieldIdx {
			b.WriteString(m.editInput.View())
		} else {
			value := fieldValue(step, f.Name)
			if value == "" {
				value = tui.DimStyle.Render("(empty)")
			}
			b.WriteString(value)
		}
		if i < len(editableFields)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// stepLabel renders "step1" as "Step 1", leaving unknown keys as-is.
func stepLabel(key string) string {
	if rest, ok := strings.CutPrefix(key, "step"); ok && rest != "" {
		return "Step " + rest
	}
	return key
}

// fieldValue returns the named editable field of a step.
func fieldValue(step reply.SequenceStep, field string) string {
	switch field {
	case controller.FieldChannel:
		return step.Channel
	case controller.FieldSubjectLine:
		return step.SubjectLine
	case controller.FieldTiming:
		return step.Timing
	case controller.FieldMessageContent:
		return step.MessageContent
	}
	return ""
}
