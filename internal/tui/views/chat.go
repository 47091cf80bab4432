// Package views provides TUI view components for the Helix application.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helix-dev/helix/internal/chat"
	"github.com/helix-dev/helix/internal/controller"
	"github.com/helix-dev/helix/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SendChatMsg is sent when the user submits a chat message.
type SendChatMsg struct {
	Content string
}

// SwitchRoomMsg is sent when the user picks a different room.
type SwitchRoomMsg struct {
	RoomID string
}

// ============================================================================
// ChatModel
// ============================================================================

// ChatModel is the view model for the chat screen.
type ChatModel struct {
	session   controller.State
	textarea  textarea.Model
	viewport  viewport.Model
	isLoading bool
	spinner   spinner.Model
	picking   bool // room picker overlay active
	pickIdx   int
	width     int
	height    int
}

// NewChatModel creates a new ChatModel over the given session snapshot.
func NewChatModel(session controller.State, width, height int) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send)"
	ta.CharLimit = 5000
	ta.SetWidth(width - 8) // Account for box padding
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	// Ctrl+J for newline, Enter for submit
	keyMap := ta.KeyMap
	keyMap.InsertNewline = key.NewBinding(
		key.WithKeys("ctrl+j"),
		key.WithHelp("ctrl+j", "new line"),
	)
	ta.KeyMap = keyMap

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	vpHeight := height - 14
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}

	vp := viewport.New(vpWidth, vpHeight)
	vp.SetContent(formatMessages(session.Messages))

	return ChatModel{
		session:  session,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the chat view.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// SetSession refreshes the rendered session snapshot. A reply for the
// current room clears the loading indicator.
func (m *ChatModel) SetSession(session controller.State) {
	m.session = session
	m.viewport.SetContent(formatMessages(session.Messages))
	m.viewport.GotoBottom()
	if n := len(session.Messages); n > 0 && session.Messages[n-1].Sender != session.Username {
		m.isLoading = false
	}
}

// SetLoading toggles the thinking indicator.
func (m *ChatModel) SetLoading(loading bool) {
	m.isLoading = loading
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		keyStr := msg.String()

		if m.picking {
			return m.updateRoomPicker(keyStr)
		}

		switch keyStr {
		case tui.KeyEnter:
			content := strings.TrimSpace(m.textarea.Value())
			if content == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.isLoading = true
			return m, func() tea.Msg {
				return SendChatMsg{Content: content}
			}

		case tui.KeyCtrlR:
			m.picking = true
			m.pickIdx = m.activeRoomIndex()
			return m, nil
		}

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 14
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 8
		if vpWidth < 20 {
			vpWidth = 20
		}

		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(vpWidth)

		m.viewport.SetContent(formatMessages(m.session.Messages))
		return m, nil
	}

	if !m.isLoading {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// updateRoomPicker handles keys while the room picker overlay is active.
func (m ChatModel) updateRoomPicker(keyStr string) (ChatModel, tea.Cmd) {
	switch keyStr {
	case tui.KeyUp:
		if m.pickIdx > 0 {
			m.pickIdx--
		}
	case tui.KeyDown:
		if m.pickIdx < len(m.session.Rooms)-1 {
			m.pickIdx++
		}
	case tui.KeyEnter:
		m.picking = false
		if m.pickIdx < len(m.session.Rooms) {
			roomID := m.session.Rooms[m.pickIdx].ID
			if roomID != m.session.ActiveRoomID {
				return m, func() tea.Msg {
					return SwitchRoomMsg{RoomID: roomID}
				}
			}
		}
	case tui.KeyEsc:
		m.picking = false
	}
	return m, nil
}

func (m ChatModel) activeRoomIndex() int {
	for i, r := range m.session.Rooms {
		if r.ID == m.session.ActiveRoomID {
			return i
		}
	}
	return 0
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render(fmt.Sprintf("Chat: %s", m.roomName()))
	b.WriteString(header)
	b.WriteString("\n")

	if m.session.Banner != "" {
		b.WriteString(tui.WarningStyle.Render(m.session.Banner))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.picking {
		b.WriteString(m.renderRoomPicker())
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
	}

	if m.isLoading {
		loadingLine := fmt.Sprintf("%s Thinking...", m.spinner.View())
		b.WriteString(loadingLine)
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render(m.textarea.View()))
	} else {
		b.WriteString(m.textarea.View())
	}

	b.WriteString("\n\n")

	footer := tui.DimStyle.Render("Enter: Send · Ctrl+J: New line · Ctrl+R: Rooms · Tab: Workspace")
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

// renderRoomPicker renders the room selection overlay.
func (m ChatModel) renderRoomPicker() string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Switch room"))
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("Switching clears the visible history."))
	b.WriteString("\n\n")

	for i, r := range m.session.Rooms {
		line := r.Name
		if r.ID == m.session.ActiveRoomID {
			line += " (current)"
		}
		if i == m.pickIdx {
			b.WriteString(tui.SelectedStyle.Render("  ▸ " + line))
		} else {
			b.WriteString("    " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ChatModel) roomName() string {
	for _, r := range m.session.Rooms {
		if r.ID == m.session.ActiveRoomID {
			return r.Name
		}
	}
	return m.session.ActiveRoomID
}

// formatMessages formats the chat message history for display in the viewport.
func formatMessages(messages []chat.Message) string {
	if len(messages) == 0 {
		return tui.DimStyle.Render("No messages yet. Start the conversation!")
	}

	var b strings.Builder

	for i, msg := range messages {
		var prefix string
		var style lipgloss.Style

		switch msg.Sender {
		case chat.SenderAssistant:
			prefix = chat.SenderAssistant + ": "
			style = tui.AssistantStyle
		case chat.SenderSystem:
			prefix = "System: "
			style = tui.ErrorStyle
		default:
			prefix = msg.Sender + ": "
			style = tui.UserStyle
		}

		b.WriteString(style.Render(prefix))
		b.WriteString(msg.Text)

		if msg.ActionTool != "" {
			b.WriteString("\n")
			b.WriteString(tui.ActionTagStyle.Render("  [" + msg.ActionTool + "]"))
		}

		if i < len(messages)-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}
