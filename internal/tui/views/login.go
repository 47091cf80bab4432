// Package views provides TUI view components for the Helix application.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitLoginMsg is sent when the user submits a username and campaign.
type SubmitLoginMsg struct {
	Username   string
	CampaignID int64
}

// CreateCampaignMsg is sent when the user submits the new-campaign form.
type CreateCampaignMsg struct {
	Name        string
	Description string
}

// loginFocus tracks which part of the login form has keyboard focus.
type loginFocus int

const (
	focusUsername loginFocus = iota
	focusCampaigns
	focusNewName
	focusNewDescription
)

// ============================================================================
// LoginModel
// ============================================================================

// LoginModel is the view model for the login screen: a username field, the
// campaign picker, and an inline new-campaign form.
type LoginModel struct {
	usernameInput textinput.Model
	nameInput     textinput.Model
	descInput     textinput.Model

	campaigns []api.Campaign
	selected  int
	focus     loginFocus
	creating  bool
	loading   bool

	// Err is a login or campaign failure surfaced inline.
	Err error

	width  int
	height int
}

// NewLoginModel creates a new LoginModel with the given campaign list.
func NewLoginModel(campaigns []api.Campaign, width, height int) LoginModel {
	ui := textinput.New()
	ui.Placeholder = "Your name"
	ui.CharLimit = 64
	ui.Width = width - 12
	ui.Focus()

	ni := textinput.New()
	ni.Placeholder = "Campaign name"
	ni.CharLimit = 128
	ni.Width = width - 12

	di := textinput.New()
	di.Placeholder = "Short description (optional)"
	di.CharLimit = 256
	di.Width = width - 12

	return LoginModel{
		usernameInput: ui,
		nameInput:     ni,
		descInput:     di,
		campaigns:     campaigns,
		width:         width,
		height:        height,
	}
}

// Init returns the initial command for the login view.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetCampaigns replaces the campaign list, keeping the selection in range.
func (m *LoginModel) SetCampaigns(campaigns []api.Campaign) {
	m.campaigns = campaigns
	if m.selected >= len(campaigns) {
		m.selected = 0
	}
	m.loading = false
}

// SetLoading toggles the in-flight indicator for remote calls.
func (m *LoginModel) SetLoading(loading bool) {
	m.loading = loading
}

// SelectCampaignID moves the selection to the campaign with the given id.
func (m *LoginModel) SelectCampaignID(id int64) {
	for i, c := range m.campaigns {
		if c.ID == id {
			m.selected = i
			return
		}
	}
}

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case tui.KeyEnter:
			return m.handleEnter()

		case tui.KeyTab, tui.KeyDown:
			if !m.creating && msg.String() == tui.KeyDown && m.focus == focusCampaigns {
				if m.selected < len(m.campaigns)-1 {
					m.selected++
				}
				return m, nil
			}
			return m.cycleFocus(1)

		case tui.KeyUp:
			if m.focus == focusCampaigns {
				if m.selected > 0 {
					m.selected--
				}
				return m, nil
			}
			return m.cycleFocus(-1)

		case tui.KeyCtrlN:
			if !m.creating {
				m.creating = true
				return m.setFocus(focusNewName)
			}

		case tui.KeyEsc:
			if m.creating {
				m.creating = false
				m.nameInput.Reset()
				m.descInput.Reset()
				return m.setFocus(focusUsername)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.usernameInput.Width = msg.Width - 12
		m.nameInput.Width = msg.Width - 12
		m.descInput.Width = msg.Width - 12
		return m, nil
	}

	switch m.focus {
	case focusUsername:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	case focusNewName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case focusNewDescription:
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

// handleEnter submits the focused form: the login pair or the new campaign.
func (m LoginModel) handleEnter() (LoginModel, tea.Cmd) {
	if m.creating {
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			return m, nil
		}
		desc := strings.TrimSpace(m.descInput.Value())
		m.loading = true
		return m, func() tea.Msg {
			return CreateCampaignMsg{Name: name, Description: desc}
		}
	}

	username := strings.TrimSpace(m.usernameInput.Value())
	if username == "" || len(m.campaigns) == 0 {
		return m, nil
	}
	campaignID := m.campaigns[m.selected].ID
	m.loading = true
	return m, func() tea.Msg {
		return SubmitLoginMsg{Username: username, CampaignID: campaignID}
	}
}

// cycleFocus moves focus forward or backward through the visible fields.
func (m LoginModel) cycleFocus(dir int) (LoginModel, tea.Cmd) {
	order := []loginFocus{focusUsername, focusCampaigns}
	if m.creating {
		order = []loginFocus{focusUsername, focusCampaigns, focusNewName, focusNewDescription}
	}

	cur := 0
	for i, f := range order {
		if f == m.focus {
			cur = i
			break
		}
	}
	next := order[(cur+dir+len(order))%len(order)]
	return m.setFocus(next)
}

func (m LoginModel) setFocus(f loginFocus) (LoginModel, tea.Cmd) {
	m.focus = f
	m.usernameInput.Blur()
	m.nameInput.Blur()
	m.descInput.Blur()

	switch f {
	case focusUsername:
		return m, m.usernameInput.Focus()
	case focusNewName:
		return m, m.nameInput.Focus()
	case focusNewDescription:
		return m, m.descInput.Focus()
	}
	return m, nil
}

// View renders the login view.
func (m LoginModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render("Helix - Recruiting Outreach")
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(tui.ErrorStyle.Render(m.Err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString("Who are you?")
	b.WriteString("\n\n")
	b.WriteString(m.usernameInput.View())
	b.WriteString("\n\n")

	b.WriteString(m.renderCampaigns())
	b.WriteString("\n")

	if m.creating {
		b.WriteString("\n")
		b.WriteString(tui.TitleStyle.Render("New campaign"))
		b.WriteString("\n\n")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
		b.WriteString(m.descInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	var footer string
	if m.loading {
		footer = tui.DimStyle.Render("Working...")
	} else if m.creating {
		footer = tui.DimStyle.Render("Enter: Create · Esc: Cancel · Tab: Next field")
	} else {
		footer = tui.DimStyle.Render("Enter: Log in · ↑/↓: Pick campaign · Ctrl+N: New campaign · Ctrl+C: Exit")
	}
	b.WriteString(footer)

	content := b.String()
	boxed := tui.BoxStyle.
		Width(m.width - 4).
		Render(content)

	// Center vertically if there's space
	contentHeight := lipgloss.Height(boxed)
	if m.height > contentHeight {
		padding := (m.height - contentHeight) / 3
		if padding > 0 {
			boxed = strings.Repeat("\n", padding) + boxed
		}
	}

	return boxed
}

// renderCampaigns renders the campaign picker list.
func (m LoginModel) renderCampaigns() string {
	var b strings.Builder

	b.WriteString("Campaign")
	if m.focus == focusCampaigns {
		b.WriteString(tui.DimStyle.Render("  (↑/↓ to pick)"))
	}
	b.WriteString("\n\n")

	if len(m.campaigns) == 0 {
		b.WriteString(tui.DimStyle.Render("  No campaigns yet. Ctrl+N creates one."))
		return b.String()
	}

	for i, c := range m.campaigns {
		line := fmt.Sprintf("%s (#%d)", c.Name, c.ID)
		if i == m.selected {
			b.WriteString(tui.SelectedStyle.Render("  ▸ " + line))
		} else {
			b.WriteString("    " + line)
		}
		if i < len(m.campaigns)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
