// Package app provides the main TUI application that wires all views together.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helix-dev/helix/internal/config"
	"github.com/helix-dev/helix/internal/controller"
	"github.com/helix-dev/helix/internal/tui"
	"github.com/helix-dev/helix/internal/tui/commands"
	"github.com/helix-dev/helix/internal/tui/views"
)

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model

	// View models
	loginView     views.LoginModel
	chatView      views.ChatModel
	workspaceView views.WorkspaceModel
}

// New creates a new App with the given configuration and controller.
func New(cfg *config.Config, ctrl *controller.Controller) *App {
	model := tui.NewModel(cfg, ctrl)

	return &App{
		model:     model,
		loginView: views.NewLoginModel(nil, model.Width, model.Height),
	}
}

// Init returns the initial command for the TUI: load the campaign list for
// the picker and start pumping controller state snapshots.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loginView.Init(),
		commands.LoadCampaignsCmd(a.model.Controller),
		commands.WaitForSessionCmd(a.model.Controller),
	)
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		// Only propagate to the currently active view
		var cmd tea.Cmd
		switch a.model.State {
		case tui.StateLogin:
			a.loginView, cmd = a.loginView.Update(msg)
		case tui.StateChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case tui.StateWorkspace:
			a.workspaceView, cmd = a.workspaceView.Update(msg)
		}
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyCtrlC:
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				a.model.Controller.Logout()
				return a, tea.Quit
			}
			// First press - set pending and start timeout
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})

		case tui.KeyTab:
			// Cycle chat <-> workspace once logged in
			if a.model.State == tui.StateChat || a.model.State == tui.StateWorkspace {
				return a, a.cycleTab()
			}
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.SessionUpdateMsg:
		return a.handleSessionUpdate(msg)

	case tui.CampaignsLoadedMsg:
		if msg.Err != nil {
			a.loginView.Err = msg.Err
		} else {
			a.loginView.SetCampaigns(msg.Campaigns)
		}
		a.loginView.SetLoading(false)
		return a, nil

	case tui.CampaignCreatedMsg:
		a.loginView.SetLoading(false)
		if msg.Err != nil {
			a.loginView.Err = msg.Err
			return a, nil
		}
		a.loginView.Err = nil
		a.loginView.SetCampaigns(a.model.Controller.State().Campaigns)
		a.loginView.SelectCampaignID(msg.ID)
		return a, nil

	case tui.LoginDoneMsg:
		a.loginView.SetLoading(false)
		if msg.Err != nil {
			a.loginView.Err = msg.Err
			return a, nil
		}
		a.transitionToChat()
		return a, a.chatView.Init()

	case tui.TurnDoneMsg:
		a.chatView.SetLoading(false)
		return a, nil
	}

	// Route messages based on current state
	switch a.model.State {
	case tui.StateLogin:
		return a.updateLogin(msg)
	case tui.StateChat:
		return a.updateChat(msg)
	case tui.StateWorkspace:
		return a.updateWorkspace(msg)
	}

	return a, nil
}

// View renders the current application state.
func (a *App) View() string {
	var content string

	switch a.model.State {
	case tui.StateLogin:
		content = a.loginView.View()
	case tui.StateChat:
		content = a.chatView.View()
	case tui.StateWorkspace:
		content = a.workspaceView.View()
	default:
		content = "Unknown state"
	}

	if a.model.State == tui.StateChat || a.model.State == tui.StateWorkspace {
		tabBar := a.renderTabBar(a.model.ActiveTab)
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", tabBar)
	}

	return content
}

// ============================================================================
// State Update Handlers
// ============================================================================

// handleSessionUpdate fans a controller snapshot out to the logged-in views
// and re-arms the pump.
func (a *App) handleSessionUpdate(msg tui.SessionUpdateMsg) (tea.Model, tea.Cmd) {
	a.model.Session = msg.State
	a.chatView.SetSession(msg.State)
	a.workspaceView.SetSession(msg.State)
	return a, commands.WaitForSessionCmd(a.model.Controller)
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.loginView, cmd = a.loginView.Update(msg)

	switch msg := msg.(type) {
	case views.SubmitLoginMsg:
		a.loginView.Err = nil
		return a, commands.LoginCmd(a.model.Controller, msg.Username, msg.CampaignID)

	case views.CreateCampaignMsg:
		a.loginView.Err = nil
		return a, commands.CreateCampaignCmd(a.model.Controller, msg.Name, msg.Description)
	}

	return a, cmd
}

func (a *App) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)

	switch msg := msg.(type) {
	case views.SendChatMsg:
		// BeginTurn appends the local message and fires the real-time emit
		// synchronously so history order matches call order; the HTTP half
		// runs as a command.
		turn, ok := a.model.Controller.BeginTurn(msg.Content)
		if !ok {
			a.chatView.SetLoading(false)
			return a, cmd
		}
		return a, tea.Batch(cmd, commands.CompleteTurnCmd(a.model.Controller, turn))

	case views.SwitchRoomMsg:
		a.model.Controller.SwitchRoom(msg.RoomID)
		a.chatView.SetLoading(false)
		return a, cmd
	}

	return a, cmd
}

func (a *App) updateWorkspace(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.workspaceView, cmd = a.workspaceView.Update(msg)

	if msg, ok := msg.(views.EditStepMsg); ok {
		a.model.Controller.EditSequenceStep(msg.StepKey, msg.Field, msg.Value)
		return a, cmd
	}

	return a, cmd
}

// ============================================================================
// State Transitions
// ============================================================================

// transitionToChat enters the logged-in chat screen.
func (a *App) transitionToChat() {
	a.model.State = tui.StateChat
	a.model.ActiveTab = tui.TabChat
	a.model.Session = a.model.Controller.State()

	a.chatView = views.NewChatModel(a.model.Session, a.model.Width, a.model.Height)
	a.workspaceView = views.NewWorkspaceModel(a.model.Session, a.model.Width, a.model.Height)
}

// cycleTab cycles between the chat and workspace tabs.
func (a *App) cycleTab() tea.Cmd {
	switch a.model.ActiveTab {
	case tui.TabChat:
		a.model.ActiveTab = tui.TabWorkspace
		a.model.State = tui.StateWorkspace
		a.workspaceView.SetSession(a.model.Session)
		return a.workspaceView.Init()

	case tui.TabWorkspace:
		a.model.ActiveTab = tui.TabChat
		a.model.State = tui.StateChat
	}
	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// renderTabBar renders the tab bar with the active tab highlighted.
func (a *App) renderTabBar(activeTab tui.Tab) string {
	tabs := []struct {
		name string
		tab  tui.Tab
	}{
		{"Chat", tui.TabChat},
		{"Workspace", tui.TabWorkspace},
	}

	var rendered []string
	for _, t := range tabs {
		if t.tab == activeTab {
			rendered = append(rendered, tui.ActiveTabStyle.Render(t.name))
		} else {
			rendered = append(rendered, tui.InactiveTabStyle.Render(t.name))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return lipgloss.NewStyle().
		Width(a.model.Width).
		Align(lipgloss.Center).
		Render(tabBar)
}
