// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/helix-dev/helix/internal/controller"
	"github.com/helix-dev/helix/internal/tui"
)

// LoginCmd logs in through the controller: validates the pair, connects the
// real-time channel, and joins the default room. Returns LoginDoneMsg.
func LoginCmd(ctrl *controller.Controller, username string, campaignID int64) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Login(context.Background(), username, campaignID)
		return tui.LoginDoneMsg{Err: err}
	}
}

// CompleteTurnCmd runs the request/response half of a chat turn off the
// event loop. The local message was already appended by BeginTurn; the
// reply lands via the state pump.
func CompleteTurnCmd(ctrl *controller.Controller, turn controller.Turn) tea.Cmd {
	return func() tea.Msg {
		ctrl.CompleteTurn(context.Background(), turn)
		return tui.TurnDoneMsg{}
	}
}

// WaitForSessionCmd blocks until the controller publishes a state snapshot,
// then delivers it as SessionUpdateMsg. The app re-issues this command after
// every delivery, turning the controller's updates channel into a message
// stream.
func WaitForSessionCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ctrl.Updates()
		if !ok {
			return nil
		}
		return tui.SessionUpdateMsg{State: state}
	}
}
