// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/controller"
)

// ============================================================================
// Session Messages
// ============================================================================

// SessionUpdateMsg carries a fresh state snapshot from the controller.
// Delivered whenever the controller applies a change, including changes
// originating on the real-time connection.
type SessionUpdateMsg struct {
	State controller.State
}

// LoginDoneMsg signals the outcome of a login attempt.
type LoginDoneMsg struct {
	Err error
}

// TurnDoneMsg signals that the request/response half of a chat turn
// finished. The reply itself arrives through SessionUpdateMsg.
type TurnDoneMsg struct{}

// ============================================================================
// Campaign Messages
// ============================================================================

// CampaignsLoadedMsg carries the refreshed campaign list.
type CampaignsLoadedMsg struct {
	Campaigns []api.Campaign
	Err       error
}

// CampaignCreatedMsg signals the outcome of a campaign creation.
type CampaignCreatedMsg struct {
	ID  int64
	Err error
}

// ============================================================================
// Control Messages
// ============================================================================

// CtrlCResetMsg resets the Ctrl+C confirmation state after timeout.
type CtrlCResetMsg struct{}

// ErrorMsg is a generic error message for unrecoverable failures.
type ErrorMsg struct {
	Err error
}
