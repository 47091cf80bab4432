package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/controller"
	"github.com/helix-dev/helix/internal/tui"
)

// LoadCampaignsCmd refreshes the campaign list through the controller.
// Returns CampaignsLoadedMsg with the list or the error.
func LoadCampaignsCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.LoadCampaigns(context.Background()); err != nil {
			return tui.CampaignsLoadedMsg{Err: err}
		}
		return tui.CampaignsLoadedMsg{Campaigns: ctrl.State().Campaigns}
	}
}

// CreateCampaignCmd creates a campaign and selects it. Returns
// CampaignCreatedMsg; on success the refreshed list arrives with it in
// controller state.
func CreateCampaignCmd(ctrl *controller.Controller, name, description string) tea.Cmd {
	return func() tea.Msg {
		id, err := ctrl.CreateCampaign(context.Background(), api.CreateCampaignRequest{
			Name:        name,
			Description: description,
		})
		return tui.CampaignCreatedMsg{ID: id, Err: err}
	}
}
