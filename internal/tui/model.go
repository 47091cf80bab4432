// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/helix-dev/helix/internal/config"
	"github.com/helix-dev/helix/internal/controller"
)

// ViewState represents the current state of the TUI.
type ViewState int

const (
	StateLogin ViewState = iota // Username + campaign selection
	StateChat
	StateWorkspace
)

// Tab represents the active tab once logged in.
type Tab int

const (
	TabChat Tab = iota
	TabWorkspace
)

// Model is the main TUI model that holds application-wide state. The views
// own their input components; this holds what outlives a view.
type Model struct {
	// State management
	State        ViewState
	ActiveTab    Tab
	Err          error
	CtrlCPending bool // True when waiting for second Ctrl+C press

	// Configuration
	Cfg *config.Config

	// Session controller; the single owner of chat and workspace state.
	Controller *controller.Controller

	// Latest state snapshot from the controller.
	Session controller.State

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new Model with the given configuration and controller.
func NewModel(cfg *config.Config, ctrl *controller.Controller) *Model {
	return &Model{
		State:      StateLogin,
		ActiveTab:  TabChat,
		Cfg:        cfg,
		Controller: ctrl,
		Session:    ctrl.State(),

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
