// Package cli defines Cobra command definitions for the helix CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/chat"
	"github.com/helix-dev/helix/internal/config"
	"github.com/helix-dev/helix/internal/controller"
	"github.com/helix-dev/helix/internal/log"
	"github.com/helix-dev/helix/internal/transport"
	"github.com/helix-dev/helix/internal/tui"
	"github.com/helix-dev/helix/internal/tui/app"
)

var (
	verbose bool
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "helix",
	Short: "AI-assisted recruiting outreach workspace",
	Long: `Helix is a chat front-end for the outreach assistant.
Log in with your name, pick a campaign, and work with the assistant
to generate and refine candidate outreach sequences.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		cfg, err := config.ReadConfig(cwd)
		if err != nil {
			// Config not found or invalid, use defaults
			cfg = config.DefaultConfig()
		}

		ctrl := buildController(cfg, cwd)
		return tui.Run(app.New(cfg, ctrl))
	},
}

// buildController wires the transport, the API client, and the event log
// into a session controller.
func buildController(cfg *config.Config, cwd string) *controller.Controller {
	logger, err := log.NewLogger(cwd)
	if err != nil {
		logger = nil // session runs without an event log
	}

	rooms := make([]chat.Room, len(cfg.Rooms))
	for i, r := range cfg.Rooms {
		rooms[i] = chat.Room{ID: r.ID, Name: r.Name}
	}

	timeout := time.Duration(cfg.Backend.TimeoutSec) * time.Second
	backend := api.NewClient(cfg.Backend.APIBaseURL, timeout)
	socket := transport.NewClient(cfg.Backend.SocketURL)

	return controller.New(socket, backend, logger, controller.Options{
		UserID:         cfg.Chat.UserID,
		ConversationID: cfg.Chat.ConversationID,
		Rooms:          rooms,
		DefaultRoomID:  cfg.Chat.DefaultRoom,
	})
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Verbose returns true if --verbose flag is set.
func Verbose() bool {
	return verbose
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print request details for campaign commands")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(campaignsCmd)
	rootCmd.AddCommand(sequenceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(eventsCmd)
}
