// events.go implements the "helix events" command showing the session
// event log.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helix-dev/helix/internal/log"
)

var (
	eventsFilter string
	eventsTail   int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the session event log",
	Long: `Display events from .helix/log.jsonl: logins, room switches,
sent messages, dropped replies, and transport failures.`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsFilter, "type", "", "Only show events of this type")
	eventsCmd.Flags().IntVar(&eventsTail, "tail", 0, "Only show the last N events")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	logger, err := log.NewLogger(cwd)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		return fmt.Errorf("reading event log: %w", err)
	}

	if eventsFilter != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Event == eventsFilter {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if eventsTail > 0 && len(events) > eventsTail {
		events = events[len(events)-eventsTail:]
	}

	if len(events) == 0 {
		fmt.Println("No events recorded.")
		return nil
	}

	for _, e := range events {
		fmt.Printf("%s  %-24s  %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Event, formatEventExtra(e))
	}
	return nil
}

// formatEventExtra returns the context fields of an event as one line.
func formatEventExtra(e log.LogEvent) string {
	var parts []string

	if e.Username != "" {
		parts = append(parts, "user="+e.Username)
	}
	if e.RoomID != "" {
		parts = append(parts, "room="+e.RoomID)
	}
	if e.CampaignID != 0 {
		parts = append(parts, fmt.Sprintf("campaign=%d", e.CampaignID))
	}
	if e.SequenceID != 0 {
		parts = append(parts, fmt.Sprintf("sequence=%d", e.SequenceID))
	}
	if e.CorrelationID != "" {
		parts = append(parts, "corr="+e.CorrelationID)
	}
	if e.Stage != "" {
		parts = append(parts, "stage="+e.Stage)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Error != "" {
		parts = append(parts, "error: "+e.Error)
	}

	return strings.Join(parts, "  ")
}
