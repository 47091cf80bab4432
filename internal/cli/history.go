// history.go implements the "helix history" command showing a stored
// conversation.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helix-dev/helix/internal/chat"
)

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "Show a stored conversation",
	Long: `Fetch a conversation transcript from the backend. Defaults to the
conversation id in .helix/config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}

	conversationID := cfg.Chat.ConversationID
	if len(args) == 1 {
		conversationID, err = parseID(args[0])
		if err != nil {
			return err
		}
	}

	conv, err := client.GetConversation(cmd.Context(), conversationID)
	if err != nil {
		return fmt.Errorf("fetching conversation: %w", err)
	}

	if conv.Messages == "" {
		fmt.Println("Conversation is empty.")
		return nil
	}

	// The backend stores the transcript as a JSON-encoded message list.
	// Fall back to the raw text if it does not decode.
	var messages []chat.Message
	if err := json.Unmarshal([]byte(conv.Messages), &messages); err != nil || len(messages) == 0 {
		fmt.Println(conv.Messages)
		return nil
	}

	fmt.Printf("Conversation #%d (campaign %d)\n\n", conv.ID, conv.CampaignID)
	for _, m := range messages {
		fmt.Printf("%s: %s\n", m.Sender, m.Text)
	}
	return nil
}
