// sequence.go implements the "helix sequence" command group for direct
// sequence generation and editing outside the chat flow.
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/reply"
)

var (
	sequenceCampaignID int64
	sequenceValues     string
	sequenceUSPs       string
	sequenceID         int64
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Generate or edit an outreach sequence",
	Long: `Ask the assistant to generate an outreach sequence for a campaign,
or apply an edit instruction to an existing sequence.`,
}

var sequenceGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a sequence for a campaign",
	RunE:  runSequenceGenerate,
}

var sequenceEditCmd = &cobra.Command{
	Use:   "edit <instructions>",
	Short: "Edit an existing sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runSequenceEdit,
}

func runSequenceGenerate(cmd *cobra.Command, args []string) error {
	if sequenceCampaignID == 0 {
		return fmt.Errorf("--campaign is required")
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	r, diags, err := client.GenerateSequence(cmd.Context(), sequenceCampaignID, api.GenerateSequenceRequest{
		CompanyValues:       sequenceValues,
		UniqueSellingPoints: sequenceUSPs,
	})
	if err != nil {
		return fmt.Errorf("generating sequence: %w", err)
	}

	printReply(r, diags)
	return nil
}

func runSequenceEdit(cmd *cobra.Command, args []string) error {
	if sequenceID == 0 {
		return fmt.Errorf("--id is required")
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	r, diags, err := client.EditSequence(cmd.Context(), sequenceID, args[0])
	if err != nil {
		return fmt.Errorf("editing sequence: %w", err)
	}

	printReply(r, diags)
	return nil
}

// printReply renders a normalized assistant reply, including any sequence
// steps, to stdout.
func printReply(r reply.Reply, diags []reply.Diagnostic) {
	fmt.Println(r.Message)

	if Verbose() {
		for _, d := range diags {
			fmt.Printf("  note [%s]: %s\n", d.Stage, d.Detail)
		}
	}

	if r.SequenceUpdate == nil {
		return
	}

	seq := r.SequenceUpdate
	fmt.Println()
	if seq.ID != 0 {
		fmt.Printf("Sequence #%d\n", seq.ID)
	}

	keys := make([]string, 0, len(seq.Steps))
	for k := range seq.Steps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		step := seq.Steps[k]
		fmt.Printf("\n%s\n", k)
		if step.Channel != "" {
			fmt.Printf("  Channel: %s\n", step.Channel)
		}
		if step.SubjectLine != "" {
			fmt.Printf("  Subject: %s\n", step.SubjectLine)
		}
		if step.Timing != "" {
			fmt.Printf("  Timing:  %s\n", step.Timing)
		}
		if step.MessageContent != "" {
			fmt.Printf("  Message: %s\n", step.MessageContent)
		}
	}
}

func init() {
	sequenceGenerateCmd.Flags().Int64Var(&sequenceCampaignID, "campaign", 0, "Campaign id (required)")
	sequenceGenerateCmd.Flags().StringVar(&sequenceValues, "values", "", "Company values to weave in")
	sequenceGenerateCmd.Flags().StringVar(&sequenceUSPs, "usps", "", "Unique selling points to weave in")
	sequenceEditCmd.Flags().Int64Var(&sequenceID, "id", 0, "Sequence id (required)")

	sequenceCmd.AddCommand(sequenceGenerateCmd)
	sequenceCmd.AddCommand(sequenceEditCmd)
}
