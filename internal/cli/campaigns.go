// campaigns.go implements the "helix campaigns" command group for
// non-interactive campaign management.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/config"
)

var (
	campaignName        string
	campaignDescription string
	campaignTargetRole  string
	campaignIndustry    string
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Manage outreach campaigns",
	Long:  `List and create outreach campaigns without entering the TUI.`,
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns for the configured user",
	RunE:  runCampaignsList,
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new campaign",
	RunE:  runCampaignsCreate,
}

var campaignsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsShow,
}

// newAPIClient builds an API client from the local config, falling back to
// defaults when no config file exists.
func newAPIClient() (*api.Client, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.ReadConfig(cwd)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	timeout := time.Duration(cfg.Backend.TimeoutSec) * time.Second
	return api.NewClient(cfg.Backend.APIBaseURL, timeout), cfg, nil
}

func runCampaignsList(cmd *cobra.Command, args []string) error {
	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}

	if Verbose() {
		fmt.Printf("GET %s/campaigns?user_id=%d\n\n", cfg.Backend.APIBaseURL, cfg.Chat.UserID)
	}

	campaigns, err := client.ListCampaigns(cmd.Context(), cfg.Chat.UserID)
	if err != nil {
		return fmt.Errorf("listing campaigns: %w", err)
	}

	if len(campaigns) == 0 {
		fmt.Println("No campaigns yet; create one with: helix campaigns create --name <name>")
		return nil
	}

	fmt.Printf("%-6s  %-30s  %s\n", "ID", "NAME", "TARGET ROLE")
	for _, c := range campaigns {
		fmt.Printf("%-6d  %-30s  %s\n", c.ID, c.Name, c.TargetRole)
	}
	return nil
}

func runCampaignsCreate(cmd *cobra.Command, args []string) error {
	if campaignName == "" {
		return fmt.Errorf("--name is required")
	}

	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}

	id, err := client.CreateCampaign(cmd.Context(), api.CreateCampaignRequest{
		UserID:      cfg.Chat.UserID,
		Name:        campaignName,
		Description: campaignDescription,
		TargetRole:  campaignTargetRole,
		Industry:    campaignIndustry,
	})
	if err != nil {
		return fmt.Errorf("creating campaign: %w", err)
	}

	fmt.Printf("Created campaign %d: %s\n", id, campaignName)
	return nil
}

func runCampaignsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	c, err := client.GetCampaign(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("fetching campaign: %w", err)
	}

	fmt.Printf("Campaign #%d: %s\n", c.ID, c.Name)
	if c.Description != "" {
		fmt.Printf("  Description: %s\n", c.Description)
	}
	if c.TargetRole != "" {
		fmt.Printf("  Target role: %s\n", c.TargetRole)
	}
	if c.Industry != "" {
		fmt.Printf("  Industry:    %s\n", c.Industry)
	}
	return nil
}

// parseID parses a numeric id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func init() {
	campaignsCreateCmd.Flags().StringVar(&campaignName, "name", "", "Campaign name (required)")
	campaignsCreateCmd.Flags().StringVar(&campaignDescription, "description", "", "Short campaign description")
	campaignsCreateCmd.Flags().StringVar(&campaignTargetRole, "target-role", "", "Role the campaign targets")
	campaignsCreateCmd.Flags().StringVar(&campaignIndustry, "industry", "", "Industry the campaign targets")

	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	campaignsCmd.AddCommand(campaignsShowCmd)
}
