// init.go implements the "helix init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helix-dev/helix/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize helix in the current directory",
	Long: `Initialize the .helix/ directory with a default configuration.
Edit .helix/config.yaml afterwards to point at your backend.`,
	RunE: runInit,
}

var (
	initAPIURL    string
	initSocketURL string
)

func init() {
	initCmd.Flags().StringVar(&initAPIURL, "api-url", "", "Backend API base URL override")
	initCmd.Flags().StringVar(&initSocketURL, "socket-url", "", "Real-time socket URL override")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Check for existing .helix/ directory.
	helixDir := filepath.Join(dir, ".helix")
	if info, statErr := os.Stat(helixDir); statErr == nil && info.IsDir() {
		fmt.Println("Warning: .helix/ directory already exists.")
		fmt.Print("Reinitialize? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if initAPIURL != "" {
		cfg.Backend.APIBaseURL = initAPIURL
	}
	if initSocketURL != "" {
		cfg.Backend.SocketURL = initSocketURL
	}

	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}

	fmt.Println("Initialized .helix/config.yaml")
	fmt.Printf("  API backend: %s\n", cfg.Backend.APIBaseURL)
	fmt.Printf("  Socket:      %s\n", cfg.Backend.SocketURL)
	fmt.Println("\nRun 'helix' to start.")
	return nil
}
