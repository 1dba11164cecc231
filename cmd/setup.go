package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/adk"
	"github.com/user/cloudcomply/pkg/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("Welcome to the cloudcomply setup wizard")
		fmt.Println("---------------------------------------")

		// 1. Frameworks and reports
		fmt.Println("Step 1: Where are your framework definitions?")
		fmt.Printf("Directory [%s] > ", cfg.ComplianceDir)
		scanner.Scan()
		complianceDir := strings.TrimSpace(scanner.Text())

		fmt.Println("\nStep 2: Where should reports be written?")
		fmt.Printf("Directory [%s] > ", cfg.OutputDir)
		scanner.Scan()
		reportsDir := strings.TrimSpace(scanner.Text())

		// 2. Assistant
		provider := config.DefaultProvider
		fmt.Printf("\nStep 3: Enter API Key for %s (leave empty to skip the assistant)\n", provider)
		fmt.Print("> ")
		scanner.Scan()
		apiKey := strings.TrimSpace(scanner.Text())

		var selectedModel string
		if apiKey != "" {
			fmt.Println("\nStep 4: Validating key and fetching available models...")
			ctx := cmd.Context()

			tempProvider, err := adk.NewProvider(ctx, provider, apiKey, "")
			if err != nil {
				return fmt.Errorf("initialize provider: %w", err)
			}
			if closer, ok := tempProvider.(interface{ Close() }); ok {
				defer closer.Close()
			}

			models, err := tempProvider.ListModels(ctx)
			switch {
			case err != nil || len(models) == 0:
				if err != nil {
					fmt.Printf("Warning: Could not fetch models from API: %v\n", err)
				}
				fmt.Printf("Please enter model name manually [%s]:\n", config.DefaultModel)
				fmt.Print("> ")
				scanner.Scan()
				selectedModel = strings.TrimSpace(scanner.Text())
			default:
				fmt.Printf("Successfully retrieved %d models.\n", len(models))
				for i, m := range models {
					fmt.Printf("%d. %s\n", i+1, m)
				}
				fmt.Print("Select Model (number) > ")
				scanner.Scan()
				selIdx, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
				if err != nil || selIdx < 1 || selIdx > len(models) {
					fmt.Println("Invalid selection. Using first available model.")
					selectedModel = models[0]
				} else {
					selectedModel = models[selIdx-1]
				}
			}
		}

		// 3. Save
		fmt.Println("\nSaving Configuration...")
		stored, _ := resolveConfig(cmd, config.LoadConfig)
		if complianceDir != "" {
			stored.ComplianceDir = complianceDir
		}
		if reportsDir != "" {
			stored.OutputDir = reportsDir
		}
		if apiKey != "" {
			stored.SelectedProvider = provider
			stored.SetAPIKey(provider, apiKey)
			if selectedModel != "" {
				stored.SelectedModel = selectedModel
			}
		}
		if err := config.SaveConfig(stored); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println("---------------------------------------")
		fmt.Println("Setup Complete!")
		fmt.Printf("Frameworks: %s\n", stored.ComplianceDir)
		fmt.Printf("Reports:    %s\n", stored.OutputDir)
		if apiKey != "" {
			fmt.Printf("Model:      %s\n", stored.SelectedModel)
		}
		fmt.Println("You can now run 'cloudcomply report --findings <file>'")
		return nil
	},
}

func init() {
	configCmd.AddCommand(setupCmd)
}
