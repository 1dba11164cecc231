package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/adk"
	"github.com/user/cloudcomply/pkg/pipeline"
	"github.com/user/cloudcomply/pkg/wrappers"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Start the interactive compliance assistant",
	Long: `Chat with an assistant that can read the loaded frameworks and, when
--findings is given, the scores and affected controls of that batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("findings")

		providerName := cfg.SelectedProvider
		if providerName == "" {
			providerName = "gemini"
		}
		apiKey := cfg.GetAPIKey(providerName)
		if apiKey == "" && providerName == "gemini" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			fmt.Println("Error: API Key not found.")
			fmt.Println("Please run 'cloudcomply config setup' to configure your keys.")
			return nil
		}

		ctx := cmd.Context()
		catalog := loadCatalog(ctx)
		state := &wrappers.ComplianceState{Catalog: catalog}
		if path != "" {
			batch, err := loadFindings(path)
			if err != nil {
				return err
			}
			state.Result = pipeline.New(catalog, logger).Evaluate(ctx, batch, "", time.Now())
		}

		fmt.Printf("Connecting to %s (Model: %s)...\n", providerName, cfg.SelectedModel)
		provider, err := adk.NewProvider(ctx, providerName, apiKey, cfg.SelectedModel)
		if err != nil {
			return fmt.Errorf("create AI provider: %w", err)
		}
		if closer, ok := provider.(interface{ Close() }); ok {
			defer closer.Close()
		}

		agent := adk.NewAgent(provider, logger)
		for _, t := range wrappers.ComplianceTools(state) {
			agent.RegisterTool(t)
		}
		agent.SetSystemPrompt(adk.GetSystemPrompt())

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("\n---------------------------------------------------------")
		fmt.Printf("Compliance assistant ready. %d frameworks loaded.\n", catalog.Len())
		if state.Result != nil {
			fmt.Printf("%d findings evaluated from %s.\n", len(state.Result.Findings), path)
		}
		fmt.Println("Example: 'Which CIS controls have the most findings?'")
		fmt.Println("Example: 'What is our PCI DSS score?'")
		fmt.Println("Type 'quit' or 'exit' to stop.")
		fmt.Println("---------------------------------------------------------")

		for {
			fmt.Print("\n> ")
			if !scanner.Scan() {
				break
			}
			input := scanner.Text()
			if input == "quit" || input == "exit" {
				break
			}
			if input == "" {
				continue
			}

			fmt.Print("Assistant thinking... ")
			resp, err := agent.Chat(ctx, input, func(msg string) {
				fmt.Printf("\r\033[K[Progress]: %s\nAssistant thinking... ", msg)
			})
			fmt.Print("\r\033[K")

			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("\n[Assistant]: %s\n", resp)
			}
		}
		return scanner.Err()
	},
}

func init() {
	askCmd.Flags().StringP("findings", "f", "", "Findings file (.json or .csv) to evaluate")
	rootCmd.AddCommand(askCmd)
}
