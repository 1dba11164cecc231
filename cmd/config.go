package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/adk"
	"github.com/user/cloudcomply/pkg/config"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (directories, providers, models, keys)",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with API keys masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		masked := *cfg
		masked.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
		for name, p := range cfg.Providers {
			masked.Providers[name] = config.ProviderConfig{APIKey: maskKey(p.APIKey)}
		}
		data, err := yaml.Marshal(&masked)
		if err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("# %s\n%s", path, data)
		return nil
	},
}

var setDirsCmd = &cobra.Command{
	Use:   "set-dirs",
	Short: "Set the framework, report and metrics locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		stored, _ := resolveConfig(cmd, config.LoadConfig)
		if v, _ := cmd.Flags().GetString("compliance"); v != "" {
			stored.ComplianceDir = v
		}
		if v, _ := cmd.Flags().GetString("reports"); v != "" {
			stored.OutputDir = v
		}
		if cmd.Flags().Changed("metrics-file") {
			stored.MetricsFile, _ = cmd.Flags().GetString("metrics-file")
		}
		if cmd.Flags().Changed("otlp-endpoint") {
			stored.Telemetry.OTLPEndpoint, _ = cmd.Flags().GetString("otlp-endpoint")
		}
		if cmd.Flags().Changed("otlp-insecure") {
			stored.Telemetry.Insecure, _ = cmd.Flags().GetBool("otlp-insecure")
		}
		if err := config.SaveConfig(stored); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("Compliance dir: %s\nOutput dir:     %s\n", stored.ComplianceDir, stored.OutputDir)
		return nil
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Manually set API key for a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		key, _ := cmd.Flags().GetString("key")

		if provider == "" || key == "" {
			return fmt.Errorf("--provider and --key are required")
		}

		stored, _ := resolveConfig(cmd, config.LoadConfig)

		stored.SetAPIKey(strings.ToLower(provider), key)
		if err := config.SaveConfig(stored); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("API key saved for provider: %s\n", provider)
		return nil
	},
}

var setModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Manually set the active provider and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")

		stored, _ := resolveConfig(cmd, config.LoadConfig)

		if provider != "" {
			stored.SelectedProvider = strings.ToLower(provider)
		}
		if model != "" {
			stored.SelectedModel = model
		}

		if err := config.SaveConfig(stored); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("Active configuration updated: Provider=%s, Model=%s\n", stored.SelectedProvider, stored.SelectedModel)
		return nil
	},
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List available models from the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := cfg.SelectedProvider
		if provider == "" {
			fmt.Println("No provider selected. Please run 'cloudcomply config setup'.")
			return nil
		}
		apiKey := cfg.GetAPIKey(provider)
		if apiKey == "" {
			fmt.Printf("No API key found for %s.\n", provider)
			return nil
		}

		fmt.Printf("Fetching models for %s...\n", provider)
		ctx := cmd.Context()
		p, err := adk.NewProvider(ctx, provider, apiKey, "")
		if err != nil {
			return fmt.Errorf("initialize provider: %w", err)
		}
		if closer, ok := p.(interface{ Close() }); ok {
			defer closer.Close()
		}

		models, err := p.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("fetch models: %w", err)
		}

		fmt.Printf("\nAvailable Models (%s):\n", provider)
		for _, m := range models {
			mark := " "
			if m == cfg.SelectedModel {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, m)
		}
		return nil
	},
}

// maskKey keeps the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func init() {
	setDirsCmd.Flags().String("compliance", "", "Directory of framework definitions")
	setDirsCmd.Flags().String("reports", "", "Directory for generated reports")
	setDirsCmd.Flags().String("metrics-file", "", "Prometheus textfile path (empty disables)")
	setDirsCmd.Flags().String("otlp-endpoint", "", "OTLP gRPC endpoint for traces (empty disables)")
	setDirsCmd.Flags().Bool("otlp-insecure", false, "Use a plaintext connection to the OTLP endpoint")

	setKeyCmd.Flags().StringP("provider", "p", "", "Provider ("+strings.Join(adk.Providers, ", ")+")")
	setKeyCmd.Flags().StringP("key", "k", "", "API Key")

	setModelCmd.Flags().StringP("provider", "p", "", "Provider ("+strings.Join(adk.Providers, ", ")+")")
	setModelCmd.Flags().StringP("model", "m", "", "Model name")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setDirsCmd)
	configCmd.AddCommand(setKeyCmd)
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(listModelsCmd)
	rootCmd.AddCommand(configCmd)
}
