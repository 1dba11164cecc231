package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/config"
	"github.com/user/cloudcomply/pkg/engine"
	"github.com/user/cloudcomply/pkg/findings"
	"github.com/user/cloudcomply/pkg/logging"
	"github.com/user/cloudcomply/pkg/pipeline"
	"github.com/user/cloudcomply/pkg/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "cloudcomply",
	Short: "Map cloud security findings onto compliance frameworks",
	Long: `cloudcomply maps security findings from cloud posture queries onto the
controls of compliance frameworks (CIS, PCI DSS, SOC 2, ...), scores each
framework and writes JSON, HTML and CSV compliance reports.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	DebugMode     bool
	logLevel      string
	complianceDir string
	outputDir     string

	cfg      *config.Config
	logger   *slog.Logger
	shutdown telemetry.ShutdownFunc
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if serr := shutdown(ctx); serr != nil {
			logger.Warn("telemetry shutdown failed", "error", serr)
		}
		cancel()
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&complianceDir, "compliance-dir", "", "Directory of framework definitions (default from config)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory for generated reports (default from config)")
}

// setup runs before every command: logging, configuration, tracing.
func setup(cmd *cobra.Command, args []string) error {
	logger = logging.Setup(DebugMode, logLevel)

	var err error
	cfg, err = resolveConfig(cmd, config.LoadConfig)
	if err != nil {
		return err
	}
	if complianceDir != "" {
		cfg.ComplianceDir = complianceDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	shutdown, err = telemetry.Setup(telemetry.Options{
		Endpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure: cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdown = nil
	}
	return nil
}

// resolveConfig loads the config file. Commands under "config" fall back to
// defaults when the file cannot be read, so a broken file can be repaired.
func resolveConfig(cmd *cobra.Command, load func() (*config.Config, error)) (*config.Config, error) {
	c, err := load()
	if err == nil {
		return c, nil
	}
	if !inConfigTree(cmd) {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Warn("config unreadable, using defaults", "error", err)
	return config.Default(), nil
}

func inConfigTree(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

func loadCatalog(ctx context.Context) *engine.Catalog {
	return pipeline.LoadCatalog(ctx, cfg.ComplianceDir, logger)
}

func loadFindings(path string) ([]engine.Finding, error) {
	if path == "" {
		return nil, fmt.Errorf("--findings is required")
	}
	batch, err := findings.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("findings loaded", "file", path, "count", len(batch))
	return batch, nil
}
