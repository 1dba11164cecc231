package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/pipeline"
	"github.com/user/cloudcomply/pkg/ui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate compliance reports for a findings file",
	Long: `Map a findings batch onto every loaded framework, score each framework and
write compliance_report_<timestamp>.json, compliance_report_<timestamp>.html
and annotated_findings_<timestamp>.csv into the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("findings")
		framework, _ := cmd.Flags().GetString("framework")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")
		noCSV, _ := cmd.Flags().GetBool("no-csv")
		if metricsFile == "" {
			metricsFile = cfg.MetricsFile
		}

		batch, err := loadFindings(path)
		if err != nil {
			return err
		}
		catalog := loadCatalog(cmd.Context())
		if framework != "" {
			if fw, ok := catalog.Lookup(framework); ok {
				framework = fw.Name
			}
		}

		p := pipeline.New(catalog, logger)
		out, runErr := p.Run(cmd.Context(), batch, pipeline.Options{
			OutputDir:   cfg.OutputDir,
			Framework:   framework,
			MetricsFile: metricsFile,
			SkipCSV:     noCSV,
		})
		if out.Result.Empty() {
			fmt.Println("No findings in batch, no reports generated.")
			return nil
		}

		fmt.Println(ui.ScoreSummary(out.Result.Scores()))
		fmt.Println()
		for _, r := range []struct{ label, path string }{
			{"JSON report", out.JSONPath},
			{"HTML report", out.HTMLPath},
			{"Annotated CSV", out.CSVPath},
			{"Metrics", out.MetricsPath},
		} {
			if r.path != "" {
				fmt.Printf("  %s %s\n", ui.LabelStyle.Render(fmt.Sprintf("%-14s", r.label)), r.path)
			}
		}
		return runErr
	},
}

func init() {
	reportCmd.Flags().StringP("findings", "f", "", "Findings file (.json or .csv)")
	reportCmd.Flags().String("framework", "", "Only report on this framework")
	reportCmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	reportCmd.Flags().Bool("no-csv", false, "Skip the annotated findings CSV")
	rootCmd.AddCommand(reportCmd)
}
