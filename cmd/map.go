package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/pipeline"
	"github.com/user/cloudcomply/pkg/report"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Annotate a findings file with the controls each finding maps to",
	Long: `Annotate every finding with one <framework>_controls column per framework
and write the result as annotated_findings_<timestamp>.csv, or to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("findings")
		framework, _ := cmd.Flags().GetString("framework")
		toStdout, _ := cmd.Flags().GetBool("stdout")

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

		res := pipeline.New(catalog, logger).Evaluate(cmd.Context(), batch, framework, time.Now())

		if toStdout {
			names := make([]string, 0, len(res.Sections))
			for _, s := range res.Sections {
				names = append(names, s.Framework.Name)
			}
			return report.EncodeCSV(os.Stdout, res.Findings, names)
		}

		out, err := report.WriteCSV(cfg.OutputDir, res, logger)
		if err != nil {
			return err
		}
		if out == "" {
			fmt.Println("No findings to annotate.")
			return nil
		}
		fmt.Printf("Annotated findings written to %s\n", out)
		return nil
	},
}

func init() {
	mapCmd.Flags().StringP("findings", "f", "", "Findings file (.json or .csv)")
	mapCmd.Flags().String("framework", "", "Only annotate for this framework")
	mapCmd.Flags().Bool("stdout", false, "Write the annotated CSV to stdout")
	rootCmd.AddCommand(mapCmd)
}
