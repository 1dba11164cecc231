package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/pipeline"
	"github.com/user/cloudcomply/pkg/ui"
)

var controlsCmd = &cobra.Command{
	Use:   "controls FRAMEWORK",
	Short: "Show the affected controls of one framework, ranked by findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("findings")
		controlID, _ := cmd.Flags().GetString("control")

		batch, err := loadFindings(path)
		if err != nil {
			return err
		}
		catalog := loadCatalog(cmd.Context())
		fw, ok := catalog.Lookup(args[0])
		if !ok {
			return fmt.Errorf("framework %q not found (available: %v)", args[0], catalog.ListFrameworks())
		}

		res := pipeline.New(catalog, logger).Evaluate(cmd.Context(), batch, fw.Name, time.Now())
		section, _ := res.Section(fw.Name)

		if section.Scored {
			fmt.Println(ui.ScoreSummary(res.Scores()))
			fmt.Println()
		}

		if controlID == "" {
			fmt.Println(ui.Title(fmt.Sprintf("%s Affected Controls", fw.Name)))
			fmt.Println(ui.ControlsTable(section.Aggregation.Ranked()))
			return nil
		}

		rec, ok := section.Aggregation.Lookup(controlID)
		if !ok {
			return fmt.Errorf("control %q not found in %s", controlID, fw.Name)
		}
		fmt.Println(ui.Title(fmt.Sprintf("%s %s - %s (%d findings)", fw.Name, rec.ID, rec.Name, len(rec.Findings))))
		if rec.Description != "" {
			fmt.Println(ui.LabelStyle.Render(rec.Description))
		}
		if len(rec.Findings) > 0 {
			fmt.Println(ui.FindingsTable(rec.Findings))
			fmt.Printf("\nRemediation: %s\n", rec.Remediation())
		}
		return nil
	},
}

func init() {
	controlsCmd.Flags().StringP("findings", "f", "", "Findings file (.json or .csv)")
	controlsCmd.Flags().StringP("control", "c", "", "Show the findings of one control")
	rootCmd.AddCommand(controlsCmd)
}
