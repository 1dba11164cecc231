package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/cloudcomply/pkg/ui"
)

var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List the loaded compliance frameworks",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := loadCatalog(cmd.Context())
		if catalog.Len() == 0 {
			fmt.Printf("No compliance frameworks found in %s\n", cfg.ComplianceDir)
			return nil
		}

		fmt.Println(ui.Title(fmt.Sprintf("Compliance Frameworks (%s)", cfg.ComplianceDir)))
		for _, fw := range catalog.Frameworks() {
			version := fw.Version
			if version == "" {
				version = "N/A"
			}
			fmt.Printf("  %-20s %-10s %3d mappings %4d controls\n", fw.Name, version, len(fw.Mappings), len(fw.Controls()))
			if fw.URL != "" {
				fmt.Printf("  %-20s %s\n", "", ui.LabelStyle.Render(fw.URL))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(frameworksCmd)
}
