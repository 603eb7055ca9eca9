package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sizeup-ci/sizeup/core"
	"github.com/sizeup-ci/sizeup/internal/contract"
)

// catalogCmd displays the instance class catalog.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Display the instance classes sizeup can select from",
	Long: `Show the static catalog of instance classes in ascending memory order.

Each class lists its memory, CPU count, executor slots, agent label, and
hourly price. The agent label is what the orchestrator uses to route the
build to a matching node pool.

No workspace analysis is performed - this is purely informational.

Examples:
  # Show the catalog
  sizeup catalog

  # Export the catalog for dashboards
  sizeup catalog --output csv --output-file classes.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCatalog(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display catalog", err)
		}
	},
}
