package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sizeup-ci/sizeup/core"
	"github.com/sizeup-ci/sizeup/internal/contract"
)

// selectCmd runs the full prediction and selection pipeline.
var selectCmd = &cobra.Command{
	Use:   "select [workspace-path]",
	Short: "Pick the cheapest instance class that fits the predicted build.",
	Long: `Analyze the workspace, predict resource demand, and select an instance class.

The pipeline detects change signals from Git, sizes the project and its
dependency manifests, scans the pipeline descriptor, then asks the trained
model (or a heuristic fallback) for CPU, memory, and duration estimates.
Predicted memory is padded by the buffer factor and mapped onto the catalog:
- balanced picks the smallest class whose memory fits the buffered demand
- cost caps the buffer at 1.1x so marginal demand maps to a smaller class
- reliability steps up one class when the fit leaves under 10% headroom

Each selection is recorded in the history store so later runs on the same
job gain confidence.

Examples:
  # Select a class for the current directory
  sizeup select

  # Release build on main with a bigger safety margin
  sizeup select --build-type release --branch main --buffer-factor 1.5

  # Skip the model and rely on the heuristic estimate
  sizeup select --no-model

  # Prefer cheaper classes and emit JSON for the orchestrator
  sizeup select --bias cost --output json --output-file selection.json

  # Point at a checked-out workspace with an explicit job identity
  sizeup select /var/lib/jenkins/workspace/checkout-service --job-name checkout-service`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSelect(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot run selection", err)
		}
	},
}
