package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sizeup-ci/sizeup/core"
	"github.com/sizeup-ci/sizeup/internal/contract"
)

// analyzeCmd inspects the workspace without touching the model.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [workspace-path]",
	Short: "Show detected build signals and the assembled feature vector.",
	Long: `Detect build signals from the workspace and print the feature vector.

Runs the same detection stage as select (Git change signals, project type
and size, dependency manifests, pipeline structure) and shows exactly what
the model would receive, without calling the model or recording a run.

Signals that could not be measured fall back to documented defaults and are
marked in the report, so a defaulted zero is never mistaken for a measured
zero.

Use this to:
- Debug why a job was placed on an unexpected class
- Verify Git and manifest detection inside a CI workspace
- Export feature vectors for offline inspection

Examples:
  # Inspect the current directory
  sizeup analyze

  # Inspect a Jenkins workspace with an explicit branch
  sizeup analyze /var/lib/jenkins/workspace/api --branch release/7.2

  # Emit the vector as JSON for tooling
  sizeup analyze --output json --output-file vector.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
