// Package cmd defines the command-line interface for sizeup.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("job-name", "", "Job identity for history grouping (defaults to workspace directory name)")
	rootCmd.PersistentFlags().Int64("build-number", 0, "Build number for this run (0 = unknown)")
	rootCmd.PersistentFlags().String("branch", "", "Branch name override (skips git detection)")
	rootCmd.PersistentFlags().String("build-type", string(schema.DebugBuild), "Build type: debug or release")
	rootCmd.PersistentFlags().String("environment", string(schema.DevelopmentEnv), "Target environment: development or staging or production")
	rootCmd.PersistentFlags().String("pipeline-file", "", "Pipeline descriptor path relative to the workspace (default: auto-discover Jenkinsfile)")
	rootCmd.PersistentFlags().Bool("clean-build", false, "Treat this run as a clean build with no prior workspace state")
	rootCmd.PersistentFlags().Bool("cache-hit", false, "Assume the dependency cache is warm")
	rootCmd.PersistentFlags().String("output", string(schema.TableOut), "Output format: table or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns (1 or 2)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emoji markers in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of selectCmd to Viper
	selectCmd.Flags().String("runner", contract.DefaultRunner, "Interpreter used to run the prediction script")
	selectCmd.Flags().String("script", contract.DefaultScript, "Prediction script path inside the model directory")
	selectCmd.Flags().String("model-path", "", "Local model directory (skips object storage download)")
	selectCmd.Flags().String("model-bucket", "", "Object storage bucket holding model artifacts")
	selectCmd.Flags().String("model-endpoint", "", "Object storage endpoint (e.g., minio.internal:9000)")
	selectCmd.Flags().String("model-prefix", "", "Object key prefix for model artifacts")
	selectCmd.Flags().Bool("model-secure", true, "Use TLS for object storage")
	selectCmd.Flags().String("model-timeout", contract.DefaultModelTimeout.String(), "Timeout for the model runner (e.g., 30s)")
	selectCmd.Flags().Bool("no-model", false, "Skip the model and use the heuristic estimate")
	selectCmd.Flags().Float64("buffer-factor", contract.DefaultBufferFactor, "Safety multiplier applied to predicted memory (1.0 to 3.0)")
	selectCmd.Flags().String("bias", string(schema.BalancedBias), "Provisioning bias: balanced or cost or reliability")
	if err := viper.BindPFlags(selectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding select flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
