package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/internal/history"
	"github.com/sizeup-ci/sizeup/internal/outwriter"
	"github.com/sizeup-ci/sizeup/schema"
)

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need store access without full shared setup.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (status and export render through outwriter)
	useEmojis, err := contract.ParseBoolString(viper.GetString("emoji"))
	if err != nil {
		return fmt.Errorf("invalid emoji value: %w", err)
	}

	// Initialize the store with the loaded config
	if err := history.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Precision = viper.GetInt("precision")
	cfg.UseEmojis = useEmojis

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	connStr := viper.GetString("history-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by selection commands. This avoids workspace
// validation and complex config processing for simple store operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded selection runs",
	Long: `Manage the run history that selection confidence is built on.

Every select run records the job, the feature vector, the prediction, and
the chosen class. Accumulated runs raise the confidence of later selections
for the same job and feed offline model retraining.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run counts and connection info
  clear   - Remove all recorded runs
  export  - Export runs to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check run history status
  sizeup history status

  # Export runs for the training pipeline
  sizeup history export --output-file runs.parquet`,
}

// historyStatusCmd shows history store status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history store.

Displays:
- Backend type and connection status
- Total recorded runs and distinct jobs
- First and last run timestamps
- Database table sizes

Use this to:
- Verify run tracking is enabled and working
- Monitor how much history a job has accumulated
- Debug store connection issues

Examples:
  # Check run history status
  sizeup history status

  # Check a shared team store
  SIZEUP_HISTORY_BACKEND=postgresql SIZEUP_HISTORY_DB_CONNECT="..." sizeup history status`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := history.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Run history is disabled", errors.New("set --history-backend to sqlite, mysql, or postgresql"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := outwriter.WriteHistoryStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write history status", err)
		}
	},
}

// historyClearCmd clears the recorded runs.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded selection runs",
	Long: `Delete all recorded runs from the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.
Clearing history also resets selection confidence for every job until new
runs accumulate.

Use this when:
- A job was renamed and its old runs no longer apply
- The store accumulated runs from throwaway experiments
- Starting fresh run history

Examples:
  # Export before clearing
  sizeup history export --output-file backup.parquet
  sizeup history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := history.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Run history is disabled", errors.New("set --history-backend to sqlite, mysql, or postgresql"))
		}
		if err := store.Clear(); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// historyExportCmd exports recorded runs to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for analytics and retraining",
	Long: `Export all recorded selection runs to Parquet format.

Each row carries the run metadata, the full feature vector, the prediction,
and the selected class, so the export doubles as a training dataset for the
resource model.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Examples:
  # Export all runs
  sizeup history export --output-file runs.parquet

  # Inspect the export with DuckDB
  duckdb -c "SELECT job_name, count(*) FROM read_parquet('runs.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

Migrations allow:
- Upgrading to new schema versions when sizeup is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  sizeup history migrate

  # Migrate to specific version
  sizeup history migrate --target-version 1

  # Rollback to initial state
  sizeup history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
