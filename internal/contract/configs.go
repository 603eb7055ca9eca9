package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sizeup-ci/sizeup/schema"
)

// Default values for configuration.
const (
	DefaultModelTimeout = 30 * time.Second
	DefaultBufferFactor = 1.2
	MinBufferFactor     = 1.0
	MaxBufferFactor     = 3.0
	DefaultPrecision    = 1
	DefaultRunner       = "python3"
	DefaultScript       = "predict.py"
	DefaultPipelineFile = "Jenkinsfile"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a selection run.
// This struct remains the "final, validated" config.
type Config struct {
	WorkspacePath string // Absolute path to the build workspace
	JobName       string // CI job identifier, defaults to the workspace base name
	BuildNumber   int64  // CI build number, 0 when unknown

	BranchOverride string             // Branch name from CI, overrides git detection
	BuildType      schema.BuildType   // debug or release
	Environment    schema.Environment // development, staging or production
	PipelineFile   string             // Pipeline descriptor path, empty when absent

	CleanBuild bool // Workspace was wiped before this build
	CacheHit   bool // CI restored a dependency cache for this build

	Runner        string        // Interpreter executing the model script
	ScriptPath    string        // Path to the prediction script
	ModelPath     string        // Local directory holding model.pkl + features.json
	ModelBucket   string        // S3-compatible bucket holding the artifacts
	ModelEndpoint string        // S3-compatible endpoint host:port
	ModelPrefix   string        // Object key prefix inside the bucket
	ModelSecure   bool          // Use TLS for the artifact endpoint
	ModelTimeout  time.Duration // Bound on one runner invocation
	NoModel       bool          // Skip the runner entirely, heuristic only

	BufferFactor float64              // Safety multiplier on predicted memory
	Bias         schema.ProvisionBias // Under- vs over-provisioning trade-off

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseEmojis  bool
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	WorkspacePathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	JobName          string `mapstructure:"job-name"`
	BuildNumber      int64  `mapstructure:"build-number"`
	Branch           string `mapstructure:"branch"`
	BuildType        string `mapstructure:"build-type"`
	Environment      string `mapstructure:"environment"`
	PipelineFile     string `mapstructure:"pipeline-file"`
	CleanBuild       bool   `mapstructure:"clean-build"`
	CacheHit         bool   `mapstructure:"cache-hit"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from selectCmd.Flags() ---
	Runner        string  `mapstructure:"runner"`
	Script        string  `mapstructure:"script"`
	ModelPath     string  `mapstructure:"model-path"`
	ModelBucket   string  `mapstructure:"model-bucket"`
	ModelEndpoint string  `mapstructure:"model-endpoint"`
	ModelPrefix   string  `mapstructure:"model-prefix"`
	ModelSecure   bool    `mapstructure:"model-secure"`
	ModelTimeout  string  `mapstructure:"model-timeout"`
	NoModel       bool    `mapstructure:"no-model"`
	BufferFactor  float64 `mapstructure:"buffer-factor"`
	Bias          string  `mapstructure:"bias"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processModelConfig(cfg, input); err != nil {
		return err
	}
	if err := processPolicyConfig(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := resolveWorkspaceAndJob(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.BranchOverride = strings.TrimSpace(input.Branch)
	cfg.BuildType = schema.ParseBuildType(input.BuildType)
	cfg.Environment = schema.ParseEnvironment(input.Environment)
	cfg.CleanBuild = input.CleanBuild
	cfg.CacheHit = input.CacheHit
	cfg.BuildNumber = input.BuildNumber
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be table, json, csv", cfg.Output)
	}

	return nil
}

// processModelConfig validates the runner and artifact settings.
func processModelConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Runner = strings.TrimSpace(input.Runner)
	if cfg.Runner == "" {
		cfg.Runner = DefaultRunner
	}
	cfg.ScriptPath = strings.TrimSpace(input.Script)
	if cfg.ScriptPath == "" {
		cfg.ScriptPath = DefaultScript
	}
	cfg.ModelPath = strings.TrimSpace(input.ModelPath)
	cfg.ModelBucket = strings.TrimSpace(input.ModelBucket)
	cfg.ModelEndpoint = strings.TrimSpace(input.ModelEndpoint)
	cfg.ModelPrefix = strings.TrimSpace(input.ModelPrefix)
	cfg.ModelSecure = input.ModelSecure
	cfg.NoModel = input.NoModel

	if cfg.ModelBucket != "" && cfg.ModelEndpoint == "" {
		return fmt.Errorf("--model-endpoint is required when --model-bucket is set")
	}

	cfg.ModelTimeout = DefaultModelTimeout
	if input.ModelTimeout != "" {
		timeout, err := time.ParseDuration(input.ModelTimeout)
		if err != nil {
			return fmt.Errorf("invalid --model-timeout value '%s': %w", input.ModelTimeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("--model-timeout must be positive (received %s)", timeout)
		}
		cfg.ModelTimeout = timeout
	}

	return nil
}

// processPolicyConfig validates the selection policy knobs.
func processPolicyConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.BufferFactor = input.BufferFactor
	if cfg.BufferFactor == 0 {
		cfg.BufferFactor = DefaultBufferFactor
	}
	if cfg.BufferFactor < MinBufferFactor || cfg.BufferFactor > MaxBufferFactor {
		return fmt.Errorf("buffer-factor must be between %.1f and %.1f (received %.2f)",
			MinBufferFactor, MaxBufferFactor, cfg.BufferFactor)
	}

	bias := schema.ProvisionBias(strings.ToLower(input.Bias))
	if bias == "" {
		bias = schema.BalancedBias
	}
	if _, ok := schema.ValidProvisionBiases[bias]; !ok {
		return fmt.Errorf("invalid bias '%s'. must be balanced, cost, reliability", input.Bias)
	}
	cfg.Bias = bias

	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// resolveWorkspaceAndJob resolves the workspace path, the job name and the
// pipeline descriptor. Workspaces that are not Git checkouts are accepted;
// change-set detection degrades to defaults there.
func resolveWorkspaceAndJob(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.WorkspacePathStr
	if searchPath == "" {
		searchPath = "."
	}
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("workspace path %q: %w", absPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace path %q is not a directory", absPath)
	}
	cfg.WorkspacePath = absPath

	cfg.JobName = strings.TrimSpace(input.JobName)
	if cfg.JobName == "" {
		cfg.JobName = filepath.Base(absPath)
	}

	cfg.PipelineFile = strings.TrimSpace(input.PipelineFile)
	if cfg.PipelineFile == "" {
		candidate := filepath.Join(absPath, DefaultPipelineFile)
		if _, err := os.Stat(candidate); err == nil {
			cfg.PipelineFile = candidate
		}
	} else if !filepath.IsAbs(cfg.PipelineFile) {
		cfg.PipelineFile = filepath.Join(absPath, cfg.PipelineFile)
	}

	return nil
}

// RevalidateWorkspace re-resolves the workspace, job name and pipeline
// descriptor on an already-validated config. The MCP handlers use it when a
// tool call overrides the workspace; an empty jobName re-derives the job
// name from the new workspace base.
func RevalidateWorkspace(cfg *Config, workspacePath, jobName string) error {
	input := &ConfigRawInput{
		WorkspacePathStr: workspacePath,
		JobName:          jobName,
	}
	return resolveWorkspaceAndJob(cfg, input)
}
