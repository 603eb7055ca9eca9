// Package schema has configs, models and shared constants for all parts of sizeup.
package schema

import "github.com/shopspring/decimal"

// ChangeSetMetrics represents the measured shape of the code change that
// triggered a build. Fields that cannot be measured default to zero or
// "unknown"; the accompanying DetectionReport records which ones did.
type ChangeSetMetrics struct {
	FilesChanged int    `json:"files_changed"` // Number of files touched by the change
	LinesAdded   int    `json:"lines_added"`   // Total lines added across the change
	LinesDeleted int    `json:"lines_deleted"` // Total lines deleted across the change
	DepsChanged  int    `json:"deps_changed"`  // Number of dependency manifest files touched
	BranchName   string `json:"branch_name"`   // Raw branch name, or "unknown" when undetectable
}

// DetectionFailure describes one metric that could not be measured and was
// defaulted instead. It separates a genuinely-zero measurement from a
// failed detection.
type DetectionFailure struct {
	Field  string `json:"field"`  // Metric name that was defaulted
	Reason string `json:"reason"` // Underlying cause, for the warning log
}

// DetectionReport collects the detection failures of one analyzer pass.
type DetectionReport struct {
	Failures []DetectionFailure `json:"failures"`
}

// Add records a defaulted field with its cause.
func (r *DetectionReport) Add(field, reason string) {
	r.Failures = append(r.Failures, DetectionFailure{Field: field, Reason: reason})
}

// Merge appends all failures from another report.
func (r *DetectionReport) Merge(other DetectionReport) {
	r.Failures = append(r.Failures, other.Failures...)
}

// Status returns the detection status for a named field.
func (r *DetectionReport) Status(field string) DetectionStatus {
	for _, f := range r.Failures {
		if f.Field == field {
			return DefaultedStatus
		}
	}
	return MeasuredStatus
}

// PipelineStructure represents the stage topology scanned from the pipeline
// descriptor and workspace markers. Signals are monotone: a stage kind seen
// in any source stays set.
type PipelineStructure struct {
	StagesCount         int  `json:"stages_count"`          // Number of declared stages
	ParallelStages      int  `json:"parallel_stages"`       // Number of branches inside parallel blocks
	HasBuildStage       bool `json:"has_build_stage"`       // Compile/package step present
	HasUnitTests        bool `json:"has_unit_tests"`        // Unit test step present
	HasIntegrationTests bool `json:"has_integration_tests"` // Integration test step present
	HasE2ETests         bool `json:"has_e2e_tests"`         // End-to-end test step present
	HasDeployStage      bool `json:"has_deploy_stage"`      // Deployment step present
	HasDockerBuild      bool `json:"has_docker_build"`      // Container image build present
	UsesEmulator        bool `json:"uses_emulator"`         // Device emulator or simulator used
	HasArtifactPublish  bool `json:"has_artifact_publish"`  // Artifact upload/publish step present
}

// CacheState represents the cache and history posture of this build.
type CacheState struct {
	IsFirstBuild   bool `json:"is_first_build"`  // No prior recorded run for this job
	CacheAvailable bool `json:"cache_available"` // Dependency cache present in the workspace
	IsCleanBuild   bool `json:"is_clean_build"`  // Workspace wiped before this build
}

// ProjectContext represents everything detected about the project itself,
// independent of the individual change.
type ProjectContext struct {
	ProjectType     ProjectType       `json:"project_type"`     // Detected ecosystem
	RepoSizeMB      float64           `json:"repo_size_mb"`     // Workspace size in megabytes
	IsMonorepo      bool              `json:"is_monorepo"`      // Multi-package workspace markers found
	DependencyCount int               `json:"dependency_count"` // Declared dependency count
	Pipeline        PipelineStructure `json:"pipeline"`         // Scanned stage topology
}

// PredictionResult represents one resource prediction, from either the
// model runner or the fallback estimator.
type PredictionResult struct {
	CPUPercent  float64          `json:"cpu"`         // Expected peak CPU utilization, 0-100
	MemoryGB    float64          `json:"memoryGb"`    // Expected peak memory in GB
	TimeMinutes float64          `json:"timeMinutes"` // Expected build duration in minutes
	Confidence  Confidence       `json:"confidence"`  // low, medium or high
	Method      PredictionMethod `json:"method"`      // model or fallback
}

// InstanceClass represents one entry of the instance catalog.
type InstanceClass struct {
	Name          string          `json:"name"`           // Catalog label, e.g. "medium"
	InstanceType  string          `json:"instance_type"`  // Provider instance type, e.g. "t3.medium"
	MemoryGB      float64         `json:"memory_gb"`      // Usable memory capacity
	CPUCount      int             `json:"cpu_count"`      // Virtual CPU count
	ExecutorSlots int             `json:"executor_slots"` // Concurrent executor slots on the agent
	AgentLabel    string          `json:"agent_label"`    // CI agent label that routes builds to this class
	HourlyUSD     decimal.Decimal `json:"hourly_usd"`     // On-demand hourly rate
}

// SelectionResult represents the final outcome of a selection run.
type SelectionResult struct {
	Class            InstanceClass    `json:"class"`              // Chosen catalog entry
	Prediction       PredictionResult `json:"prediction"`         // Underlying prediction
	BufferFactor     float64          `json:"buffer_factor"`      // Safety multiplier applied to memory
	BufferedMemoryGB float64          `json:"buffered_memory_gb"` // Prediction memory after buffering
	AtCapacity       bool             `json:"at_capacity"`        // Demand exceeded the largest class
	EstimatedCostUSD decimal.Decimal  `json:"estimated_cost_usd"` // Hourly rate scaled by predicted duration
	Reasons          []string         `json:"reasons"`            // Human-readable selection drivers
	ElapsedMS        int64            `json:"elapsed_ms"`         // Wall time of the selection run
}

// AnalysisOutput bundles everything a dry-run analysis detects, plus the
// assembled vector a selection run would send to the model runner.
type AnalysisOutput struct {
	Metrics     ChangeSetMetrics `json:"metrics"`     // Measured change-set shape
	Project     ProjectContext   `json:"project"`     // Detected project context
	Cache       CacheState       `json:"cache"`       // Cache and history posture
	BuildType   BuildType        `json:"build_type"`  // Resolved build type
	Environment Environment      `json:"environment"` // Resolved target environment
	HourOfDay   int              `json:"hour_of_day"` // Local clock hour fed to assembly
	Vector      FeatureVector    `json:"vector"`      // Assembled model input
	Report      DetectionReport  `json:"report"`      // Fields that fell back to defaults
}
