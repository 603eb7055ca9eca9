package schema

import "time"

// RunRecord represents a row from the sizeup_runs table. One row is written
// per selection run; the encoded feature vector rides along as JSON so runs
// can be exported as training telemetry later.
type RunRecord struct {
	RunID           int64
	JobName         string
	BuildNumber     int64
	CreatedAt       time.Time
	Branch          string
	ProjectType     string
	FeatureJSON     string
	CPUPercent      float64
	MemoryGB        float64
	TimeMinutes     float64
	Confidence      string
	Method          string
	ClassName       string
	InstanceType    string
	BufferedGB      float64
	AtCapacity      bool
	RunDurationMs   *int32
	FallbackApplied bool
}

// HistoryStatus represents the status of the build history store.
type HistoryStatus struct {
	Backend      string           `json:"backend"`
	Connected    bool             `json:"connected"`
	TotalRuns    int              `json:"total_runs"`
	LastRunID    int64            `json:"last_run_id"`
	LastRunTime  time.Time        `json:"last_run_time"`
	FirstRunTime time.Time        `json:"first_run_time"`
	JobCount     int              `json:"job_count"`
	TableSizes   map[string]int64 `json:"table_sizes"`
}
