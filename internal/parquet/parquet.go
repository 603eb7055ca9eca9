// Package parquet provides data structures and functions for exporting
// recorded selection runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/sizeup-ci/sizeup/schema"
)

// SelectionRun represents a single recorded selection run with its feature
// vector and prediction outcome. This struct maps to the sizeup_runs
// database table.
type SelectionRun struct {
	// RunID is the unique identifier for this selection run
	RunID int64 `parquet:"run_id,snappy"`

	// JobName is the CI job the run was recorded for
	JobName string `parquet:"job_name,snappy"`

	// BuildNumber is the CI build number, or 0 when not supplied
	BuildNumber int64 `parquet:"build_number,snappy"`

	// CreatedAt is when the run was recorded (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// Branch is the branch name the workspace was on
	Branch string `parquet:"branch,snappy"`

	// ProjectType is the detected project ecosystem
	ProjectType string `parquet:"project_type,snappy"`

	// FeatureJSON contains the JSON-encoded feature vector used for prediction
	FeatureJSON string `parquet:"feature_json,snappy"`

	// CPUPercent is the predicted peak CPU utilization (0-100)
	CPUPercent float64 `parquet:"cpu_percent,snappy"`

	// MemoryGB is the predicted peak memory in gigabytes
	MemoryGB float64 `parquet:"memory_gb,snappy"`

	// TimeMinutes is the predicted build duration in minutes
	TimeMinutes float64 `parquet:"time_minutes,snappy"`

	// Confidence is the prediction confidence label (high, medium or low)
	Confidence string `parquet:"confidence,snappy"`

	// Method indicates how the prediction was produced (model or fallback)
	Method string `parquet:"method,snappy"`

	// ClassName is the selected instance class name
	ClassName string `parquet:"class_name,snappy"`

	// InstanceType is the cloud instance type behind the selected class
	InstanceType string `parquet:"instance_type,snappy"`

	// BufferedGB is the memory requirement after the safety buffer was applied
	BufferedGB float64 `parquet:"buffered_gb,snappy"`

	// AtCapacity indicates the largest class was selected without fully fitting
	AtCapacity bool `parquet:"at_capacity,snappy"`

	// RunDurationMs is the wall-clock duration of the selection run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// FallbackApplied indicates the heuristic estimator produced the prediction
	FallbackApplied bool `parquet:"fallback_applied,snappy"`
}

// WriteSelectionRunsParquet writes a slice of SelectionRun structs to a Parquet file.
func WriteSelectionRunsParquet(data []SelectionRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the SelectionRun struct tags
	writer := parquet.NewGenericWriter[SelectionRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to SelectionRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []SelectionRun {
	result := make([]SelectionRun, len(records))
	for i, record := range records {
		result[i] = SelectionRun{
			RunID:           record.RunID,
			JobName:         record.JobName,
			BuildNumber:     record.BuildNumber,
			CreatedAt:       record.CreatedAt,
			Branch:          record.Branch,
			ProjectType:     record.ProjectType,
			FeatureJSON:     record.FeatureJSON,
			CPUPercent:      record.CPUPercent,
			MemoryGB:        record.MemoryGB,
			TimeMinutes:     record.TimeMinutes,
			Confidence:      record.Confidence,
			Method:          record.Method,
			ClassName:       record.ClassName,
			InstanceType:    record.InstanceType,
			BufferedGB:      record.BufferedGB,
			AtCapacity:      record.AtCapacity,
			RunDurationMs:   record.RunDurationMs,
			FallbackApplied: record.FallbackApplied,
		}
	}
	return result
}

// MockFetchSelectionRuns generates sample SelectionRun data for demonstration.
func MockFetchSelectionRuns() []SelectionRun {
	now := time.Now()
	durationMs1 := int32(412)
	durationMs2 := int32(9876)

	return []SelectionRun{
		{
			RunID:           1,
			JobName:         "payments-service",
			BuildNumber:     101,
			CreatedAt:       now.Add(-2 * time.Hour),
			Branch:          "feature/checkout-retry",
			ProjectType:     "java",
			FeatureJSON:     `{"schema_version":2,"files_changed":12}`,
			CPUPercent:      72.5,
			MemoryGB:        5.2,
			TimeMinutes:     14.8,
			Confidence:      "high",
			Method:          "model",
			ClassName:       "large",
			InstanceType:    "t3.large",
			BufferedGB:      6.24,
			AtCapacity:      false,
			RunDurationMs:   &durationMs1,
			FallbackApplied: false,
		},
		{
			RunID:           2,
			JobName:         "mobile-app",
			BuildNumber:     55,
			CreatedAt:       now.Add(-1 * time.Hour),
			Branch:          "develop",
			ProjectType:     "android",
			FeatureJSON:     `{"schema_version":2,"files_changed":3}`,
			CPUPercent:      88.0,
			MemoryGB:        11.6,
			TimeMinutes:     32.4,
			Confidence:      "medium",
			Method:          "model",
			ClassName:       "xlarge",
			InstanceType:    "t3.xlarge",
			BufferedGB:      13.92,
			AtCapacity:      false,
			RunDurationMs:   &durationMs2,
			FallbackApplied: false,
		},
		{
			RunID:           3,
			JobName:         "docs-site",
			BuildNumber:     0,
			CreatedAt:       now.Add(-10 * time.Minute),
			Branch:          "main",
			ProjectType:     "nodejs",
			FeatureJSON:     `{"schema_version":2,"files_changed":1}`,
			CPUPercent:      40.0,
			MemoryGB:        2.0,
			TimeMinutes:     5.0,
			Confidence:      "low",
			Method:          "fallback",
			ClassName:       "small",
			InstanceType:    "t3.small",
			BufferedGB:      2.4,
			AtCapacity:      false,
			RunDurationMs:   nil, // Duration not captured - nullable field
			FallbackApplied: true,
		},
	}
}
