package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

func analysisConfig() *contract.Config {
	return &contract.Config{
		JobName:   "mobile-app",
		Output:    schema.TableOut,
		Precision: 1,
		Width:     120,
	}
}

func sampleAnalysis() *schema.AnalysisOutput {
	var report schema.DetectionReport
	report.Add("branch_name", "not a git repository")

	return &schema.AnalysisOutput{
		Metrics: schema.ChangeSetMetrics{
			FilesChanged: 12,
			LinesAdded:   340,
			LinesDeleted: 25,
			DepsChanged:  1,
			BranchName:   schema.UnknownBranch,
		},
		Project: schema.ProjectContext{
			ProjectType:     schema.NodeJSProject,
			RepoSizeMB:      48.7,
			DependencyCount: 42,
			Pipeline: schema.PipelineStructure{
				StagesCount:    5,
				ParallelStages: 2,
				HasBuildStage:  true,
				HasUnitTests:   true,
				HasDockerBuild: true,
			},
		},
		Cache: schema.CacheState{
			CacheAvailable: true,
		},
		BuildType:   schema.DebugBuild,
		Environment: schema.DevelopmentEnv,
		HourOfDay:   14,
		Vector: schema.FeatureVector{
			ProjectType:     2,
			RepoSizeMB:      48.7,
			FilesChanged:    12,
			LinesAdded:      340,
			LinesDeleted:    25,
			SourceFilesPct:  66.7,
			DepsFileChanged: 1,
			DependencyCount: 42,
			StagesCount:     5,
			HasBuildStage:   1,
			HasUnitTests:    1,
			HasDockerBuild:  1,
			ParallelStages:  2,
			CacheAvailable:  1,
			TimeOfDayHour:   14,
		},
		Report: report,
	}
}

func TestWriteAnalysisTable(t *testing.T) {
	cfg := analysisConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeAnalysisTable(sampleAnalysis(), cfg, fmtFloat, intFmt, 34*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Project: nodejs | build: debug | environment: development | hour: 14")
	assert.Contains(t, out, "Cache: first build no, cache available yes, clean build no")
	assert.Contains(t, out, "branch_name")
	assert.Contains(t, out, "unknown")
	assert.Contains(t, out, "defaulted")
	assert.Contains(t, out, "measured")
	assert.Contains(t, out, "5 stages (2 parallel)")
	assert.Contains(t, out, "project_type")
	assert.Contains(t, out, "time_of_day_hour")
	assert.Contains(t, out, "Defaulted: branch_name")
	assert.Contains(t, out, "Analysis completed in 34ms")
}

func TestWriteAnalysisTableAllMeasured(t *testing.T) {
	cfg := analysisConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	output := sampleAnalysis()
	output.Report = schema.DetectionReport{}

	var buf bytes.Buffer
	err := writeAnalysisTable(output, cfg, fmtFloat, intFmt, time.Millisecond, &buf)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "Defaulted:")
}

func TestWriteAnalysisTableTruncatesBranch(t *testing.T) {
	cfg := analysisConfig()
	cfg.Width = 30 // forces the minimum value width
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	output := sampleAnalysis()
	output.Metrics.BranchName = "feature/very-long-branch-name-from-the-tracker"

	var buf bytes.Buffer
	err := writeAnalysisTable(output, cfg, fmtFloat, intFmt, time.Millisecond, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), "feature/very-long-branch-name-from-the-tracker")
}

func TestWriteAnalysisCSV(t *testing.T) {
	cfg := analysisConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "vector.csv")

	err := WriteAnalysis(sampleAnalysis(), cfg, time.Second)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, schema.FeatureCount+1) // header + 27 features

	assert.Equal(t, []string{"feature", "value"}, records[0])
	assert.Equal(t, []string{"project_type", "2"}, records[1])
	assert.Equal(t, []string{"repo_size_mb", "48.7"}, records[2])
	assert.Equal(t, []string{"time_of_day_hour", "14"}, records[schema.FeatureCount])
}

func TestWriteAnalysisJSON(t *testing.T) {
	cfg := analysisConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "analysis.json")

	err := WriteAnalysis(sampleAnalysis(), cfg, time.Second)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))

	assert.Contains(t, decoded, "metrics")
	assert.Contains(t, decoded, "project")
	assert.Contains(t, decoded, "vector")
	assert.Contains(t, decoded, "report")

	vector, ok := decoded["vector"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(12), vector["files_changed"])
}

func TestDefaultedFields(t *testing.T) {
	var report schema.DetectionReport
	report.Add("files_changed", "git diff failed")
	report.Add("lines_added", "git diff failed")
	report.Add("files_changed", "second failure on the same field")

	names := defaultedFields(report)
	assert.Equal(t, []string{"files_changed", "lines_added"}, names)
}

func TestCollectSignalsOrder(t *testing.T) {
	cfg := analysisConfig()
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	signals := collectSignals(sampleAnalysis(), cfg, fmtFloat, intFmt)
	require.Len(t, signals, 8)
	assert.Equal(t, "branch_name", signals[0].name)
	assert.Equal(t, "pipeline_structure", signals[7].name)
	assert.Equal(t, "48.7", signals[5].value)
}
