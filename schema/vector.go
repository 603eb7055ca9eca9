package schema

import "encoding/json"

// FeatureSchemaVersion is the current generation of the feature vector.
// It must match the schema_version recorded in the model's feature manifest.
const FeatureSchemaVersion = 2

// FeatureCount is the number of features in the canonical vector.
const FeatureCount = 27

// FeatureColumns lists the canonical feature names in model training order.
// The FeatureVector field order, this list and the trained manifest must
// never drift apart; vector_test.go asserts the first two agree.
var FeatureColumns = []string{
	"project_type",
	"repo_size_mb",
	"is_monorepo",
	"branch_type",
	"build_type",
	"environment",
	"files_changed",
	"lines_added",
	"lines_deleted",
	"source_files_pct",
	"deps_file_changed",
	"dependency_count",
	"test_files_changed",
	"stages_count",
	"has_build_stage",
	"has_unit_tests",
	"has_integration_tests",
	"has_e2e_tests",
	"has_deploy_stage",
	"has_docker_build",
	"uses_emulator",
	"parallel_stages",
	"has_artifact_publish",
	"is_first_build",
	"cache_available",
	"is_clean_build",
	"time_of_day_hour",
}

// FeatureVector is the flat numeric input handed to the regression model.
// Field order matches FeatureColumns; categorical fields carry the numeric
// codes from constants.go and boolean fields carry 0 or 1.
type FeatureVector struct {
	ProjectType         int     `json:"project_type"`
	RepoSizeMB          float64 `json:"repo_size_mb"`
	IsMonorepo          int     `json:"is_monorepo"`
	BranchType          int     `json:"branch_type"`
	BuildType           int     `json:"build_type"`
	Environment         int     `json:"environment"`
	FilesChanged        int     `json:"files_changed"`
	LinesAdded          int     `json:"lines_added"`
	LinesDeleted        int     `json:"lines_deleted"`
	SourceFilesPct      float64 `json:"source_files_pct"`
	DepsFileChanged     int     `json:"deps_file_changed"`
	DependencyCount     int     `json:"dependency_count"`
	TestFilesChanged    int     `json:"test_files_changed"`
	StagesCount         int     `json:"stages_count"`
	HasBuildStage       int     `json:"has_build_stage"`
	HasUnitTests        int     `json:"has_unit_tests"`
	HasIntegrationTests int     `json:"has_integration_tests"`
	HasE2ETests         int     `json:"has_e2e_tests"`
	HasDeployStage      int     `json:"has_deploy_stage"`
	HasDockerBuild      int     `json:"has_docker_build"`
	UsesEmulator        int     `json:"uses_emulator"`
	ParallelStages      int     `json:"parallel_stages"`
	HasArtifactPublish  int     `json:"has_artifact_publish"`
	IsFirstBuild        int     `json:"is_first_build"`
	CacheAvailable      int     `json:"cache_available"`
	IsCleanBuild        int     `json:"is_clean_build"`
	TimeOfDayHour       int     `json:"time_of_day_hour"`
}

// BoolFeature encodes a boolean signal as a model feature.
func BoolFeature(b bool) int {
	if b {
		return 1
	}
	return 0
}

// EncodeJSON serializes the vector to the canonical flat JSON document used
// as the runner request. Key order follows FeatureColumns, so identical
// vectors produce identical bytes.
func (v FeatureVector) EncodeJSON() ([]byte, error) {
	return json.Marshal(v)
}

// OrderedValues returns the feature values in FeatureColumns order.
func (v FeatureVector) OrderedValues() []float64 {
	return []float64{
		float64(v.ProjectType),
		v.RepoSizeMB,
		float64(v.IsMonorepo),
		float64(v.BranchType),
		float64(v.BuildType),
		float64(v.Environment),
		float64(v.FilesChanged),
		float64(v.LinesAdded),
		float64(v.LinesDeleted),
		v.SourceFilesPct,
		float64(v.DepsFileChanged),
		float64(v.DependencyCount),
		float64(v.TestFilesChanged),
		float64(v.StagesCount),
		float64(v.HasBuildStage),
		float64(v.HasUnitTests),
		float64(v.HasIntegrationTests),
		float64(v.HasE2ETests),
		float64(v.HasDeployStage),
		float64(v.HasDockerBuild),
		float64(v.UsesEmulator),
		float64(v.ParallelStages),
		float64(v.HasArtifactPublish),
		float64(v.IsFirstBuild),
		float64(v.CacheAvailable),
		float64(v.IsCleanBuild),
		float64(v.TimeOfDayHour),
	}
}
