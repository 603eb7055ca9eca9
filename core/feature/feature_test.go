package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sizeup-ci/sizeup/core/feature"
	"github.com/sizeup-ci/sizeup/schema"
)

func TestAssemble(t *testing.T) {
	metrics := schema.ChangeSetMetrics{
		FilesChanged: 17,
		LinesAdded:   240,
		LinesDeleted: 80,
		DepsChanged:  1,
		BranchName:   "feature/add-login",
	}
	pctx := schema.ProjectContext{
		ProjectType:     schema.ReactNativeProject,
		RepoSizeMB:      340.5,
		IsMonorepo:      true,
		DependencyCount: 42,
		Pipeline: schema.PipelineStructure{
			StagesCount:        6,
			HasBuildStage:      true,
			HasUnitTests:       true,
			HasE2ETests:        true,
			UsesEmulator:       true,
			ParallelStages:     2,
			HasArtifactPublish: true,
		},
	}
	cache := schema.CacheState{CacheAvailable: true}

	got := feature.Assemble(metrics, pctx, cache, schema.ReleaseBuild, schema.StagingEnv, 14)

	want := schema.FeatureVector{
		ProjectType:        3,
		RepoSizeMB:         340.5,
		IsMonorepo:         1,
		BranchType:         0,
		BuildType:          1,
		Environment:        1,
		FilesChanged:       17,
		LinesAdded:         240,
		LinesDeleted:       80,
		SourceFilesPct:     0.8,
		DepsFileChanged:    1,
		DependencyCount:    42,
		TestFilesChanged:   3,
		StagesCount:        6,
		HasBuildStage:      1,
		HasUnitTests:       1,
		HasE2ETests:        1,
		UsesEmulator:       1,
		ParallelStages:     2,
		HasArtifactPublish: 1,
		CacheAvailable:     1,
		TimeOfDayHour:      14,
	}
	assert.Equal(t, want, got)
}

func TestAssembleEmptyChangeSet(t *testing.T) {
	got := feature.Assemble(
		schema.ChangeSetMetrics{BranchName: "main"},
		schema.ProjectContext{ProjectType: schema.PythonProject},
		schema.CacheState{IsFirstBuild: true, IsCleanBuild: true},
		schema.DebugBuild,
		schema.DevelopmentEnv,
		3,
	)

	assert.Equal(t, 0, got.FilesChanged)
	assert.Equal(t, 0, got.TestFilesChanged)
	assert.Zero(t, got.SourceFilesPct)
	assert.Equal(t, 2, got.BranchType)
	assert.Equal(t, 1, got.IsFirstBuild)
	assert.Equal(t, 1, got.IsCleanBuild)
	assert.Equal(t, 0, got.CacheAvailable)
}

func TestAssembleDerivedCounts(t *testing.T) {
	cases := []struct {
		files     int
		testFiles int
		sourcePct float64
	}{
		{files: 0, testFiles: 0, sourcePct: 0},
		{files: 1, testFiles: 0, sourcePct: 0.8},
		{files: 3, testFiles: 1, sourcePct: 0.8},
		{files: 10, testFiles: 2, sourcePct: 0.8},
		{files: 17, testFiles: 3, sourcePct: 0.8},
		{files: 100, testFiles: 20, sourcePct: 0.8},
	}

	for _, tc := range cases {
		got := feature.Assemble(
			schema.ChangeSetMetrics{FilesChanged: tc.files},
			schema.ProjectContext{},
			schema.CacheState{},
			schema.DebugBuild,
			schema.DevelopmentEnv,
			0,
		)
		assert.Equal(t, tc.testFiles, got.TestFilesChanged, "files=%d", tc.files)
		assert.Equal(t, tc.sourcePct, got.SourceFilesPct, "files=%d", tc.files)
	}
}

func TestAssembleClampsHour(t *testing.T) {
	base := feature.Assemble(schema.ChangeSetMetrics{}, schema.ProjectContext{}, schema.CacheState{}, schema.DebugBuild, schema.DevelopmentEnv, -5)
	assert.Equal(t, 0, base.TimeOfDayHour)

	late := feature.Assemble(schema.ChangeSetMetrics{}, schema.ProjectContext{}, schema.CacheState{}, schema.DebugBuild, schema.DevelopmentEnv, 99)
	assert.Equal(t, 23, late.TimeOfDayHour)
}

func TestAssembleUnknownBranchEncodesAsFeature(t *testing.T) {
	got := feature.Assemble(
		schema.ChangeSetMetrics{BranchName: schema.UnknownBranch},
		schema.ProjectContext{},
		schema.CacheState{},
		schema.DebugBuild,
		schema.DevelopmentEnv,
		0,
	)
	assert.Equal(t, schema.BranchTypeCodes[schema.FeatureBranch], got.BranchType)
}

func TestAssembleIsDeterministic(t *testing.T) {
	metrics := schema.ChangeSetMetrics{FilesChanged: 8, LinesAdded: 120, BranchName: "develop"}
	pctx := schema.ProjectContext{ProjectType: schema.JavaProject, RepoSizeMB: 92.1, DependencyCount: 31}
	cache := schema.CacheState{CacheAvailable: true}

	first := feature.Assemble(metrics, pctx, cache, schema.ReleaseBuild, schema.ProductionEnv, 9)
	second := feature.Assemble(metrics, pctx, cache, schema.ReleaseBuild, schema.ProductionEnv, 9)

	assert.Equal(t, first, second)

	firstJSON, err := first.EncodeJSON()
	assert.NoError(t, err)
	secondJSON, err := second.EncodeJSON()
	assert.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}
