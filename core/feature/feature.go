// Package feature assembles the canonical model input vector from the
// analyzer outputs.
package feature

import (
	"math"

	"github.com/sizeup-ci/sizeup/schema"
)

// Changed-file composition ratios observed across the training corpus. The
// extractor does not classify individual paths, it applies the corpus share.
const (
	testFileShare   = 0.20
	sourceFileShare = 0.80
)

// Assemble builds the feature vector for one build. It is pure: the same
// inputs always produce the same vector, with the caller supplying the
// local hour so clock reads stay out of the extraction path.
func Assemble(
	metrics schema.ChangeSetMetrics,
	pctx schema.ProjectContext,
	cache schema.CacheState,
	buildType schema.BuildType,
	env schema.Environment,
	hour int,
) schema.FeatureVector {
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}

	sourcePct := 0.0
	testFiles := 0
	if metrics.FilesChanged > 0 {
		sourcePct = sourceFileShare
		testFiles = int(math.Round(float64(metrics.FilesChanged) * testFileShare))
	}

	pl := pctx.Pipeline
	return schema.FeatureVector{
		ProjectType:         schema.ProjectTypeCodes[pctx.ProjectType],
		RepoSizeMB:          pctx.RepoSizeMB,
		IsMonorepo:          schema.BoolFeature(pctx.IsMonorepo),
		BranchType:          schema.BranchTypeCodes[schema.ClassifyBranch(metrics.BranchName)],
		BuildType:           schema.BuildTypeCodes[buildType],
		Environment:         schema.EnvironmentCodes[env],
		FilesChanged:        metrics.FilesChanged,
		LinesAdded:          metrics.LinesAdded,
		LinesDeleted:        metrics.LinesDeleted,
		SourceFilesPct:      sourcePct,
		DepsFileChanged:     schema.BoolFeature(metrics.DepsChanged > 0),
		DependencyCount:     pctx.DependencyCount,
		TestFilesChanged:    testFiles,
		StagesCount:         pl.StagesCount,
		HasBuildStage:       schema.BoolFeature(pl.HasBuildStage),
		HasUnitTests:        schema.BoolFeature(pl.HasUnitTests),
		HasIntegrationTests: schema.BoolFeature(pl.HasIntegrationTests),
		HasE2ETests:         schema.BoolFeature(pl.HasE2ETests),
		HasDeployStage:      schema.BoolFeature(pl.HasDeployStage),
		HasDockerBuild:      schema.BoolFeature(pl.HasDockerBuild),
		UsesEmulator:        schema.BoolFeature(pl.UsesEmulator),
		ParallelStages:      pl.ParallelStages,
		HasArtifactPublish:  schema.BoolFeature(pl.HasArtifactPublish),
		IsFirstBuild:        schema.BoolFeature(cache.IsFirstBuild),
		CacheAvailable:      schema.BoolFeature(cache.CacheAvailable),
		IsCleanBuild:        schema.BoolFeature(cache.IsCleanBuild),
		TimeOfDayHour:       hour,
	}
}
