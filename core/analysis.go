package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sizeup-ci/sizeup/core/changeset"
	"github.com/sizeup-ci/sizeup/core/feature"
	"github.com/sizeup-ci/sizeup/core/project"
	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// runAnalysisCore performs the common Detection and Assembly steps shared by
// the select and analyze modes. Detection failures default the affected
// fields and are collected in the report; this function never fails.
func runAnalysisCore(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.HistoryManager) *schema.AnalysisOutput {
	var report schema.DetectionReport

	// --- 1. Change-Set Measurement ---
	metrics, csReport := changeset.NewAnalyzer(client).Analyze(ctx, cfg.WorkspacePath, cfg.BranchOverride)
	report.Merge(csReport)

	// --- 2. Project and Pipeline Detection ---
	pctx, projReport := project.NewAnalyzer().Analyze(cfg.WorkspacePath, cfg.PipelineFile)
	report.Merge(projReport)

	// --- 3. Cache and History State ---
	cache := buildCacheState(cfg, mgr, pctx.ProjectType)

	// --- 4. Vector Assembly ---
	hour := time.Now().Hour()
	vector := feature.Assemble(metrics, pctx, cache, cfg.BuildType, cfg.Environment, hour)

	for _, f := range report.Failures {
		contract.LogWarn(fmt.Sprintf("Could not measure %s, default used", f.Field), errors.New(f.Reason))
	}

	return &schema.AnalysisOutput{
		Metrics:     metrics,
		Project:     pctx,
		Cache:       cache,
		BuildType:   cfg.BuildType,
		Environment: cfg.Environment,
		HourOfDay:   hour,
		Vector:      vector,
		Report:      report,
	}
}

// buildCacheState resolves the cache and history posture of this build.
// The build number is the primary first-build signal; the run history is
// consulted only when the CI system did not provide one.
func buildCacheState(cfg *contract.Config, mgr contract.HistoryManager, pt schema.ProjectType) schema.CacheState {
	state := schema.CacheState{
		IsFirstBuild: isFirstBuild(cfg, mgr),
		IsCleanBuild: cfg.CleanBuild,
	}

	// A clean build discards caches even when they exist on disk.
	if !cfg.CleanBuild {
		state.CacheAvailable = cfg.CacheHit || project.DetectCacheDirs(cfg.WorkspacePath, pt)
	}
	return state
}

func isFirstBuild(cfg *contract.Config, mgr contract.HistoryManager) bool {
	if cfg.BuildNumber > 0 {
		return cfg.BuildNumber == 1
	}

	store := mgr.GetHistoryStore()
	if store == nil {
		return false
	}
	count, err := store.CountRuns(cfg.JobName)
	if err != nil {
		contract.LogWarn("Build history lookup failed", err)
		return false
	}
	return count == 0
}
