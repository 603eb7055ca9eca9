package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sizeup-ci/sizeup/core/instance"
	"github.com/sizeup-ci/sizeup/core/predict"
	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/internal/modelstore"
	"github.com/sizeup-ci/sizeup/schema"
)

// largeChangeFiles marks the change-set size called out in the selection
// rationale. Matches the top tier of the heuristic change scale.
const largeChangeFiles = 60

// Predictor produces a resource prediction for an assembled feature vector.
type Predictor interface {
	Predict(ctx context.Context, vector schema.FeatureVector) (schema.PredictionResult, error)
}

var _ Predictor = &predict.Client{} // Compile-time check

// newPredictor wires the model runner client from the resolved config.
// A nil predictor means model prediction is disabled and the heuristic
// estimate is used directly.
func newPredictor(cfg *contract.Config) Predictor {
	if cfg.NoModel {
		return nil
	}
	source := modelstore.NewSource(cfg)
	return predict.NewClient(cfg.Runner, cfg.ScriptPath, source, cfg.ModelTimeout)
}

// runSelectionCore turns an assembled analysis into a selection result.
func runSelectionCore(ctx context.Context, cfg *contract.Config, analysis *schema.AnalysisOutput, predictor Predictor) (schema.SelectionResult, error) {
	// --- 1. Resource Prediction ---
	pred := resolvePrediction(ctx, analysis, predictor)

	// --- 2. Catalog Mapping ---
	policy := instance.Policy{BufferFactor: cfg.BufferFactor, Bias: cfg.Bias}
	result, err := instance.NewMapper().Select(pred, policy)
	if err != nil {
		return schema.SelectionResult{}, err
	}

	// --- 3. Selection Rationale ---
	result.Reasons = buildReasons(analysis, result)
	return result, nil
}

// resolvePrediction asks the model runner for a prediction and falls back to
// the heuristic estimate when the model cannot answer. A failed model call
// warns but never fails the run.
func resolvePrediction(ctx context.Context, analysis *schema.AnalysisOutput, predictor Predictor) schema.PredictionResult {
	if predictor == nil {
		return predict.Estimate(analysis.Project.ProjectType, analysis.Vector)
	}

	pred, err := predictor.Predict(ctx, analysis.Vector)
	if err == nil {
		return pred
	}
	if errors.Is(err, schema.ErrManifestMismatch) {
		contract.LogWarn("Model feature schema mismatch, falling back to heuristic", err)
	} else {
		contract.LogWarn("Model prediction failed, falling back to heuristic", err)
	}
	return predict.Estimate(analysis.Project.ProjectType, analysis.Vector)
}

// buildReasons explains the selection in the order users read it: what the
// project is, what inflates the demand, and what to watch out for.
func buildReasons(analysis *schema.AnalysisOutput, sel schema.SelectionResult) []string {
	pred := sel.Prediction
	reasons := []string{fmt.Sprintf(
		"%s project: predicted %.1f GB peak memory, %.0f min build",
		analysis.Project.ProjectType, pred.MemoryGB, pred.TimeMinutes,
	)}

	pipe := analysis.Project.Pipeline
	if pipe.HasE2ETests {
		reasons = append(reasons, "e2e test stage raises memory demand")
	}
	if pipe.UsesEmulator {
		reasons = append(reasons, "emulator usage raises memory demand")
	}
	if pipe.HasDockerBuild {
		reasons = append(reasons, "docker image build present")
	}
	if analysis.Cache.IsFirstBuild {
		reasons = append(reasons, "first build for this job, no warm caches")
	}
	if analysis.Cache.IsCleanBuild {
		reasons = append(reasons, "clean build requested, caches discarded")
	}
	if analysis.Metrics.DepsChanged > 0 {
		reasons = append(reasons, "dependency manifest changed, cold resolution likely")
	}
	if analysis.Metrics.FilesChanged > largeChangeFiles {
		reasons = append(reasons, fmt.Sprintf("large change set (%d files)", analysis.Metrics.FilesChanged))
	}
	if analysis.Project.IsMonorepo {
		reasons = append(reasons, "monorepo workspace, broader build graph")
	}
	if sel.AtCapacity {
		reasons = append(reasons, fmt.Sprintf("demand exceeds the largest class, capped at %s", sel.Class.Name))
	}
	if pred.Method == schema.FallbackMethod {
		reasons = append(reasons, "heuristic estimate, model prediction unavailable")
	}
	return reasons
}

// recordRun persists the selection outcome for later training export.
// Failures warn and never fail a build.
func recordRun(cfg *contract.Config, mgr contract.HistoryManager, analysis *schema.AnalysisOutput, sel schema.SelectionResult) {
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	featureJSON, err := analysis.Vector.EncodeJSON()
	if err != nil {
		contract.LogWarn("Run recording skipped", err)
		return
	}

	durationMs := int32(sel.ElapsedMS)
	record := schema.RunRecord{
		JobName:         cfg.JobName,
		BuildNumber:     cfg.BuildNumber,
		CreatedAt:       time.Now(),
		Branch:          analysis.Metrics.BranchName,
		ProjectType:     string(analysis.Project.ProjectType),
		FeatureJSON:     string(featureJSON),
		CPUPercent:      sel.Prediction.CPUPercent,
		MemoryGB:        sel.Prediction.MemoryGB,
		TimeMinutes:     sel.Prediction.TimeMinutes,
		Confidence:      string(sel.Prediction.Confidence),
		Method:          string(sel.Prediction.Method),
		ClassName:       sel.Class.Name,
		InstanceType:    sel.Class.InstanceType,
		BufferedGB:      sel.BufferedMemoryGB,
		AtCapacity:      sel.AtCapacity,
		RunDurationMs:   &durationMs,
		FallbackApplied: sel.Prediction.Method == schema.FallbackMethod,
	}
	if _, err := store.RecordRun(record); err != nil {
		contract.LogWarn("Run recording failed", err)
	}
}
