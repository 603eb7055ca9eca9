// Package core has core logic for change analysis, prediction and instance selection.
package core

import (
	"context"
	"time"

	"github.com/sizeup-ci/sizeup/core/instance"
	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/internal/outwriter"
	"github.com/sizeup-ci/sizeup/schema"
)

type contextKey string

const suppressHeaderKey contextKey = "suppressHeader"

// WithSuppressHeader returns a context that silences the run header. Used by
// the MCP server, where stdout carries the protocol.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

func shouldSuppressHeader(ctx context.Context) bool {
	v, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && v
}

// GetSelectionResults runs the full selection pipeline and returns the chosen
// class with the wall time of the run. Both the CLI and the MCP server enter
// through here.
func GetSelectionResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (schema.SelectionResult, time.Duration, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
	}

	client := contract.NewLocalGitClient()
	analysis := runAnalysisCore(ctx, cfg, client, mgr)

	result, err := runSelectionCore(ctx, cfg, analysis, newPredictor(cfg))
	if err != nil {
		return schema.SelectionResult{}, 0, err
	}

	duration := time.Since(start)
	result.ElapsedMS = duration.Milliseconds()
	recordRun(cfg, mgr, analysis, result)
	return result, duration, nil
}

// GetPredictionResults runs detection and prediction without mapping onto
// the catalog and without recording a run. It backs the MCP prediction tool.
func GetPredictionResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (schema.PredictionResult, time.Duration) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
	}

	client := contract.NewLocalGitClient()
	analysis := runAnalysisCore(ctx, cfg, client, mgr)
	pred := resolvePrediction(ctx, analysis, newPredictor(cfg))
	return pred, time.Since(start)
}

// GetAnalysisResults runs the detection and assembly steps without touching
// the model runner. It backs the 'analyze' dry-run mode.
func GetAnalysisResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (*schema.AnalysisOutput, time.Duration) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
	}

	client := contract.NewLocalGitClient()
	output := runAnalysisCore(ctx, cfg, client, mgr)
	return output, time.Since(start)
}

// ExecuteSelect runs the full selection pipeline and prints the chosen
// instance class. It serves as the main entry point for the 'select' mode.
func ExecuteSelect(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	result, duration, err := GetSelectionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteSelection(result, cfg, duration)
}

// ExecuteAnalyze runs the detection steps and prints the assembled feature
// vector with its detection report. It serves as the main entry point for
// the 'analyze' mode.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	output, duration := GetAnalysisResults(ctx, cfg, mgr)
	return outwriter.WriteAnalysis(output, cfg, duration)
}

// ExecuteCatalog prints the instance class catalog.
// It serves as the main entry point for the 'catalog' mode.
func ExecuteCatalog(_ context.Context, cfg *contract.Config) error {
	return outwriter.WriteCatalog(instance.Classes(), cfg)
}
