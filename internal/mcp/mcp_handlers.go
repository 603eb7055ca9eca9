package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sizeup-ci/sizeup/core"
	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// configFromRequest clones the base config and applies the overrides shared
// by both tools. Callers run the result through core.WithSuppressHeader so
// stdout stays protocol-only.
func (h *toolHandler) configFromRequest(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()

	if b := request.GetString("branch", ""); b != "" {
		cfg.BranchOverride = b
	}
	if bt := request.GetString("build_type", ""); bt != "" {
		cfg.BuildType = schema.ParseBuildType(bt)
	}
	if env := request.GetString("environment", ""); env != "" {
		cfg.Environment = schema.ParseEnvironment(env)
	}
	cfg.CleanBuild = request.GetBool("clean_build", cfg.CleanBuild)
	cfg.CacheHit = request.GetBool("cache_hit", cfg.CacheHit)
	cfg.NoModel = request.GetBool("no_model", cfg.NoModel)

	workspace := request.GetString("workspace", "")
	jobName := request.GetString("job_name", "")
	if workspace != "" || jobName != "" {
		if workspace == "" {
			workspace = cfg.WorkspacePath
		}
		if err := contract.RevalidateWorkspace(cfg, workspace, jobName); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (h *toolHandler) handlePredictBuildResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid prediction parameters: %v", err)), nil
	}

	pred, _ := core.GetPredictionResults(core.WithSuppressHeader(ctx), cfg, h.mgr)

	jsonData, _ := json.MarshalIndent(pred, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSelectInstanceClass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid selection parameters: %v", err)), nil
	}

	if bf := request.GetFloat("buffer_factor", 0); bf != 0 {
		if bf < contract.MinBufferFactor || bf > contract.MaxBufferFactor {
			return mcp.NewToolResultError(fmt.Sprintf(
				"buffer_factor must be between %.1f and %.1f", contract.MinBufferFactor, contract.MaxBufferFactor)), nil
		}
		cfg.BufferFactor = bf
	}
	if b := request.GetString("bias", ""); b != "" {
		bias := schema.ProvisionBias(b)
		if _, ok := schema.ValidProvisionBiases[bias]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid bias %q: must be balanced, cost, reliability", b)), nil
		}
		cfg.Bias = bias
	}

	result, _, err := core.GetSelectionResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("selection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
