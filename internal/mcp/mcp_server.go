// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sizeup-ci/sizeup/internal/contract"
)

// NewMCPServer initializes and configures the sizeup MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Sizeup Selection Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_build_resources ---
	s.AddTool(mcp.NewTool("predict_build_resources",
		mcp.WithDescription("Predict peak CPU, memory and duration for the next CI build of a workspace."),
		mcp.WithString("workspace", mcp.Description("Path to the build workspace (defaults to the server's workspace).")),
		mcp.WithString("job_name", mcp.Description("CI job identifier (defaults to the workspace base name).")),
		mcp.WithString("branch", mcp.Description("Branch name override when git detection is unavailable.")),
		mcp.WithString("build_type", mcp.Description("Build flavor. Defaults to 'debug'."), mcp.Enum("debug", "release")),
		mcp.WithString("environment", mcp.Description("Target environment. Defaults to 'development'."), mcp.Enum("development", "staging", "production")),
		mcp.WithBoolean("clean_build", mcp.Description("Workspace was wiped before this build.")),
		mcp.WithBoolean("cache_hit", mcp.Description("CI restored a dependency cache for this build.")),
		mcp.WithBoolean("no_model", mcp.Description("Skip the model runner and use the heuristic estimate only.")),
	), h.handlePredictBuildResources)

	// --- 2. Tool: select_instance_class ---
	s.AddTool(mcp.NewTool("select_instance_class",
		mcp.WithDescription("Predict build resources and select the cheapest fitting instance class from the catalog."),
		mcp.WithString("workspace", mcp.Description("Path to the build workspace (defaults to the server's workspace).")),
		mcp.WithString("job_name", mcp.Description("CI job identifier (defaults to the workspace base name).")),
		mcp.WithString("branch", mcp.Description("Branch name override when git detection is unavailable.")),
		mcp.WithString("build_type", mcp.Description("Build flavor. Defaults to 'debug'."), mcp.Enum("debug", "release")),
		mcp.WithString("environment", mcp.Description("Target environment. Defaults to 'development'."), mcp.Enum("development", "staging", "production")),
		mcp.WithBoolean("clean_build", mcp.Description("Workspace was wiped before this build.")),
		mcp.WithBoolean("cache_hit", mcp.Description("CI restored a dependency cache for this build.")),
		mcp.WithBoolean("no_model", mcp.Description("Skip the model runner and use the heuristic estimate only.")),
		mcp.WithNumber("buffer_factor", mcp.Description("Safety multiplier on predicted memory (1.0 to 3.0).")),
		mcp.WithString("bias", mcp.Description("Provisioning trade-off. Defaults to 'balanced'."), mcp.Enum("balanced", "cost", "reliability")),
	), h.handleSelectInstanceClass)

	return s
}

// StartMCPServer starts the sizeup MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
