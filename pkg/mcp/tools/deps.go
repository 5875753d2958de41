// Package tools registers the MCP tools that expose session operations to
// agents.
package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/services"
)

// ToolDeps holds what the tools need to run.
type ToolDeps struct {
	Session *services.Session
	Logger  *zap.Logger
}

// RegisterAll adds every session tool to s.
func RegisterAll(s *server.MCPServer, deps *ToolDeps, version string) {
	RegisterHealthTool(s, version, deps)
	registerPreferencesTools(s, deps)
	registerOrgTools(s, deps)
	registerBuildTool(s, deps)
	registerSchemaTools(s, deps)
	registerRecipeTool(s, deps)
	registerMigrationTool(s, deps)
}
