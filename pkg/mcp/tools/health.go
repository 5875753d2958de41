package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Connections    int    `json:"connections"`
	PreferencesSet bool   `json:"preferences_set"`
}

// RegisterHealthTool adds a health check tool reporting version and session
// readiness.
func RegisterHealthTool(s *server.MCPServer, version string, deps *ToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version and whether the session is ready to build"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{Status: "ok", Version: version}
		if deps != nil && deps.Session != nil {
			result.Connections = len(deps.Session.Connections())
			result.PreferencesSet = deps.Session.Preferences() != nil
		}
		return jsonResult(result)
	})
}
