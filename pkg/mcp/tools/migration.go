package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/migration"
)

func registerMigrationTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"write_migration",
		mcp.WithDescription("Writes the current schema as the next up/down SQL migration pair in the configured migrations directory."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Migration name, e.g. 'initial_schema'")),
		mcp.WithString("dialect", mcp.Enum(migration.Dialects()...), mcp.Description("SQL dialect (default from configuration)")),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return nil, err
		}

		files, err := deps.Session.WriteMigration(req.GetString("dialect", ""), trimString(name))
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			deps.Logger.Warn("write_migration failed", zap.Error(err))
			return NewErrorResult("migration_failed", err.Error()), nil
		}
		return jsonResult(files)
	})
}
