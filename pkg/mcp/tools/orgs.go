package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/logging"
)

func registerOrgTools(s *server.MCPServer, deps *ToolDeps) {
	connect := mcp.NewTool(
		"connect_org",
		mcp.WithDescription(
			"Opens a connection to an org through a catalog adapter. "+
				"For 'file' pass {dir}; for 'salesforce' pass {username, password, security_token, client_id, client_secret} "+
				"or {access_token, instance_url}.",
		),
		mcp.WithString("adapter", mcp.Required(), mcp.Description("Adapter type, e.g. 'salesforce' or 'file'")),
		mcp.WithObject("config", mcp.Description("Adapter settings")),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(connect, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		adapter, err := req.RequireString("adapter")
		if err != nil {
			return nil, err
		}
		config, _ := req.GetArguments()["config"].(map[string]any)

		info, err := deps.Session.Connect(ctx, trimString(adapter), config)
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			return NewErrorResult("connect_failed", logging.SanitizeError(err)), nil
		}
		return jsonResult(info)
	})

	listConnections := mcp.NewTool(
		"list_connections",
		mcp.WithDescription("Lists the connected orgs with their API usage."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(listConnections, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(deps.Session.Connections())
	})

	listObjects := mcp.NewTool(
		"list_objects",
		mcp.WithDescription(
			"Lists every object of a connected org together with the inferred org profile "+
				"(npsp, eda or other) and the objects recommended for a schema build.",
		),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Org ID returned when the org was connected")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(listObjects, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orgID, err := req.RequireString("org_id")
		if err != nil {
			return nil, err
		}

		objects, err := deps.Session.DescribeOrgObjects(ctx, trimString(orgID))
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			deps.Logger.Error("list_objects failed", zap.String("org_id", orgID), zap.Error(err))
			return nil, err
		}
		return jsonResult(objects)
	})
}
