package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/schemaforge/pkg/services"
)

func registerRecipeTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"generate_recipe",
		mcp.WithDescription(
			"Renders the rules built by the last recipe-mode build_schema call as a YAML data generation recipe. "+
				"Each object becomes one block with the requested record count.",
		),
		mcp.WithArray("objects", mcp.WithStringItems(), mcp.Description("Objects to include, in order (default: all, by name)")),
		mcp.WithNumber("count", mcp.Description("Records to generate per object (default from configuration)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		count := req.GetInt("count", 0)
		var selections []services.RecipeSelection
		for _, name := range cleanNames(req.GetStringSlice("objects", nil)) {
			selections = append(selections, services.RecipeSelection{Object: name, Count: count})
		}

		data, err := deps.Session.SerializeRecipe(selections)
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			return nil, err
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}
