package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerSchemaTools(s *server.MCPServer, deps *ToolDeps) {
	getSchema := mcp.NewTool(
		"get_schema",
		mcp.WithDescription(
			"Returns the schema document built by the last schema-mode build_schema call or load: "+
				"object name -> field name -> column descriptor (type, size, precision, scale, default, values, target, index).",
		),
		mcp.WithArray("objects", mcp.WithStringItems(), mcp.Description("Optional: only return these objects")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(getSchema, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		doc := deps.Session.SchemaDocument()
		if filter := cleanNames(req.GetStringSlice("objects", nil)); len(filter) > 0 {
			for name := range doc {
				if !contains(filter, name) {
					delete(doc, name)
				}
			}
		}
		return jsonResult(doc)
	})

	loadSchema := mcp.NewTool(
		"load_schema",
		mcp.WithDescription("Replaces the current schema with a schema document given as JSON text. Invalid documents are rejected and leave the schema unchanged."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Schema document JSON")),
		mcp.WithDestructiveHintAnnotation(true),
	)
	s.AddTool(loadSchema, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("document")
		if err != nil {
			return nil, err
		}
		doc, err := deps.Session.LoadSchemaFromDocument([]byte(text))
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			return nil, err
		}
		return jsonResult(map[string]int{"objects": len(doc)})
	})
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
