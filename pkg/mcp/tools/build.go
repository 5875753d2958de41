package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/services"
)

type failedObject struct {
	Object string `json:"object"`
	Error  string `json:"error"`
}

type buildResult struct {
	BatchID   string            `json:"batch_id"`
	Mode      models.FetchMode  `json:"mode"`
	State     models.BatchState `json:"state"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Cancelled int               `json:"cancelled,omitempty"`
	Total     int               `json:"total"`
	Objects   []string          `json:"objects"`
	Failures  []failedObject    `json:"failures,omitempty"`
	LimitInfo *models.LimitInfo `json:"limit_info,omitempty"`
}

func registerBuildTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"build_schema",
		mcp.WithDescription(
			"Describes the given objects of a connected org and translates their fields. "+
				"mode 'schema' produces column descriptors (read them with get_schema); "+
				"mode 'recipe' produces data generation rules (render them with generate_recipe). "+
				"Replaces the result of any previous build. Waits until every object has settled.",
		),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Org ID returned when the org was connected")),
		mcp.WithArray("objects", mcp.Required(), mcp.WithStringItems(), mcp.Description("Object API names, e.g. ['Account', 'Contact']")),
		mcp.WithString("mode", mcp.Enum("schema", "recipe"), mcp.Description("Translation mode (default: schema)")),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orgID, err := req.RequireString("org_id")
		if err != nil {
			return nil, err
		}
		objects := cleanNames(req.GetStringSlice("objects", nil))
		if len(objects) == 0 {
			return NewErrorResult("invalid_parameters", "objects must name at least one object"), nil
		}

		mode := models.FetchMode(req.GetString("mode", string(models.FetchModeSchema)))
		if !mode.IsValid() {
			return NewErrorResult("invalid_parameters", "mode must be 'schema' or 'recipe'"), nil
		}

		var batch *services.Batch
		if mode == models.FetchModeRecipe {
			batch, err = deps.Session.BuildRecipeForObjects(ctx, trimString(orgID), objects)
		} else {
			batch, err = deps.Session.BuildSchemaForObjects(ctx, trimString(orgID), objects)
		}
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			deps.Logger.Error("build_schema failed", zap.String("org_id", orgID), zap.Error(err))
			return nil, err
		}

		result := buildResult{BatchID: batch.ID.String(), Mode: mode, Total: len(batch.Objects)}
		for ev := range batch.Events() {
			switch ev.Type {
			case models.FetchEventObjectCompleted:
				result.Objects = append(result.Objects, ev.Object)
				result.LimitInfo = ev.LimitInfo
			case models.FetchEventObjectFailed:
				result.Failures = append(result.Failures, failedObject{Object: ev.Object, Error: ev.Error})
			case models.FetchEventBatchComplete:
				result.State = ev.State
				result.Succeeded = ev.Succeeded
				result.Failed = ev.Failed
				result.Cancelled = ev.Cancelled
			}
		}
		return jsonResult(result)
	})
}
