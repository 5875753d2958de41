package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

func registerPreferencesTools(s *server.MCPServer, deps *ToolDeps) {
	getPrefs := mcp.NewTool(
		"get_preferences",
		mcp.WithDescription("Returns the active translation preferences, or an error result when none are set."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(getPrefs, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prefs := deps.Session.Preferences()
		if prefs == nil {
			return NewErrorResult("preferences_not_set", "no preferences are active"), nil
		}
		return jsonResult(prefs)
	})

	setPrefs := mcp.NewTool(
		"set_preferences",
		mcp.WithDescription(
			"Activates translation preferences. Pass a JSON object with any of: "+
				"picklists {type: 'enum'|'string', unrestricted, ensureBlanks}, lookups {type: 'char(18)'|'string'}, "+
				"indexes {externalIds, lookups, picklists}, defaults {attemptSFValues, textEmptyString, "+
				"checkboxDefaultFalse, suppressReadOnly, suppressAudit}. Omitted keys keep their defaults.",
		),
		mcp.WithString("preferences", mcp.Description("Preferences JSON (default: the built-in defaults)")),
		mcp.WithBoolean("persist", mcp.Description("Also save them to the preferences file (default: false)")),
	)
	s.AddTool(setPrefs, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prefs := models.NewDefaultPreferences()
		if text := trimString(req.GetString("preferences", "")); text != "" {
			if err := json.Unmarshal([]byte(text), &prefs); err != nil {
				return NewErrorResult("invalid_parameters", "preferences is not valid JSON: "+err.Error()), nil
			}
		}

		var err error
		if req.GetBool("persist", false) {
			err = deps.Session.SavePreferences(prefs)
		} else {
			err = deps.Session.SetPreferences(prefs)
		}
		if err != nil {
			if res, ok := errorResult(err); ok {
				return res, nil
			}
			return nil, err
		}
		return jsonResult(prefs)
	})
}
