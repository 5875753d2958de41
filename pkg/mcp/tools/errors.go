package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/logging"
)

// ErrorResponse represents a structured error in tool results.
// Actionable errors are returned as tool results so the calling agent sees
// them instead of a bare protocol failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use it for errors the agent can act on (missing preferences, unknown org,
// bad parameters). System failures still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// errorResult converts a session error into a tool result when the agent
// can act on it. ok is false for errors that should surface as Go errors.
func errorResult(err error) (result *mcp.CallToolResult, ok bool) {
	msg := logging.SanitizeError(err)
	switch {
	case errors.Is(err, apperrors.ErrPreferencesNotSet):
		return NewErrorResult("preferences_not_set", "preferences must be set before building; call set_preferences first"), true
	case errors.Is(err, apperrors.ErrUnknownConnection):
		return NewErrorResult("unknown_connection", msg), true
	case errors.Is(err, apperrors.ErrNotFound):
		return NewErrorResult("not_found", msg), true
	case errors.Is(err, apperrors.ErrInvalidDocument):
		return NewErrorResult("invalid_document", msg), true
	case errors.Is(err, apperrors.ErrUnsupportedAdapter):
		return NewErrorResult("unsupported_adapter", msg), true
	}
	return nil, false
}
