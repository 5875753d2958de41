package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()
	session := services.NewSession(
		catalog.NewConnectionFactory(logger),
		services.NewPreferencesStore(filepath.Join(dir, "prefs.yaml"), logger),
		services.NewMessageHub(10, logger),
		services.SessionConfig{MigrationDir: filepath.Join(dir, "migrations")},
		logger,
	)
	return NewServer("test-server", "1.0.0", session, logger)
}

func TestNewServer_RegistersSessionTools(t *testing.T) {
	s := newTestServer(t)
	require.NotNil(t, s.MCP())

	result := s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &response))

	var names []string
	for _, tool := range response.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"build_schema", "connect_org", "generate_recipe", "get_preferences", "get_schema",
		"health", "list_connections", "list_objects", "load_schema", "set_preferences", "write_migration",
	}, names)
}

func TestServer_RegisterTool(t *testing.T) {
	s := newTestServer(t)

	called := false
	s.RegisterTool(mcp.NewTool("extra", mcp.WithDescription("An extra tool")), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	})
	assert.False(t, called, "handler should not be called during registration")

	s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"extra"},"id":2}`))
	assert.True(t, called)
}

func TestServer_NewStreamableHTTPServer(t *testing.T) {
	assert.NotNil(t, newTestServer(t).NewStreamableHTTPServer())
}
