package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
port: "3480"
env: "test"
catalog:
  api_version: "58.0"
  username: "yaml-user@example.com"
fetch:
  max_concurrent: 4
migration:
  dialect: "sqlserver"
  pluralize_tables: true
`)

	t.Setenv("PORT", "4480")
	t.Setenv("SF_USERNAME", "env-user@example.com")

	cfg, err := LoadFrom(path, "test-version")
	require.NoError(t, err)

	assert.Equal(t, "4480", cfg.Port, "env should override yaml")
	assert.Equal(t, "env-user@example.com", cfg.Catalog.Username)
	assert.Equal(t, "58.0", cfg.Catalog.APIVersion)
	assert.Equal(t, 4, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, "sqlserver", cfg.Migration.Dialect)
	assert.True(t, cfg.Migration.PluralizeTables)
	assert.Equal(t, "test-version", cfg.Version)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	require.NoError(t, err)

	assert.Equal(t, "3480", cfg.Port)
	assert.Equal(t, "https://login.salesforce.com", cfg.Catalog.LoginURL)
	assert.Equal(t, "59.0", cfg.Catalog.APIVersion)
	assert.Equal(t, 8, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, 10, cfg.Recipe.DefaultCount)
	assert.Equal(t, "postgres", cfg.Migration.Dialect)
	assert.True(t, cfg.MCP.Enabled)
	assert.False(t, cfg.Translate.ForceText)
}

func TestLoad_SecretsOnlyFromEnv(t *testing.T) {
	path := writeConfig(t, `
catalog:
  password: "from-yaml"
`)
	t.Setenv("SF_PASSWORD", "from-env")

	cfg, err := LoadFrom(path, "dev")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Catalog.Password)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative concurrency", "fetch:\n  max_concurrent: -2\n"},
		{"unknown dialect", "migration:\n  dialect: oracle\n"},
		{"negative retries", "catalog:\n  login_max_retries: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content), "dev")
			assert.Error(t, err)
		})
	}
}

func TestCatalogSettings(t *testing.T) {
	c := CatalogConfig{
		LoginURL:    "https://test.salesforce.com",
		APIVersion:  "59.0",
		Username:    "u@example.com",
		Password:    "pw",
		Token:       "tok",
		AccessToken: "00D!abc",
		InstanceURL: "https://x.my.salesforce.com",
	}
	m := c.CatalogSettings()
	assert.Equal(t, "https://test.salesforce.com", m["login_url"])
	assert.Equal(t, "tok", m["security_token"])
	assert.Equal(t, "00D!abc", m["access_token"])
	assert.Equal(t, "https://x.my.salesforce.com", m["instance_url"])
}
