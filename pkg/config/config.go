package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigFileName is the optional YAML file read by Load.
const ConfigFileName = "config.yaml"

// Config holds all configuration for schemaforge.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, tokens) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// PreferencesPath is where translation preferences are persisted between runs.
	PreferencesPath string `yaml:"preferences_path" env:"PREFERENCES_PATH" env-default:"preferences.yaml"`

	Catalog   CatalogConfig   `yaml:"catalog"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Translate TranslateConfig `yaml:"translate"`
	Recipe    RecipeConfig    `yaml:"recipe"`
	Migration MigrationConfig `yaml:"migration"`
	MCP       MCPConfig       `yaml:"mcp"`
}

// CatalogConfig holds settings for connecting to the remote metadata catalog.
type CatalogConfig struct {
	// LoginURL is the OAuth host. Use https://test.salesforce.com for sandboxes.
	LoginURL   string `yaml:"login_url" env:"SF_LOGIN_URL" env-default:"https://login.salesforce.com"`
	APIVersion string `yaml:"api_version" env:"SF_API_VERSION" env-default:"59.0"`
	// RequestTimeoutSeconds bounds every describe call. Timeouts belong to the connection layer.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"SF_REQUEST_TIMEOUT_SECONDS" env-default:"30"`
	// LoginMaxRetries applies to the login handshake only; describe calls are never retried.
	LoginMaxRetries int `yaml:"login_max_retries" env:"SF_LOGIN_MAX_RETRIES" env-default:"3"`

	Username     string `yaml:"username" env:"SF_USERNAME" env-default:""`
	ClientID     string `yaml:"client_id" env:"SF_CLIENT_ID" env-default:""`
	Password     string `yaml:"-" env:"SF_PASSWORD"`       // Secret - not in YAML
	Token        string `yaml:"-" env:"SF_SECURITY_TOKEN"` // Secret - not in YAML
	ClientSecret string `yaml:"-" env:"SF_CLIENT_SECRET"`  // Secret - not in YAML
	AccessToken  string `yaml:"-" env:"SF_ACCESS_TOKEN"`   // Secret - not in YAML
	InstanceURL  string `yaml:"instance_url" env:"SF_INSTANCE_URL" env-default:""`
}

// FetchConfig bounds the describe fan-out for one fetch batch.
type FetchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" env:"FETCH_MAX_CONCURRENT" env-default:"8"`
}

// TranslateConfig holds global translation switches that are not user preferences.
type TranslateConfig struct {
	// ForceText maps every string column to text regardless of length.
	ForceText bool `yaml:"force_text" env:"TRANSLATE_FORCE_TEXT" env-default:"false"`
}

// RecipeConfig holds recipe generation defaults.
type RecipeConfig struct {
	DefaultCount int `yaml:"default_count" env:"RECIPE_DEFAULT_COUNT" env-default:"10"`
}

// MigrationConfig controls where generated migrations are written and how.
type MigrationConfig struct {
	Dir             string `yaml:"dir" env:"MIGRATION_DIR" env-default:"generated_migrations"`
	Dialect         string `yaml:"dialect" env:"MIGRATION_DIALECT" env-default:"postgres"`
	PluralizeTables bool   `yaml:"pluralize_tables" env:"MIGRATION_PLURALIZE_TABLES" env-default:"false"`
}

// MCPConfig controls the MCP tool endpoint.
type MCPConfig struct {
	Enabled bool `yaml:"enabled" env:"MCP_ENABLED" env-default:"true"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// A missing config.yaml is not an error; environment variables and defaults apply.
func Load(version string) (*Config, error) {
	return LoadFrom(ConfigFileName, version)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Inside a container, a login URL on localhost points at the host machine.
	cfg.Catalog.LoginURL = ResolveURLForDocker(cfg.Catalog.LoginURL)
	if IsRunningInDocker() && cfg.BindAddr == "127.0.0.1" {
		cfg.BindAddr = "0.0.0.0"
	}

	return cfg, nil
}

// validate checks values that cleanenv cannot express as tags.
func (c *Config) validate() error {
	if c.Fetch.MaxConcurrent < 1 {
		return fmt.Errorf("fetch.max_concurrent must be at least 1, got %d", c.Fetch.MaxConcurrent)
	}
	if c.Recipe.DefaultCount < 1 {
		return fmt.Errorf("recipe.default_count must be at least 1, got %d", c.Recipe.DefaultCount)
	}
	if c.Catalog.LoginMaxRetries < 0 {
		return fmt.Errorf("catalog.login_max_retries cannot be negative")
	}

	c.Migration.Dialect = strings.ToLower(strings.TrimSpace(c.Migration.Dialect))
	switch c.Migration.Dialect {
	case "postgres", "sqlserver":
	default:
		return fmt.Errorf("migration.dialect must be postgres or sqlserver, got %q", c.Migration.Dialect)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// CatalogSettings returns the catalog configuration as the generic map
// consumed by catalog adapter factories.
func (c *CatalogConfig) CatalogSettings() map[string]any {
	return map[string]any{
		"login_url":               c.LoginURL,
		"api_version":             c.APIVersion,
		"request_timeout_seconds": c.RequestTimeoutSeconds,
		"login_max_retries":       c.LoginMaxRetries,
		"username":                c.Username,
		"password":                c.Password,
		"security_token":          c.Token,
		"client_id":               c.ClientID,
		"client_secret":           c.ClientSecret,
		"access_token":            c.AccessToken,
		"instance_url":            c.InstanceURL,
	}
}
