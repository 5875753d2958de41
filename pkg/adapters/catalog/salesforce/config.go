package salesforce

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
)

// Config contains Salesforce connection options.
type Config struct {
	LoginURL      string
	APIVersion    string
	Username      string
	Password      string
	SecurityToken string
	ClientID      string
	ClientSecret  string
	// AccessToken and InstanceURL skip the password login when both are set.
	AccessToken     string
	InstanceURL     string
	RequestTimeout  time.Duration
	LoginMaxRetries int
}

// DefaultLoginURL is the production login host.
const DefaultLoginURL = "https://login.salesforce.com"

// DefaultAPIVersion is used when no version is configured.
const DefaultAPIVersion = "59.0"

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		LoginURL:      catalog.StringValue(config, "login_url"),
		APIVersion:    strings.TrimPrefix(catalog.StringValue(config, "api_version"), "v"),
		Username:      catalog.StringValue(config, "username"),
		Password:      catalog.StringValue(config, "password"),
		SecurityToken: catalog.StringValue(config, "security_token"),
		ClientID:      catalog.StringValue(config, "client_id"),
		ClientSecret:  catalog.StringValue(config, "client_secret"),
		AccessToken:   catalog.StringValue(config, "access_token"),
		InstanceURL:   strings.TrimRight(catalog.StringValue(config, "instance_url"), "/"),
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	cfg.LoginURL = strings.TrimRight(cfg.LoginURL, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	timeout, err := catalog.IntValue(config, "request_timeout_seconds", 30)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = time.Duration(timeout) * time.Second

	if cfg.LoginMaxRetries, err = catalog.IntValue(config, "login_max_retries", 3); err != nil {
		return nil, err
	}

	if cfg.UsesAccessToken() {
		return cfg, nil
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}
	return cfg, nil
}

// UsesAccessToken reports whether an existing session is reused.
func (c *Config) UsesAccessToken() bool {
	return c.AccessToken != "" && c.InstanceURL != ""
}
