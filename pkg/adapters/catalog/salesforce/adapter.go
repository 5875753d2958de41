// Package salesforce implements the catalog connection over the Salesforce
// REST API.
package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/logging"
	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/retry"
)

// LimitInfoHeader carries API usage on every REST response.
const LimitInfoHeader = "Sforce-Limit-Info"

// Adapter is a logged-in REST session.
type Adapter struct {
	cfg        *Config
	httpClient *http.Client
	logger     *zap.Logger

	instanceURL string
	accessToken string
	orgID       string
	// ownsSession is true when the session came from our own login and
	// should be revoked on Close.
	ownsSession bool

	mu    sync.RWMutex
	limit *models.LimitInfo
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	ID          string `json:"id"`
	TokenType   string `json:"token_type"`
}

// NewAdapter opens a session, either by password login or by reusing the
// configured access token.
func NewAdapter(ctx context.Context, cfg *Config, httpClient *http.Client, logger *zap.Logger) (*Adapter, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	a := &Adapter{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.Named("salesforce"),
	}

	if cfg.UsesAccessToken() {
		a.instanceURL = cfg.InstanceURL
		a.accessToken = cfg.AccessToken
		a.orgID = orgIDFromSession(cfg.AccessToken, cfg.InstanceURL)
		a.logger.Info("Reusing existing session",
			zap.String("instance_url", a.instanceURL),
			zap.String("org_id", a.orgID))
		return a, nil
	}

	retryCfg := retry.WithMaxRetries(cfg.LoginMaxRetries)
	tok, err := retry.DoIfRetryableWithResult(ctx, retryCfg, func() (*tokenResponse, error) {
		return a.login(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	a.instanceURL = strings.TrimRight(tok.InstanceURL, "/")
	a.accessToken = tok.AccessToken
	a.orgID = orgIDFromIdentity(tok.ID)
	a.ownsSession = true

	a.logger.Info("Logged in",
		zap.String("instance_url", a.instanceURL),
		zap.String("org_id", a.orgID),
		zap.String("username", cfg.Username))

	// The token endpoint does not report limits; fetch them once so the
	// caller can show usage right after connecting.
	if err := a.refreshLimits(ctx); err != nil {
		a.logger.Warn("Could not read API limits", zap.String("error", logging.SanitizeError(err)))
	}

	return a, nil
}

func (a *Adapter) login(ctx context.Context) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", a.cfg.ClientID)
	if a.cfg.ClientSecret != "" {
		form.Set("client_secret", a.cfg.ClientSecret)
	}
	form.Set("username", a.cfg.Username)
	form.Set("password", a.cfg.Password+a.cfg.SecurityToken)

	endpoint, err := buildURL(a.cfg.LoginURL, "services", "oauth2", "token")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("Requesting token", zap.String("url", logging.SanitizeURL(endpoint)))

	var tok tokenResponse
	if err := a.do(req, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return nil, fmt.Errorf("token response missing access_token or instance_url")
	}
	return &tok, nil
}

// OrgID returns the connected org's ID.
func (a *Adapter) OrgID() string {
	return a.orgID
}

// Info describes the session without secrets.
func (a *Adapter) Info() models.OrgConnection {
	return models.OrgConnection{
		OrgID:       a.orgID,
		Adapter:     AdapterType,
		InstanceURL: a.instanceURL,
		Username:    a.cfg.Username,
		LimitInfo:   a.LimitInfo(),
	}
}

// DescribeGlobal lists every object in the org.
func (a *Adapter) DescribeGlobal(ctx context.Context) ([]models.GlobalObject, error) {
	var resp struct {
		SObjects []models.GlobalObject `json:"sobjects"`
	}
	if err := a.get(ctx, &resp, "sobjects"); err != nil {
		return nil, fmt.Errorf("describe global: %w", err)
	}
	return resp.SObjects, nil
}

// Describe returns the metadata of one object.
func (a *Adapter) Describe(ctx context.Context, objectName string) (*models.ObjectDescribe, error) {
	if !objectNamePattern.MatchString(objectName) {
		return nil, fmt.Errorf("describe %q: invalid object name", objectName)
	}

	var d models.ObjectDescribe
	if err := a.get(ctx, &d, "sobjects", objectName, "describe"); err != nil {
		return nil, fmt.Errorf("describe %s: %w", objectName, err)
	}
	if d.Name == "" {
		d.Name = objectName
	}
	return &d, nil
}

// LimitInfo returns the usage reported by the most recent response.
func (a *Adapter) LimitInfo() *models.LimitInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.limit == nil {
		return nil
	}
	li := *a.limit
	return &li
}

// Close revokes the session if it was opened by this adapter.
func (a *Adapter) Close() error {
	if !a.ownsSession {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	endpoint, err := buildURL(a.instanceURL, "services", "oauth2", "revoke")
	if err != nil {
		return err
	}
	form := url.Values{"token": {a.accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := a.do(req, nil); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	a.logger.Info("Logged out", zap.String("org_id", a.orgID))
	return nil
}

func (a *Adapter) refreshLimits(ctx context.Context) error {
	var ignored map[string]any
	return a.get(ctx, &ignored, "limits")
}

// get issues an authenticated GET against the versioned data API.
func (a *Adapter) get(ctx context.Context, out any, segments ...string) error {
	parts := append([]string{"services", "data", "v" + a.cfg.APIVersion}, segments...)
	endpoint, err := buildURL(a.instanceURL, parts...)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Accept", "application/json")

	return a.do(req, out)
}

// do executes req, records limit info and decodes a JSON body into out.
func (a *Adapter) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call salesforce: %w", err)
	}
	defer resp.Body.Close()

	if li, ok := ParseLimitInfo(resp.Header.Get(LimitInfoHeader)); ok {
		a.mu.Lock()
		a.limit = li
		a.mu.Unlock()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp.StatusCode, body)
		a.logger.Warn("Salesforce returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("url", logging.SanitizeURL(req.URL.String())))
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ParseLimitInfo reads a header value such as "api-usage=25/15000".
func ParseLimitInfo(header string) (*models.LimitInfo, bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key != "api-usage" {
			continue
		}
		usedStr, maxStr, ok := strings.Cut(value, "/")
		if !ok {
			return nil, false
		}
		used, err1 := strconv.Atoi(strings.TrimSpace(usedStr))
		limit, err2 := strconv.Atoi(strings.TrimSpace(maxStr))
		if err1 != nil || err2 != nil {
			return nil, false
		}
		return &models.LimitInfo{Used: used, Max: limit}, true
	}
	return nil, false
}

// orgIDFromIdentity extracts the org ID from an identity URL of the form
// https://login.salesforce.com/id/<orgId>/<userId>.
func orgIDFromIdentity(identity string) string {
	u, err := url.Parse(identity)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "id" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// orgIDFromSession uses the org prefix of a session ID ("00D...!...") and
// falls back to the instance host.
func orgIDFromSession(token, instanceURL string) string {
	if prefix, _, ok := strings.Cut(token, "!"); ok && strings.HasPrefix(prefix, "00D") {
		return prefix
	}
	if u, err := url.Parse(instanceURL); err == nil && u.Host != "" {
		return u.Host
	}
	return instanceURL
}

// buildURL constructs a URL by parsing the base and joining path segments.
// objectNamePattern matches object API names, including namespaced and
// custom ones such as npsp__Trigger_Handler__c.
var objectNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL: %q", baseURL)
	}

	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)
	return u.String(), nil
}

var _ catalog.Connection = (*Adapter)(nil)
