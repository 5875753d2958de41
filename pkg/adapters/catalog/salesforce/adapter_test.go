package salesforce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
)

// fakeOrg serves the subset of the REST API the adapter uses.
type fakeOrg struct {
	server      *httptest.Server
	loginCalls  atomic.Int32
	revokeCalls atomic.Int32
	requests    atomic.Int32
	// loginFailures makes the first N logins reply 503.
	loginFailures int32
	badPassword   bool
}

func newFakeOrg(t *testing.T) *fakeOrg {
	t.Helper()
	f := &fakeOrg{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.loginCalls.Add(1)
		require.NoError(t, r.ParseForm())
		if n <= f.loginFailures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if f.badPassword || r.PostForm.Get("password") != "secretTOKEN" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"authentication failure"}`))
			return
		}
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		writeJSON(w, map[string]string{
			"access_token": "00Dxx0000001gPL!AQ4AQ",
			"instance_url": f.server.URL,
			"id":           f.server.URL + "/id/00Dxx0000001gPLEAY/005xx000001SwiUAAS",
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("POST /services/oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		f.revokeCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /services/data/v59.0/limits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(LimitInfoHeader, "api-usage=10/15000")
		writeJSON(w, map[string]any{})
	})
	mux.HandleFunc("GET /services/data/v59.0/sobjects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer 00Dxx0000001gPL!AQ4AQ", r.Header.Get("Authorization"))
		w.Header().Set(LimitInfoHeader, "api-usage=11/15000")
		writeJSON(w, map[string]any{"sobjects": []map[string]any{
			{"name": "Account", "label": "Account", "createable": true},
			{"name": "npsp__Trigger_Handler__c", "label": "Trigger Handler", "createable": true, "custom": true},
		}})
	})
	mux.HandleFunc("GET /services/data/v59.0/sobjects/Contact/describe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(LimitInfoHeader, "api-usage=12/15000")
		writeJSON(w, map[string]any{
			"name": "Contact",
			"fields": []map[string]any{
				{"name": "Id", "type": "id", "length": 18},
				{"name": "LeadSource", "type": "picklist", "picklistValues": []map[string]any{{"value": "Web", "active": true}}},
			},
			"childRelationships": []map[string]any{
				{"childSObject": "Case", "field": "ContactId", "relationshipName": "Cases", "cascadeDelete": false},
			},
		})
	})
	mux.HandleFunc("GET /services/data/v59.0/sobjects/Missing__c/describe", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`))
	})

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeOrg) config() map[string]any {
	return map[string]any{
		"login_url":         f.server.URL,
		"username":          "admin@example.com",
		"password":          "secret",
		"security_token":    "TOKEN",
		"client_id":         "client-1",
		"login_max_retries": 3,
	}
}

func connect(t *testing.T, f *fakeOrg) *Adapter {
	t.Helper()
	cfg, err := FromMap(f.config())
	require.NoError(t, err)
	cfg.LoginMaxRetries = 2
	a, err := NewAdapter(context.Background(), cfg, f.server.Client(), zap.NewNop())
	require.NoError(t, err)
	return a
}

func TestNewAdapter_PasswordLogin(t *testing.T) {
	f := newFakeOrg(t)
	a := connect(t, f)

	assert.Equal(t, "00Dxx0000001gPLEAY", a.OrgID())
	assert.Equal(t, int32(1), f.loginCalls.Load())

	info := a.Info()
	assert.Equal(t, AdapterType, info.Adapter)
	assert.Equal(t, f.server.URL, info.InstanceURL)
	assert.Equal(t, "admin@example.com", info.Username)
	require.NotNil(t, info.LimitInfo)
	assert.Equal(t, 10, info.LimitInfo.Used)
	assert.Equal(t, 15000, info.LimitInfo.Max)
}

func TestNewAdapter_RetriesTransientLoginFailure(t *testing.T) {
	f := newFakeOrg(t)
	f.loginFailures = 1
	a := connect(t, f)

	assert.Equal(t, int32(2), f.loginCalls.Load())
	assert.NotEmpty(t, a.OrgID())
}

func TestNewAdapter_BadPasswordNotRetried(t *testing.T) {
	f := newFakeOrg(t)
	f.badPassword = true
	cfg, err := FromMap(f.config())
	require.NoError(t, err)

	_, err = NewAdapter(context.Background(), cfg, f.server.Client(), zap.NewNop())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_grant", apiErr.Code)
	assert.False(t, apiErr.IsRetryable())
	assert.Equal(t, int32(1), f.loginCalls.Load())
	assert.NotContains(t, err.Error(), "secret")
}

func TestAdapter_DescribeGlobal(t *testing.T) {
	f := newFakeOrg(t)
	a := connect(t, f)

	objects, err := a.DescribeGlobal(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "Account", objects[0].Name)
	assert.True(t, objects[1].Custom)
	assert.Equal(t, 11, a.LimitInfo().Used)
}

func TestAdapter_Describe(t *testing.T) {
	f := newFakeOrg(t)
	a := connect(t, f)

	d, err := a.Describe(context.Background(), "Contact")
	require.NoError(t, err)
	assert.Equal(t, "Contact", d.Name)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, "Web", d.Fields[1].PicklistValues[0].Value)
	require.Len(t, d.ChildRelationships, 1)
	assert.Equal(t, "Cases", *d.ChildRelationships[0].RelationshipName)
	assert.Equal(t, 12, a.LimitInfo().Used)
}

func TestAdapter_DescribeNotFound(t *testing.T) {
	f := newFakeOrg(t)
	a := connect(t, f)

	_, err := a.Describe(context.Background(), "Missing__c")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Contains(t, err.Error(), "describe Missing__c")
}

func TestAdapter_DescribeRejectsInvalidObjectNames(t *testing.T) {
	f := newFakeOrg(t)
	a := connect(t, f)
	before := f.requests.Load()

	for _, name := range []string{"", "../limits", "Contact/../../limits", "Contact%2F..", `Contact\x`, "Contact describe", "__c"} {
		_, err := a.Describe(context.Background(), name)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "invalid object name", name)
	}
	assert.Equal(t, before, f.requests.Load(), "no request reaches the org")
}

func TestAdapter_CloseRevokesOwnedSession(t *testing.T) {
	f := newFakeOrg(t)
	a := connect(t, f)
	require.NoError(t, a.Close())
	assert.Equal(t, int32(1), f.revokeCalls.Load())
}

func TestAdapter_ReusedSession(t *testing.T) {
	f := newFakeOrg(t)
	cfg, err := FromMap(map[string]any{
		"access_token": "00Dxx0000001gPL!AQ4AQ",
		"instance_url": f.server.URL + "/",
	})
	require.NoError(t, err)

	a, err := NewAdapter(context.Background(), cfg, f.server.Client(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "00Dxx0000001gPL", a.OrgID())
	assert.Nil(t, a.LimitInfo())
	assert.Zero(t, f.loginCalls.Load())

	_, err = a.DescribeGlobal(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.Zero(t, f.revokeCalls.Load())
}

func TestParseLimitInfo(t *testing.T) {
	tests := []struct {
		header string
		ok     bool
		used   int
		max    int
	}{
		{"api-usage=25/15000", true, 25, 15000},
		{"per-app-api-usage=1/100(appName=x), api-usage=7/500", true, 7, 500},
		{"", false, 0, 0},
		{"api-usage=abc/100", false, 0, 0},
		{"api-usage=5", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			li, ok := ParseLimitInfo(tt.header)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.used, li.Used)
				assert.Equal(t, tt.max, li.Max)
			}
		})
	}
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"username": "u", "password": "p", "client_id": "c",
		"api_version": "v60.0", "login_url": "https://test.salesforce.com/",
		"request_timeout_seconds": float64(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "60.0", cfg.APIVersion)
	assert.Equal(t, "https://test.salesforce.com", cfg.LoginURL)
	assert.Equal(t, 3, cfg.LoginMaxRetries)
	assert.False(t, cfg.UsesAccessToken())

	_, err = FromMap(map[string]any{"username": "u", "client_id": "c"})
	assert.ErrorContains(t, err, "password")

	_, err = FromMap(map[string]any{"access_token": "t"})
	assert.ErrorContains(t, err, "username")
}

func TestAPIError_IsRetryable(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 503}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: 429}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: 400, Code: "UNABLE_TO_LOCK_ROW"}).IsRetryable())
	assert.False(t, (&APIError{StatusCode: 401, Code: "INVALID_SESSION_ID"}).IsRetryable())
}

func TestRegistered(t *testing.T) {
	assert.True(t, catalog.IsRegistered(AdapterType))
}
