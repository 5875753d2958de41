package salesforce

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-success reply from the REST or OAuth endpoints.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("salesforce returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("salesforce returned status %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsRetryable reports whether the request may succeed if repeated.
func (e *APIError) IsRetryable() bool {
	switch e.Code {
	case "SERVER_UNAVAILABLE", "UNABLE_TO_LOCK_ROW":
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// parseAPIError decodes either the REST error list or the OAuth error object.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var restErrs []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &restErrs); err == nil && len(restErrs) > 0 {
		apiErr.Code = restErrs[0].ErrorCode
		apiErr.Message = restErrs[0].Message
		return apiErr
	}

	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
		apiErr.Code = oauthErr.Error
		apiErr.Message = oauthErr.Description
		return apiErr
	}

	apiErr.Message = http.StatusText(status)
	return apiErr
}
