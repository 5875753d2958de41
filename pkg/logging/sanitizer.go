package logging

import (
	"regexp"
)

const (
	// MaxURLLogLength is the maximum length of a catalog URL to log
	MaxURLLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match potential passwords in connection strings or form bodies
	// Matches: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Pattern to match OAuth secrets and session ids carried in form bodies or query strings
	secretParamPattern = regexp.MustCompile(`(?i)(access_token|refresh_token|client_secret|sid)=[^;&\s]+`)

	// Pattern to match bearer tokens. Salesforce session ids are not JWTs, so any
	// non-space run after "Bearer" is treated as a token.
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[^\s"]+`)

	// Pattern to match connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// SanitizeError sanitizes error messages that might contain sensitive data.
// Use this before logging or publishing any error from a catalog connection.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText redacts passwords, OAuth secrets and bearer tokens from free text.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(text, "${1}="+RedactedText)
	sanitized = secretParamPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeURL truncates and sanitizes a request URL for logging
func SanitizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	sanitized := secretParamPattern.ReplaceAllString(rawURL, "${1}="+RedactedText)
	return TruncateString(sanitized, MaxURLLogLength)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
