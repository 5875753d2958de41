package catalog

import "fmt"

// StringValue reads an optional string from a generic config map.
func StringValue(config map[string]any, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}

// IntValue reads an optional integer from a generic config map. JSON numbers
// arrive as float64.
func IntValue(config map[string]any, key string, fallback int) (int, error) {
	switch v := config[key].(type) {
	case nil:
		return fallback, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}
