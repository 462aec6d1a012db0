// Package typeutil provides safe type assertion helpers for data crossing the
// untyped map boundary (state serialization, JSON payloads). All helpers use
// the comma-ok idiom so malformed input never panics.
package typeutil

// SafeString asserts value to string.
// Returns the string and true if successful, or empty string and false if not.
func SafeString(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// SafeStringDefault asserts value to string with a default fallback.
func SafeStringDefault(value any, defaultVal string) string {
	if s, ok := SafeString(value); ok {
		return s
	}
	return defaultVal
}

// SafeInt asserts value to int.
// Also handles float64, the type JSON unmarshaling produces for numbers.
func SafeInt(value any) (int, bool) {
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	default:
		return 0, false
	}
}

// SafeIntDefault asserts value to int with a default fallback.
func SafeIntDefault(value any, defaultVal int) int {
	if i, ok := SafeInt(value); ok {
		return i
	}
	return defaultVal
}

// SafeBool asserts value to bool.
func SafeBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	b, ok := value.(bool)
	return b, ok
}

// SafeBoolDefault asserts value to bool with a default fallback.
func SafeBoolDefault(value any, defaultVal bool) bool {
	if b, ok := SafeBool(value); ok {
		return b
	}
	return defaultVal
}

// SafeSlice asserts value to []any.
func SafeSlice(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	s, ok := value.([]any)
	return s, ok
}

// SafeMapStringAny asserts value to map[string]any.
func SafeMapStringAny(value any) (map[string]any, bool) {
	if value == nil {
		return nil, false
	}
	m, ok := value.(map[string]any)
	return m, ok
}
