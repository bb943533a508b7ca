package document

// GetString extracts a string value from the map with a default fallback.
// Returns defaultVal if the key doesn't exist, the value is nil, or not a string.
func GetString(m map[string]any, key string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}

	val, ok := m[key]
	if !ok || val == nil {
		return defaultVal
	}

	str, ok := val.(string)
	if !ok {
		return defaultVal
	}

	return str
}

// GetMap extracts a nested map[string]any from the map.
// Returns nil if the key doesn't exist, the value is nil, or not a map.
func GetMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}

	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}

	nested, ok := val.(map[string]any)
	if !ok {
		return nil
	}

	return nested
}

// GetList extracts a list value from the map.
// Returns nil if the key doesn't exist, the value is nil, or not a list.
func GetList(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}

	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}

	list, ok := val.([]any)
	if !ok {
		return nil
	}

	return list
}

// Strings normalizes a value that may be a single string or a list of
// strings into a slice. Non-string list elements are skipped; any other
// shape yields nil. This is the shared normalization for fields that the
// source format writes as either a scalar id or a collection of ids.
func Strings(val any) []string {
	switch v := val.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}
