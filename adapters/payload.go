package adapters

// Raw payload accessors. Payloads are decoded JSON; a missing or
// differently-typed field yields the zero value.

// stringField returns the first non-empty string among the given keys.
func stringField(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// mapField returns the object under key, or nil.
func mapField(payload map[string]any, key string) map[string]any {
	m, _ := payload[key].(map[string]any)
	return m
}

// sliceField returns the array of objects under key, dropping non-object
// elements.
func sliceField(payload map[string]any, key string) []map[string]any {
	raw, _ := payload[key].([]any)
	if raw == nil {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}
