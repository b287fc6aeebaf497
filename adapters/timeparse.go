package adapters

import (
	"strings"
	"time"
)

// Vendor timestamp layouts, tried in order. Shopify emits RFC 3339;
// WordPress emits bare "2006-01-02T15:04:05" in GMT fields.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO-8601-ish vendor timestamp. Returns nil for
// absent or unparsable values.
func ParseTime(value any) *time.Time {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// updatedAtOrNow resolves the required last-updated timestamp: the
// vendor's updated value, else its published value, else ingestion time.
func updatedAtOrNow(updated, published any) time.Time {
	if t := ParseTime(updated); t != nil {
		return *t
	}
	if t := ParseTime(published); t != nil {
		return *t
	}
	return time.Now().UTC()
}
