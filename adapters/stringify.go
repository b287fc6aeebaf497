package adapters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Stringify serializes an arbitrary decoded-JSON value to a deterministic
// plain string. Arrays join with ","; objects join as "k:v" pairs,
// comma-separated, in key order. nil becomes "".
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		// JSON numbers decode to float64; keep integers unsuffixed.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + Stringify(v[k])
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeTags accepts a vendor tag field as either a native array or a
// comma-delimited string and returns a trimmed list with empties dropped.
func NormalizeTags(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if tag := strings.TrimSpace(Stringify(item)); tag != "" {
				tags = append(tags, tag)
			}
		}
		return tags
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		tags := make([]string, 0, len(parts))
		for _, part := range parts {
			if tag := strings.TrimSpace(part); tag != "" {
				tags = append(tags, tag)
			}
		}
		return tags
	default:
		if tag := strings.TrimSpace(Stringify(v)); tag != "" {
			return []string{tag}
		}
		return nil
	}
}

// flattenMap stringifies every value of a vendor metadata object into the
// attribute map, prefixing keys when the vendor namespaces them.
func flattenMap(dst map[string]string, src map[string]any, prefix string) {
	for key, value := range src {
		dst[prefix+key] = Stringify(value)
	}
}
