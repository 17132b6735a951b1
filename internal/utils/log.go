package utils

import "strings"

// TruncateForLog flattens document text onto one line and cuts it to limit
// runes, appending an ellipsis when something was dropped.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}
