// Package utils provides shared helpers for text, numerics and logging.
package utils

// Truncate shortens s to maxLen runes, appending "..." if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
