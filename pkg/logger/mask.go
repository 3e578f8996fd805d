package logger

import "strings"

const maskVisible = 4

// MaskSecret hides all but the last few characters of a secret so it can appear in debug output.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= maskVisible*2 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-maskVisible) + secret[len(secret)-maskVisible:]
}
