package domain

import (
	"strings"
	"unicode/utf8"
)

// TruncateUTF8 cuts s to at most n bytes without splitting a rune.
// Invalid sequences already in s are replaced.
func TruncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}

	s = strings.ToValidUTF8(s, "�")
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
