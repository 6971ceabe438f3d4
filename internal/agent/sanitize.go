package agent

import (
	"strings"
	"unicode/utf8"

	"github.com/nextlevelbuilder/gptrelay/internal/providers"
)

// MaxReplyChars is the platform's message length limit.
const MaxReplyChars = 2000

const ellipsis = "..."

// SanitizeReply prepares completion text for delivery: an empty answer becomes the
// fallback text (the platform rejects empty messages) and long answers are truncated
// to MaxReplyChars.
func SanitizeReply(content string) string {
	if strings.TrimSpace(content) == "" {
		return providers.FallbackText
	}
	return TruncateReply(content, MaxReplyChars)
}

// TruncateReply shortens s to at most max characters, replacing the tail with "..."
// when truncation happens. Characters are counted as runes.
func TruncateReply(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	i := 0
	for pos := range s {
		if i == keep {
			return s[:pos] + ellipsis
		}
		i++
	}
	return s + ellipsis
}
