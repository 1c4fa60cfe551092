package text

import (
	"regexp"
	"strings"
)

// MaxSummaryLength is the maximum length of a stored article summary, matching
// the bounded summary column in the articles table.
const MaxSummaryLength = 250

// ellipsis is appended to truncated summaries.
const ellipsis = "..."

// tagPattern matches HTML-like tags. Crawled payloads may carry markup in the
// summary field; the stored summary must be plain text.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML-like tags from the given text.
// It is a pattern-based strip, not an HTML parser: good enough for
// defensive cleaning of crawler output, not for untrusted rendering.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// SanitizeSummary cleans a raw article summary for storage:
// tags are stripped, surrounding whitespace is trimmed, and the result is
// truncated to MaxSummaryLength runes with a trailing ellipsis marker.
// Rune-based truncation keeps multi-byte text (Japanese, Chinese, emoji) intact.
func SanitizeSummary(raw string) string {
	clean := strings.TrimSpace(StripTags(raw))
	if CountRunes(clean) <= MaxSummaryLength {
		return clean
	}
	runes := []rune(clean)
	return string(runes[:MaxSummaryLength-len(ellipsis)]) + ellipsis
}
