// Package sanitize cleans caller-supplied strings before they become module
// labels, file headers or markdown served back to MCP clients.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the maximum allowed length for module names.
const MaxNameLength = 64

// MaxTextLength is the maximum allowed length for free text rendered into resources.
const MaxTextLength = 512

var (
	// reMarkdownHeading matches markdown headings at the start of a line (# , ## , etc.).
	reMarkdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+`)

	// reTripleBacktick matches triple (or more) backtick sequences used in code fences.
	reTripleBacktick = regexp.MustCompile("```+")

	reRepeatedHyphens     = regexp.MustCompile(`-{2,}`)
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// ModuleName keeps only [a-zA-Z0-9._-] and enforces MaxNameLength.
// Spaces become underscores; repeated hyphens and underscores collapse.
// The result is safe as a CSV header suffix and Arrow field name.
func ModuleName(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.TrimSpace(input) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	s := b.String()

	s = reRepeatedHyphens.ReplaceAllString(s, "-")
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")

	return truncate(s, MaxNameLength)
}

// Text makes a single line of free text safe to embed in markdown:
// control characters and newlines are dropped, headings and code fences
// are neutralised, and the result is truncated to MaxTextLength.
func Text(input string) string {
	if input == "" {
		return ""
	}

	s := reMarkdownHeading.ReplaceAllString(input, "")
	s = stripControlChars(s)
	s = reTripleBacktick.ReplaceAllString(s, "`")
	s = strings.TrimSpace(s)

	if len(s) > MaxTextLength {
		s = truncate(s, MaxTextLength) + "..."
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripControlChars removes ASCII control characters (0x00-0x1F and 0x7F).
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
