// Package prompt contains pure helpers for parsing prompt files and
// shaping prompt text for display.
package prompt

import (
	"regexp"
	"strings"
)

// MinPromptLength is the minimum number of characters a prompt must have
// after trimming; shorter entries are treated as noise and dropped.
const MinPromptLength = 6

var whitespaceRe = regexp.MustCompile(`\s+`)

// SplitPrompts parses semicolon-separated prompts from a text blob.
// Entries are trimmed, internal runs of whitespace (including newlines)
// collapse to single spaces, and empty or too-short entries are dropped.
func SplitPrompts(text string) []string {
	parts := strings.Split(text, ";")

	prompts := make([]string, 0, len(parts))
	for _, part := range parts {
		cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(part), " ")
		if len(cleaned) < MinPromptLength {
			continue
		}
		prompts = append(prompts, cleaned)
	}

	return prompts
}

// Truncate shortens s to at most max characters, appending an ellipsis
// when anything was cut. Used to keep log lines readable.
func Truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		if len(s) <= max {
			return s
		}
		return s[:max]
	}
	return s[:max-3] + "..."
}
