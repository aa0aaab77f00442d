// Package redact scrubs sensitive information from strings before they
// are logged or surfaced as item failure reasons. Backend errors can
// carry the request URL (including the API key query parameter),
// credentials from configuration, local file paths, and upstream host
// names; none of those belong in a user-visible error.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
	RedactedFileErrorPlaceholder  = "[REDACTED_FILE_ERROR]"
)

var (
	// API keys passed as labelled values ("api_key: ...", "key=...").
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// API keys embedded as URL query parameters, the way backend client
	// errors echo the failing request URL.
	urlKeyParamRegex = regexp.MustCompile(`(?i)([?&](?:key|token|api_key)=)[^&\s]+`)

	// Bearer tokens from authorization headers.
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`)

	// Local file paths, unix and windows.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// Upstream host names, with optional port.
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)

	// Filesystem error phrasing that reveals layout details.
	fileErrorRegex = regexp.MustCompile(
		`(?i)(?:no such file|file not found|cannot open|can't open|permission denied)`,
	)

	// Patterns are applied in order; key patterns run before the host
	// pattern so a URL loses its key parameter before the host is folded.
	patterns = []struct {
		re          *regexp.Regexp
		placeholder string
	}{
		{urlKeyParamRegex, "$1" + RedactedKeyPlaceholder},
		{apiKeyRegex, RedactedKeyPlaceholder},
		{bearerRegex, RedactedCredentialPlaceholder},
		{unixPathRegex, RedactedPathPlaceholder},
		{winPathRegex, RedactedPathPlaceholder},
		{hostPortRegex, RedactedHostPlaceholder},
		{fileErrorRegex, RedactedFileErrorPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
// A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
