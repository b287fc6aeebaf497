package adapters

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// StripHTML converts an HTML fragment to plain text: tags removed,
// entities decoded, whitespace collapsed to single spaces and trimmed.
// Returns "" for empty or markup-only input.
func StripHTML(value string) string {
	if value == "" {
		return ""
	}

	text := scriptTag.ReplaceAllString(value, " ")
	text = styleTag.ReplaceAllString(text, " ")
	text = htmlComments.ReplaceAllString(text, " ")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	// Non-breaking spaces decode to U+00A0; fold them into the collapse.
	text = strings.ReplaceAll(text, " ", " ")
	text = whitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
