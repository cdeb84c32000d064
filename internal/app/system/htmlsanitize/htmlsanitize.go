// Package htmlsanitize cleans user-entered free text before it is sent to
// the contacts service.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes all markup from s and keeps the text. Script and style
// bodies are dropped with their tags. Entities are decoded, since the
// result is stored as text and escaped again when rendered.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strict.Sanitize(s))
}

// Field is PlainText with surrounding whitespace trimmed, for single-line
// inputs.
func Field(s string) string {
	return strings.TrimSpace(PlainText(s))
}
