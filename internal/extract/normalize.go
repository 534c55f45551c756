package extract

import (
	"regexp"
	"strings"
)

var (
	fillerPattern     = regexp.MustCompile(`[_*]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize strips underline and asterisk filler and collapses whitespace so
// that pattern matching does not depend on the form's layout.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = fillerPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
