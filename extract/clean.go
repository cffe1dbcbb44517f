package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean normalizes extracted text for chunking and embedding. It
// applies Unicode NFKC normalization, rejoins words hyphenated across
// line breaks, and collapses all whitespace runs to single spaces.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	// Rejoin words split across line breaks ("termi-\nnation").
	s = strings.ReplaceAll(s, "-\n", "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
