package chunk

import "regexp"

// clausePattern matches a dotted heading numeral like "4.2" or
// "10.1.3", optionally preceded by a Clause/Section keyword. Bare
// integers never match: a dotted numeral is required to keep false
// positives (years, page counts) down.
var clausePattern = regexp.MustCompile(`(?i)(?:(?:clause|section)\s*)?(\d+(?:\.\d+)+)`)

// clauseScanPrefix bounds the initial scan to the chunk heading region.
const clauseScanPrefix = 200

// ExtractClauseNumber returns the first dotted clause numeral found in
// text, preferring a match within the leading heading region before
// falling back to the whole chunk. Returns "" when nothing matches.
// This is a best-effort annotator: absence or a false match is never an
// error.
func ExtractClauseNumber(text string) string {
	head := text
	if len(head) > clauseScanPrefix {
		head = head[:clauseScanPrefix]
	}
	if m := clausePattern.FindStringSubmatch(head); m != nil {
		return m[1]
	}
	if m := clausePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
