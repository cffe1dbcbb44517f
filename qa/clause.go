package qa

import "regexp"

// clausePattern finds dotted clause references in free text, with or
// without a leading keyword: "clause 4.2", "Section 3.1.5", or a bare
// "4.2". Plain integers never match; a reference needs at least one dot.
var clausePattern = regexp.MustCompile(`(?:\b[Cc]lause\b|\b[Ss]ection\b)?\s*:?\.?\s*(\d+(?:\.\d+)+)`)

// DetectClause extracts a dotted clause reference such as "4.2" from a
// question. It returns the first reference found, or the empty string
// when the question carries none.
func DetectClause(question string) string {
	m := clausePattern.FindStringSubmatch(question)
	if m == nil {
		return ""
	}
	return m[1]
}
