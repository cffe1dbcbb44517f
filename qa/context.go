package qa

import (
	"fmt"
	"strings"

	"github.com/poiesic/quaerit/core"
)

// BuildContext renders retrieved chunks as a single prompt block, each
// chunk preceded by a provenance header such as
// "[From policy.pdf | Page 12 | Clause 4.2]". Header fields without a
// value (page 0, empty clause) are omitted. The headers let the
// generator cite where in the document an answer came from.
func BuildContext(results []core.ScoredChunk) string {
	if len(results) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "[From %s", r.Chunk.Source)
		if r.Chunk.Page > 0 {
			fmt.Fprintf(&b, " | Page %d", r.Chunk.Page)
		}
		if r.Chunk.ClauseNumber != "" {
			fmt.Fprintf(&b, " | Clause %s", r.Chunk.ClauseNumber)
		}
		b.WriteString("]\n")
		b.WriteString(r.Chunk.Text)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}
