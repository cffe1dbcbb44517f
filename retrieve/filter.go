package retrieve

import "github.com/poiesic/quaerit/core"

// Filter restricts retrieval to chunks matching metadata predicates.
// The zero value matches every chunk.
type Filter struct {
	// Source, when non-empty, requires an exact source match.
	Source string

	// PageMin and PageMax, when either is positive, bound the page
	// number inclusively. Chunks without page provenance (page 0)
	// never match a page-bounded filter.
	PageMin int
	PageMax int

	// Clause, when non-empty, requires an exact clause number match.
	Clause string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Source == "" && f.PageMin == 0 && f.PageMax == 0 && f.Clause == ""
}

// Matches reports whether a chunk passes every requested predicate.
func (f Filter) Matches(c core.Chunk) bool {
	if f.Source != "" && c.Source != f.Source {
		return false
	}
	if f.PageMin > 0 || f.PageMax > 0 {
		if c.Page == 0 {
			return false
		}
		if f.PageMin > 0 && c.Page < f.PageMin {
			return false
		}
		if f.PageMax > 0 && c.Page > f.PageMax {
			return false
		}
	}
	if f.Clause != "" && c.ClauseNumber != f.Clause {
		return false
	}
	return true
}
