package retrieve

import (
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/vector"
)

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during retrieval.
type Monitor interface {
	Start(query string)
	AfterQueryEmbedding(dimension int)
	AfterFilterSelection(allowed, total int, strategy string)
	AfterVectorSearch(hits []vector.Hit)
	Finish(results []core.ScoredChunk)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)               {}
func (n *noopMonitor) AfterFilterSelection(_, _ int, _ string) {}
func (n *noopMonitor) AfterVectorSearch(_ []vector.Hit)        {}
func (n *noopMonitor) Finish(_ []core.ScoredChunk)             {}
