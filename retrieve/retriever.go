package retrieve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/docindex"
	"github.com/poiesic/quaerit/vector"
)

const (
	// DefaultOverfetch is the candidate multiple requested when
	// filtering over the full index.
	DefaultOverfetch = 16

	// DefaultSubIndexThreshold is the allowed-to-total ratio at or
	// below which a restricted sub-index is searched instead.
	// Overfetch must be at least the inverse of this threshold so a
	// dense filter always widens to a full scan before results could
	// be silently truncated below the candidate population.
	DefaultSubIndexThreshold = 0.25
)

// Strategy names reported to monitors.
const (
	strategyDirect    = "direct"
	strategySubIndex  = "subindex"
	strategyOverfetch = "overfetch"
)

// Retriever ranks document chunks against natural-language queries.
type Retriever struct {
	embedder          ai.Embedder
	overfetch         int
	subIndexThreshold float64
	logger            *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithOverfetch sets the candidate multiple for filtered searches.
// Values below 1 are raised to 1.
func WithOverfetch(factor int) Option {
	return func(r *Retriever) error {
		if factor < 1 {
			factor = 1
		}
		r.overfetch = factor
		return nil
	}
}

// WithSubIndexThreshold sets the allowed-to-total ratio at or below
// which filtered retrieval searches a restricted sub-index.
func WithSubIndexThreshold(threshold float64) Option {
	return func(r *Retriever) error {
		if threshold < 0 {
			threshold = 0
		}
		if threshold > 1 {
			threshold = 1
		}
		r.subIndexThreshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		embedder:          embedder,
		overfetch:         DefaultOverfetch,
		subIndexThreshold: DefaultSubIndexThreshold,
		logger:            slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns up to k chunks from entry ranked by similarity to
// query, restricted by filter. A blank query yields an empty result,
// not an error; so does a filter matching no chunks. Fewer than k
// results are returned when the population is small, never padding.
func (r *Retriever) Retrieve(ctx context.Context, entry *docindex.Entry, query string, k int, filter Filter) ([]core.ScoredChunk, error) {
	return r.RetrieveWithMonitor(ctx, entry, query, k, filter, nil)
}

// RetrieveWithMonitor is Retrieve with observation hooks.
// The monitor receives callbacks at each stage of the retrieval.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, entry *docindex.Entry, query string, k int, filter Filter, monitor Monitor) ([]core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k < 1 {
		return nil, ErrInvalidTopK
	}

	monitor.Start(query)

	// A blank query carries no evidence to rank against. Callers treat
	// "no chunks" as "not found", not as a fault.
	if strings.TrimSpace(query) == "" {
		results := []core.ScoredChunk{}
		monitor.Finish(results)
		return results, nil
	}

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	queryVector := vector.Normalize(embedding)
	monitor.AfterQueryEmbedding(len(queryVector))

	total := entry.Index.Len()

	if filter.IsZero() {
		monitor.AfterFilterSelection(total, total, strategyDirect)
		hits, err := entry.Index.Search(queryVector, k)
		if err != nil {
			return nil, err
		}
		monitor.AfterVectorSearch(hits)
		results := r.collect(entry, hits)
		monitor.Finish(results)
		return results, nil
	}

	allowed := make([]int, 0, total)
	for id, chunk := range entry.Chunks {
		if filter.Matches(chunk) {
			allowed = append(allowed, id)
		}
	}

	if len(allowed) == 0 {
		monitor.AfterFilterSelection(0, total, strategyDirect)
		results := []core.ScoredChunk{}
		monitor.Finish(results)
		return results, nil
	}

	density := float64(len(allowed)) / float64(total)
	if density <= r.subIndexThreshold {
		monitor.AfterFilterSelection(len(allowed), total, strategySubIndex)
		results, err := r.searchSubIndex(entry, queryVector, k, allowed, monitor)
		if err != nil {
			return nil, err
		}
		monitor.Finish(results)
		return results, nil
	}

	monitor.AfterFilterSelection(len(allowed), total, strategyOverfetch)
	results, err := r.searchOverfetch(entry, queryVector, k, allowed, monitor)
	if err != nil {
		return nil, err
	}
	monitor.Finish(results)
	return results, nil
}

// searchSubIndex searches a temporary index restricted to the allowed
// rows. Rows are carried over verbatim, so scores are identical to a
// full-index search.
func (r *Retriever) searchSubIndex(entry *docindex.Entry, queryVector []float32, k int, allowed []int, monitor Monitor) ([]core.ScoredChunk, error) {
	sub, err := entry.Index.Restrict(allowed)
	if err != nil {
		return nil, err
	}

	hits, err := sub.Search(queryVector, k)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(hits)

	results := make([]core.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		id := allowed[hit.ID]
		results = append(results, core.ScoredChunk{Chunk: entry.Chunks[id], Score: hit.Score})
	}
	return results, nil
}

// searchOverfetch searches the full index for a candidate multiple of
// k, then keeps the first k candidates passing the filter.
func (r *Retriever) searchOverfetch(entry *docindex.Entry, queryVector []float32, k int, allowed []int, monitor Monitor) ([]core.ScoredChunk, error) {
	searchK := k * r.overfetch
	if searchK > entry.Index.Len() || searchK < k {
		searchK = entry.Index.Len()
	}

	hits, err := entry.Index.Search(queryVector, searchK)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(hits)

	allowedSet := make(map[int]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}

	results := make([]core.ScoredChunk, 0, k)
	for _, hit := range hits {
		if _, ok := allowedSet[hit.ID]; !ok {
			continue
		}
		results = append(results, core.ScoredChunk{Chunk: entry.Chunks[hit.ID], Score: hit.Score})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// collect maps unfiltered hits back to chunk records.
func (r *Retriever) collect(entry *docindex.Entry, hits []vector.Hit) []core.ScoredChunk {
	results := make([]core.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		results = append(results, core.ScoredChunk{Chunk: entry.Chunks[hit.ID], Score: hit.Score})
	}
	return results
}
