package qa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/docindex"
	"github.com/poiesic/quaerit/retrieve"
)

// DefaultTopK is the number of chunks retrieved as answer context when
// no other value is configured.
const DefaultTopK = 3

// NotFoundAnswer is returned when retrieval produced no usable context.
// The generator is not consulted in that case; an answer it invented
// would not be grounded in the document.
const NotFoundAnswer = "I could not find relevant information in the document to answer this question."

// Builder produces a document index for a source on demand.
// ingestion.Pipeline satisfies this interface.
type Builder interface {
	Build(ctx context.Context, source string) (*core.DocumentIndex, error)
}

// Result pairs a question with its generated answer and the chunks the
// answer was grounded on. Sources is empty when the engine answered
// with NotFoundAnswer.
type Result struct {
	Question string
	Answer   string
	Sources  []core.ScoredChunk
}

// Engine answers questions about documents. Indexes are built lazily
// through the cache on first use of a source and reused afterward.
// An Engine is safe for concurrent use.
type Engine struct {
	cache          *docindex.Cache
	builder        Builder
	retriever      *retrieve.Retriever
	generator      ai.Generator
	topK           int
	exchangeWindow int
	monitor        retrieve.Monitor
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithTopK sets how many chunks are retrieved as context per question.
func WithTopK(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return fmt.Errorf("top k must be at least 1, got %d", k)
		}
		e.topK = k
		return nil
	}
}

// WithExchangeWindow sets how many question/answer exchanges are
// replayed to the generator as conversation history. Zero disables
// conversational memory entirely.
func WithExchangeWindow(exchanges int) Option {
	return func(e *Engine) error {
		if exchanges < 0 {
			return fmt.Errorf("exchange window must not be negative, got %d", exchanges)
		}
		e.exchangeWindow = exchanges
		return nil
	}
}

// WithMonitor installs an observer that receives retrieval callbacks
// for every question the engine answers. Nil disables observation.
func WithMonitor(monitor retrieve.Monitor) Option {
	return func(e *Engine) error {
		e.monitor = monitor
		return nil
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger.With("component", "qa_engine")
		return nil
	}
}

// NewEngine creates a question-answering engine over the given cache,
// index builder, retriever, and answer generator.
func NewEngine(cache *docindex.Cache, builder Builder, retriever *retrieve.Retriever, generator ai.Generator, opts ...Option) (*Engine, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if builder == nil {
		return nil, ErrBuilderRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	e := &Engine{
		cache:          cache,
		builder:        builder,
		retriever:      retriever,
		generator:      generator,
		topK:           DefaultTopK,
		exchangeWindow: core.DefaultExchangeWindow,
		logger:         slog.Default().With("component", "qa_engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Answer responds to a single question about source, using history as
// the conversation so far. The history is not mutated; callers that
// want conversational memory append the returned exchange themselves
// or use a Session.
func (e *Engine) Answer(ctx context.Context, source, question string, history core.Window) (*Result, error) {
	entry, err := e.entry(ctx, source)
	if err != nil {
		return nil, err
	}
	return e.answer(ctx, entry, question, history)
}

// ProcessDocument indexes source, then answers each question in order.
// The questions share one conversation window, so later questions may
// refer back to earlier answers. If the document cannot be indexed, an
// error is returned and no questions are answered.
func (e *Engine) ProcessDocument(ctx context.Context, source string, questions []string) ([]Result, error) {
	entry, err := e.entry(ctx, source)
	if err != nil {
		return nil, err
	}

	e.logger.Info("processing document", "source", source, "questions", len(questions))

	results := make([]Result, 0, len(questions))
	var history core.Window
	for _, question := range questions {
		res, err := e.answer(ctx, entry, question, history)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
		history = history.
			Append(core.RoleUser, question).
			Append(core.RoleAssistant, res.Answer).
			Trim(e.exchangeWindow)
	}
	return results, nil
}

// entry resolves the cached index entry for source, building it on a
// cache miss.
func (e *Engine) entry(ctx context.Context, source string) (*docindex.Entry, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrSourceRequired
	}
	entry, err := e.cache.GetOrBuild(ctx, source, func(ctx context.Context) (*core.DocumentIndex, error) {
		return e.builder.Build(ctx, source)
	})
	if err != nil {
		return nil, &BuildError{Source: source, Err: err}
	}
	return entry, nil
}

func (e *Engine) answer(ctx context.Context, entry *docindex.Entry, question string, history core.Window) (*Result, error) {
	var filter retrieve.Filter
	clause := DetectClause(question)
	if clause != "" {
		filter.Clause = clause
		e.logger.Debug("detected clause reference", "clause", clause)
	}

	results, err := e.retriever.RetrieveWithMonitor(ctx, entry, question, e.topK, filter, e.monitor)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	// A clause reference is a hint, not a hard constraint: when no
	// chunk carries the number, retry unfiltered.
	if len(results) == 0 && clause != "" {
		e.logger.Warn("no chunks matched clause filter, retrying unfiltered", "clause", clause)
		results, err = e.retriever.RetrieveWithMonitor(ctx, entry, question, e.topK, retrieve.Filter{}, e.monitor)
		if err != nil {
			return nil, fmt.Errorf("retrieving context: %w", err)
		}
	}

	if len(results) == 0 {
		return &Result{Question: question, Answer: NotFoundAnswer}, nil
	}

	answer, err := e.generator.GenerateAnswer(ctx, history.Trim(e.exchangeWindow), question, BuildContext(results))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	return &Result{Question: question, Answer: answer, Sources: results}, nil
}
