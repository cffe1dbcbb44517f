// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package quaerit

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/ai/openai"
	"github.com/poiesic/quaerit/chunk"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/docindex"
	"github.com/poiesic/quaerit/fetch"
	"github.com/poiesic/quaerit/ingestion"
	"github.com/poiesic/quaerit/qa"
	"github.com/poiesic/quaerit/retrieve"
	"github.com/poiesic/quaerit/storage"
	"github.com/poiesic/quaerit/storage/badger"
)

// System wires the full document question-answering stack: fetcher,
// chunker, embedding pipeline, index cache, retriever, and answer
// engine. It is the entry point used by the CLI and the HTTP server.
type System struct {
	provider  ai.Provider
	store     storage.IndexStore
	pipeline  *ingestion.Pipeline
	cache     *docindex.Cache
	retriever *retrieve.Retriever
	engine    *qa.Engine
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig       *ai.Config
	provider       ai.Provider
	storeDir       string
	cacheCapacity  int
	chunkSize      int
	chunkOverlap   int
	topK           int
	exchangeWindow int
	monitor        retrieve.Monitor
	progress       io.Writer
	logger         *slog.Logger
}

// WithAIConfig sets the configuration for the OpenAI-compatible
// embedding and generation services.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing
// one from the AI config. Used by tests and by callers with their own
// provider lifecycle.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithStoreDir enables on-disk index persistence in the given
// directory. Without it, indexes live only in memory.
func WithStoreDir(dir string) SystemOption {
	return func(o *systemOptions) {
		o.storeDir = dir
	}
}

// WithCacheCapacity bounds the in-memory index cache to n documents,
// evicting the least recently used. Zero or negative means unbounded.
func WithCacheCapacity(n int) SystemOption {
	return func(o *systemOptions) {
		o.cacheCapacity = n
	}
}

// WithChunking sets the chunk window size and overlap in tokens.
func WithChunking(size, overlap int) SystemOption {
	return func(o *systemOptions) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithTopK sets how many chunks are retrieved as answer context.
func WithTopK(k int) SystemOption {
	return func(o *systemOptions) {
		o.topK = k
	}
}

// WithExchangeWindow sets how many question/answer exchanges are kept
// as conversational context.
func WithExchangeWindow(exchanges int) SystemOption {
	return func(o *systemOptions) {
		o.exchangeWindow = exchanges
	}
}

// WithRetrievalMonitor installs an observer that receives retrieval
// callbacks for every answered question. The CLI uses this for its
// verbose mode.
func WithRetrievalMonitor(monitor retrieve.Monitor) SystemOption {
	return func(o *systemOptions) {
		o.monitor = monitor
	}
}

// WithProgressWriter enables progress output during index builds,
// typically os.Stderr for interactive use.
func WithProgressWriter(w io.Writer) SystemOption {
	return func(o *systemOptions) {
		o.progress = w
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		o.logger = logger
	}
}

// NewSystem constructs a complete question-answering system.
func NewSystem(opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig:       ai.DefaultConfig(),
		chunkSize:      chunk.DefaultChunkSize,
		chunkOverlap:   chunk.DefaultOverlap,
		topK:           qa.DefaultTopK,
		exchangeWindow: core.DefaultExchangeWindow,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	tokenizer, err := chunk.NewTiktokenTokenizer(chunk.EncodingCL100K)
	if err != nil {
		provider.Close()
		return nil, err
	}

	chunker, err := chunk.NewChunker(tokenizer, options.chunkSize, options.chunkOverlap)
	if err != nil {
		provider.Close()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{ingestion.WithLogger(logger)}
	if options.progress != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgressWriter(options.progress))
	}
	pipeline, err := ingestion.NewPipeline(fetch.New(fetch.WithLogger(logger)), chunker, provider.Embedder(), pipelineOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	cacheOpts := []docindex.Option{docindex.WithLogger(logger)}
	var store storage.IndexStore
	if options.storeDir != "" {
		store, err = badger.NewStore(options.storeDir)
		if err != nil {
			pipeline.Release()
			provider.Close()
			return nil, err
		}
		cacheOpts = append(cacheOpts, docindex.WithStore(store))
	}
	if options.cacheCapacity > 0 {
		cacheOpts = append(cacheOpts, docindex.WithCapacity(options.cacheCapacity))
	}
	cache := docindex.New(cacheOpts...)

	retriever, err := retrieve.NewRetriever(provider.Embedder(), retrieve.WithLogger(logger))
	if err != nil {
		if store != nil {
			store.Close()
		}
		pipeline.Release()
		provider.Close()
		return nil, err
	}

	engineOpts := []qa.Option{
		qa.WithTopK(options.topK),
		qa.WithExchangeWindow(options.exchangeWindow),
		qa.WithLogger(logger),
	}
	if options.monitor != nil {
		engineOpts = append(engineOpts, qa.WithMonitor(options.monitor))
	}
	engine, err := qa.NewEngine(cache, pipeline, retriever, provider.Generator(), engineOpts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		pipeline.Release()
		provider.Close()
		return nil, err
	}

	return &System{
		provider:  provider,
		store:     store,
		pipeline:  pipeline,
		cache:     cache,
		retriever: retriever,
		engine:    engine,
		logger:    logger,
	}, nil
}

// Close releases the embedding pool, the AI provider, and the index
// store.
func (s *System) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("error closing index store", "err", err)
			return err
		}
	}
	return nil
}

// Engine returns the question-answering engine.
func (s *System) Engine() *qa.Engine {
	return s.engine
}

// Cache returns the document index cache.
func (s *System) Cache() *docindex.Cache {
	return s.cache
}

// Pipeline returns the index build pipeline.
func (s *System) Pipeline() *ingestion.Pipeline {
	return s.pipeline
}

// Retriever returns the similarity retriever.
func (s *System) Retriever() *retrieve.Retriever {
	return s.retriever
}

// Index builds the document at source into the cache (and the store,
// when persistence is enabled) without answering anything. It is a
// no-op if the document is already indexed.
func (s *System) Index(ctx context.Context, source string) error {
	_, err := s.cache.GetOrBuild(ctx, source, func(ctx context.Context) (*core.DocumentIndex, error) {
		return s.pipeline.Build(ctx, source)
	})
	return err
}

// ProcessDocument indexes source and answers each question in order.
func (s *System) ProcessDocument(ctx context.Context, source string, questions []string) ([]qa.Result, error) {
	return s.engine.ProcessDocument(ctx, source, questions)
}

// NewSession opens an interactive conversation against source.
func (s *System) NewSession(ctx context.Context, source string) (*qa.Session, error) {
	return s.engine.NewSession(ctx, source)
}
