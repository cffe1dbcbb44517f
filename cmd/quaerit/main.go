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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/quaerit"
	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/api"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/retrieve"
	"github.com/poiesic/quaerit/vector"
	"github.com/urfave/cli/v2"
)

// version is reported by the health endpoint. Injected at build time
// via ldflags.
var version = "0.1.0"

func main() {
	// A missing .env file is fine, configuration falls back to flags
	// and the process environment.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "quaerit",
		Usage: "Retrieval-augmented question answering for PDF and text documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP question-answering API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address for the HTTP API",
						Value: api.DefaultAddr,
					},
					&cli.StringFlag{
						Name:     "api-key",
						Usage:    "Bearer token clients must present",
						EnvVars:  []string{"QUAERIT_API_KEY"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB index directory (omit to keep indexes in memory)",
					},
					&cli.IntFlag{
						Name:  "cache-capacity",
						Usage: "Maximum documents held in the index cache (0 for unbounded)",
						Value: 0,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "generator-model",
						Usage: "Answer generation model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "API token for the AI services",
						EnvVars: []string{"QUAERIT_AI_TOKEN"},
						Value:   "none",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer questions about a document from the command line",
				ArgsUsage: "SOURCE QUESTION [QUESTION...]",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB index directory (omit to keep indexes in memory)",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "generator-model",
						Usage: "Answer generation model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "API token for the AI services",
						EnvVars: []string{"QUAERIT_AI_TOKEN"},
						Value:   "none",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of chunks retrieved as answer context",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print retrieval stages to stderr",
					},
				},
			},
			{
				Name:      "index",
				Usage:     "Build document indexes into a persistent store",
				ArgsUsage: "SOURCE [SOURCE...]",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB index directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "API token for the AI services",
						EnvVars: []string{"QUAERIT_AI_TOKEN"},
						Value:   "none",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk window size in tokens",
						Value: 512,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Token overlap between consecutive chunks",
						Value: 64,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	// Validate flags
	apiKey := c.String("api-key")
	if apiKey == "" {
		return fmt.Errorf("api key is required")
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithToken(c.String("token")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Assemble the system
	opts := []quaerit.SystemOption{
		quaerit.WithAIConfig(aiConfig),
	}
	if dbPath := c.String("db"); dbPath != "" {
		opts = append(opts, quaerit.WithStoreDir(dbPath))
	}
	if capacity := c.Int("cache-capacity"); capacity > 0 {
		opts = append(opts, quaerit.WithCacheCapacity(capacity))
	}

	system, err := quaerit.NewSystem(opts...)
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}
	defer system.Close()

	server, err := api.NewServer(api.Config{
		Addr:    c.String("addr"),
		APIKey:  apiKey,
		Version: version,
	}, system, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Address: %s\n", c.String("addr"))
	fmt.Fprintf(os.Stderr, "AI host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintf(os.Stderr, "Generator model: %s\n", c.String("generator-model"))
	if dbPath := c.String("db"); dbPath != "" {
		fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	}
	fmt.Fprintln(os.Stderr)

	// Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate arguments
	if c.NArg() < 2 {
		return fmt.Errorf("usage: quaerit ask SOURCE QUESTION [QUESTION...]")
	}
	source := c.Args().First()
	questions := c.Args().Tail()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithToken(c.String("token")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Assemble the system
	opts := []quaerit.SystemOption{
		quaerit.WithAIConfig(aiConfig),
		quaerit.WithTopK(c.Int("top-k")),
		quaerit.WithProgressWriter(os.Stderr),
	}
	if dbPath := c.String("db"); dbPath != "" {
		opts = append(opts, quaerit.WithStoreDir(dbPath))
	}
	if c.Bool("verbose") {
		opts = append(opts, quaerit.WithRetrievalMonitor(&retrievalTrace{w: os.Stderr}))
	}

	system, err := quaerit.NewSystem(opts...)
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}
	defer system.Close()

	// Answer the questions
	results, err := system.ProcessDocument(ctx, source, questions)
	if err != nil {
		return fmt.Errorf("question answering failed: %w", err)
	}

	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("Q: %s\n", res.Question)
		fmt.Printf("A: %s\n", res.Answer)
	}

	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate arguments
	if c.NArg() < 1 {
		return fmt.Errorf("usage: quaerit index SOURCE [SOURCE...]")
	}

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithToken(c.String("token")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Assemble the system
	system, err := quaerit.NewSystem(
		quaerit.WithAIConfig(aiConfig),
		quaerit.WithStoreDir(dbPath),
		quaerit.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")),
		quaerit.WithProgressWriter(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}
	defer system.Close()

	// Build each index
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	for _, source := range c.Args().Slice() {
		if err := system.Index(ctx, source); err != nil {
			return fmt.Errorf("failed to index %s: %w", source, err)
		}
		fmt.Fprintf(os.Stderr, "Indexed: %s\n", source)
	}

	return nil
}

// retrievalTrace prints retrieval stages to a writer. It backs the ask
// command's verbose mode.
type retrievalTrace struct {
	w io.Writer
}

var _ retrieve.Monitor = (*retrievalTrace)(nil)

func (t *retrievalTrace) Start(query string) {
	fmt.Fprintf(t.w, "retrieval: query %q\n", query)
}

func (t *retrievalTrace) AfterQueryEmbedding(dimension int) {
	fmt.Fprintf(t.w, "retrieval: embedded query, dimension %d\n", dimension)
}

func (t *retrievalTrace) AfterFilterSelection(allowed, total int, strategy string) {
	fmt.Fprintf(t.w, "retrieval: filter allows %d of %d chunks, strategy %s\n", allowed, total, strategy)
}

func (t *retrievalTrace) AfterVectorSearch(hits []vector.Hit) {
	fmt.Fprintf(t.w, "retrieval: vector search returned %d hits\n", len(hits))
}

func (t *retrievalTrace) Finish(results []core.ScoredChunk) {
	for _, res := range results {
		ref := res.Chunk.Source
		if res.Chunk.Page > 0 {
			ref = fmt.Sprintf("%s p.%d", ref, res.Chunk.Page)
		}
		if res.Chunk.ClauseNumber != "" {
			ref = fmt.Sprintf("%s clause %s", ref, res.Chunk.ClauseNumber)
		}
		fmt.Fprintf(t.w, "retrieval: %.4f  %s\n", res.Score, ref)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
