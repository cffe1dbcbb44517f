package main

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/quaerit/api"
	"github.com/poiesic/quaerit/core"
)

func TestServeCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "quaerit",
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
					&cli.IntFlag{
						Name:  "cache-capacity",
						Usage: "Maximum documents held in the index cache (0 for unbounded)",
						Value: 0,
					},
				},
			},
		},
	}

	t.Run("empty api key fails before startup", func(t *testing.T) {
		// A present but empty environment variable satisfies the
		// required-flag check, so the command validates the value
		// itself.
		t.Setenv("QUAERIT_API_KEY", "")
		err := app.Run([]string{"quaerit", "serve"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key is required")
	})

	t.Run("addr has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var addrFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "addr" {
				addrFlag = f
				break
			}
		}
		require.NotNil(t, addrFlag)
		assert.Equal(t, ":8000", addrFlag.Value)
	})

	t.Run("api-key reads the environment", func(t *testing.T) {
		cmd := app.Commands[0]
		var keyFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "api-key" {
				keyFlag = f
				break
			}
		}
		require.NotNil(t, keyFlag)
		assert.True(t, keyFlag.Required)
		assert.Contains(t, keyFlag.EnvVars, "QUAERIT_API_KEY")
	})

	t.Run("cache-capacity defaults to unbounded", func(t *testing.T) {
		cmd := app.Commands[0]
		var capFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "cache-capacity" {
				capFlag = f
				break
			}
		}
		require.NotNil(t, capFlag)
		assert.Equal(t, 0, capFlag.Value)
	})
}

func TestAskCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "quaerit",
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer questions about a document from the command line",
				ArgsUsage: "SOURCE QUESTION [QUESTION...]",
				Action:    askCommand,
				Flags: []cli.Flag{
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
		},
	}

	t.Run("missing arguments fail", func(t *testing.T) {
		err := app.Run([]string{"quaerit", "ask"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: quaerit ask")
	})

	t.Run("source without questions fails", func(t *testing.T) {
		err := app.Run([]string{"quaerit", "ask", "policy.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: quaerit ask")
	})

	t.Run("top-k has default value of 3", func(t *testing.T) {
		cmd := app.Commands[0]
		var topKFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "top-k" {
				topKFlag = f
				break
			}
		}
		require.NotNil(t, topKFlag)
		assert.Equal(t, 3, topKFlag.Value)
	})
}

func TestIndexCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "quaerit",
		Commands: []*cli.Command{
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

	t.Run("missing db flag fails", func(t *testing.T) {
		err := app.Run([]string{"quaerit", "index", "policy.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("missing arguments fail", func(t *testing.T) {
		err := app.Run([]string{"quaerit", "index", "--db", "/tmp/index"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: quaerit index")
	})

	t.Run("chunk-size has default value of 512", func(t *testing.T) {
		cmd := app.Commands[0]
		var sizeFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "chunk-size" {
				sizeFlag = f
				break
			}
		}
		require.NotNil(t, sizeFlag)
		assert.Equal(t, 512, sizeFlag.Value)
	})

	t.Run("chunk-overlap has default value of 64", func(t *testing.T) {
		cmd := app.Commands[0]
		var overlapFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "chunk-overlap" {
				overlapFlag = f
				break
			}
		}
		require.NotNil(t, overlapFlag)
		assert.Equal(t, 64, overlapFlag.Value)
	})
}

func TestRetrievalTrace_Finish(t *testing.T) {
	var buf bytes.Buffer
	trace := &retrievalTrace{w: &buf}

	trace.Finish([]core.ScoredChunk{
		{Chunk: core.Chunk{Source: "policy.pdf", Page: 4, ClauseNumber: "4.2"}, Score: 0.9132},
		{Chunk: core.Chunk{Source: "policy.pdf"}, Score: 0.5},
	})

	out := buf.String()
	assert.Contains(t, out, "0.9132  policy.pdf p.4 clause 4.2")
	assert.Contains(t, out, "0.5000  policy.pdf")
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("default log level is info", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "info", level)
				return nil
			},
		}

		err := app.Run([]string{"test"})
		require.NoError(t, err)
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "debug", level)
				return nil
			},
		}

		err := app.Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
