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
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/docgraph"
	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/ingest"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env for embedding host/model defaults.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docgraph",
		Usage: "Hybrid retrieval engine for document question-answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"DOCGRAPH_EMBEDDING_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"DOCGRAPH_EMBEDDING_MODEL"},
				Value:   "embeddinggemma",
			},
			&cli.IntFlag{
				Name:    "dimension",
				Usage:   "Embedding vector dimensionality",
				EnvVars: []string{"DOCGRAPH_DIMENSION"},
				Value:   core.EmbeddingDim,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest text files (or stdin) into the document store",
				ArgsUsage: "[FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents per transactional batch",
						Value: ingest.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in characters",
						Value: ingest.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between adjacent chunks in characters",
						Value: ingest.DefaultChunkOverlap,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the document store",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (vector, keyword, hybrid)",
						Value:   string(core.ModeHybrid),
					},
					&cli.BoolFlag{
						Name:  "profile",
						Usage: "Print call timing statistics after the search",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its chunks",
				ArgsUsage: "DOC_ID",
				Action:    deleteCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and cache statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openEngine(c *cli.Context) (*docgraph.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []docgraph.EngineOption{
		docgraph.WithAIConfig(aiConfig),
	}
	if c.IsSet("chunk-size") || c.IsSet("chunk-overlap") {
		opts = append(opts, docgraph.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")))
	}

	engine, err := docgraph.NewEngine(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func ingestCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var docs []ingest.DocumentInput
	if c.NArg() == 0 {
		// No files: read one document from stdin.
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		docs = append(docs, ingest.DocumentInput{
			Content:  string(content),
			Metadata: map[string]string{"source": "stdin"},
		})
	}
	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, ingest.DocumentInput{
			Content: string(content),
			Metadata: map[string]string{
				"source": filepath.Base(path),
			},
		})
	}

	summary, err := engine.Ingest(context.Background(), docs, c.Int("batch-size"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processed documents: %d\n", summary.Processed)
	fmt.Fprintf(os.Stderr, "Failed batches:      %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "Total chunks:        %d\n", summary.TotalChunks)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	mode, err := core.ParseSearchMode(c.String("mode"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(context.Background(), query, c.Int("top-k"), mode)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%d. [%.4f] doc=%s chunk=%d\n", i+1, result.Score, result.DocID, result.ChunkIndex)
		fmt.Printf("   %s\n", result.Text)
	}

	if c.Bool("profile") {
		printProfile(engine)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	docID := c.Args().First()
	if docID == "" {
		return fmt.Errorf("a document ID is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Delete(context.Background(), docID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Deleted document %s\n", docID)
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Documents:          %d\n", stats.Documents)
	fmt.Printf("Chunks:             %d\n", stats.Chunks)
	fmt.Printf("Avg chunks per doc: %.2f\n", stats.AvgChunksPerDoc)
	fmt.Printf("Cache size:         %d\n", stats.CacheSize)
	fmt.Printf("Cache hit rate:     %.1f%%\n", stats.CacheHitRatePercent)
	return nil
}

func printProfile(engine *docgraph.Engine) {
	stats := engine.Profiler().Stats()
	if len(stats) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "\nCall timings:")
	for name, timing := range stats {
		fmt.Fprintf(os.Stderr, "  %-24s calls=%d avg=%.2fms min=%.2fms max=%.2fms\n",
			name, timing.Count, timing.AvgMs, timing.MinMs, timing.MaxMs)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
