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
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/wikirag"
	"github.com/poiesic/wikirag/config"
	"github.com/poiesic/wikirag/core"
	"github.com/poiesic/wikirag/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "wikirag",
		Usage: "Retrieval-augmented generation over a MediaWiki knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
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
				Name:   "ingest",
				Usage:  "Fetch all wiki pages, chunk, embed, and index them",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Clear the existing index and reload everything",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask a question against the knowledge base",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of chunks to retrieve (0 uses the configured default)",
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Restrict retrieval to one entity type (article, author, institution, keyword)",
					},
				},
			},
			{
				Name:   "traces",
				Usage:  "List recent query traces",
				Action: tracesCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of traces to list",
						Value: 20,
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Print one trace in full",
						ArgsUsage: "<trace-id>",
						Action:    traceShowCommand,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Report index size and LLM connectivity",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openApp(c *cli.Context) (*wikirag.App, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	app, err := wikirag.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return app, nil
}

func ingestCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Pipeline().Ingest(context.Background(), c.Bool("force"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if result.Status == pipeline.IngestSkipped {
		fmt.Printf("Index already holds %d chunks. Use --force to re-ingest.\n", result.ExistingChunks)
		return nil
	}

	fmt.Printf("Ingestion complete.\n")
	fmt.Printf("  Documents fetched: %d\n", result.DocumentsFetched)
	if result.FailedPages > 0 {
		fmt.Printf("  Failed pages:      %d\n", result.FailedPages)
	}
	fmt.Printf("  Chunks stored:     %d\n", result.ChunksStored)
	fmt.Printf("  Fetch time:        %.1fs\n", result.FetchSecs)
	fmt.Printf("  Embed time:        %.1fs\n", result.EmbedSecs)
	for entity, count := range result.EntityCounts {
		fmt.Printf("  %-12s %d\n", entity+":", count)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	var filter *core.EntityType
	if typeStr := c.String("type"); typeStr != "" {
		entity, err := core.ParseEntityType(typeStr)
		if err != nil {
			return err
		}
		filter = &entity
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	count, err := app.Pipeline().ChunkCount(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("The knowledge base is empty. Run 'wikirag ingest' first.")
		return nil
	}

	result, err := app.Pipeline().Query(ctx, question, c.Int("top-k"), filter)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range result.Sources {
			fmt.Printf("  [%d] %s (%s, relevance %.2f)\n      %s\n",
				i+1, src.PageTitle, src.EntityType, src.SimilarityScore, src.SourceURL)
		}
	}
	fmt.Printf("\nTrace: %s  (retrieval %.0fms, generation %.0fms)\n",
		result.TraceID, result.Latency.RetrievalMS, result.Latency.GenerationMS)
	return nil
}

func tracesCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	summaries, err := app.Traces().ListTraces(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No traces recorded yet.")
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%s  %s  sources=%d  total=%.0fms\n  %s\n",
			s.TraceID, s.Timestamp.Format("2006-01-02 15:04:05"), s.NumSources, s.TotalLatencyMS, s.UserQuery)
	}
	return nil
}

func traceShowCommand(c *cli.Context) error {
	traceID := c.Args().First()
	if traceID == "" {
		return fmt.Errorf("a trace ID is required")
	}

	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	t, err := app.Traces().GetTrace(traceID)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("no trace with ID %s", traceID)
	}

	fmt.Printf("Trace:     %s\n", t.TraceID)
	fmt.Printf("Time:      %s\n", t.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Query:     %s\n", t.UserQuery)
	fmt.Printf("Model:     %s\n", t.ModelUsed)
	fmt.Printf("Latency:   retrieval %.2fms, generation %.2fms, total %.2fms\n",
		t.LatencyMS.Retrieval, t.LatencyMS.Generation, t.LatencyMS.Total)
	fmt.Printf("Sources:   %d\n", t.NumSourcesRetrieved)
	for i, doc := range t.RetrievedDocuments {
		fmt.Printf("  [%d] %s (%s, score %.4f)\n      %s\n",
			i+1, doc.SourcePage, doc.EntityType, doc.SimilarityScore, doc.SourceURL)
	}
	fmt.Printf("\nPrompt:\n%s\n", t.ConstructedPrompt)
	fmt.Printf("\nResponse:\n%s\n", t.LLMResponse)
	return nil
}

func statusCommand(c *cli.Context) error {
	app, err := openApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	count, err := app.Pipeline().ChunkCount(ctx)
	if err != nil {
		return err
	}
	traceCount, err := app.Traces().TraceCount()
	if err != nil {
		return err
	}

	fmt.Printf("Indexed chunks: %d\n", count)
	fmt.Printf("Stored traces:  %d\n", traceCount)

	if app.Generator().CheckConnection(ctx) {
		fmt.Println("LLM service:    reachable")
		if models := app.Generator().ListModels(ctx); len(models) > 0 {
			fmt.Printf("Models:         %s\n", strings.Join(models, ", "))
		}
	} else {
		fmt.Println("LLM service:    unreachable")
	}
	return nil
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
