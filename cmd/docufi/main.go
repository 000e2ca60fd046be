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
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/docufi"
	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/analysis"
	"github.com/poiesic/docufi/core"
	"github.com/urfave/cli/v2"
)

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "completion-host",
			Usage: "Completion service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "completion-model",
			Usage: "Completion model name",
			Value: "qwen2.5:3b",
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func main() {
	app := &cli.App{
		Name:   "docufi",
		Usage:  "Document analysis and market research from ingested documents",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a text document into the corpus",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Maximum characters per page chunk",
						Value: 2000,
					},
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "How long to wait for background enrichment before exiting",
						Value: 5 * time.Minute,
					},
				}, aiFlags()...),
			},
			{
				Name:   "analyze",
				Usage:  "Run a market analysis and stream its progress",
				Action: analyzeCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Market topic to analyze",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "search-endpoint",
						Usage: "Web search service URL for external research",
						Value: "http://localhost:8888",
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Usage: "How often to poll task progress",
						Value: 2 * time.Second,
					},
				}, aiFlags()...),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about an ingested document",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.Uint64Flag{
						Name:     "doc",
						Usage:    "Document ID to ask about",
						Required: true,
					},
				}, aiFlags()...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionHost(c.String("completion-host")),
		ai.WithCompletionModel(c.String("completion-model")),
	)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file argument required")
	}
	filePath := c.Args().First()

	contents, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	pages := splitPages(string(contents), c.Int("page-size"))
	if len(pages) == 0 {
		return fmt.Errorf("file contains no text")
	}

	db, err := docufi.NewDatabase(c.String("db"), docufi.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	document, err := pipeline.Ingest(ctx, filepath.Base(filePath), pages)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Document %d stored with %d pages, waiting for enrichment...\n", document.Id, len(pages))

	// Enrichment runs in the background; wait so the embeddings are
	// durable before the process exits.
	deadline := time.Now().Add(c.Duration("wait"))
	for {
		stored, err := db.DocumentRepository().GetDocumentPages(ctx, document.Id)
		if err != nil {
			return fmt.Errorf("failed to check pages: %w", err)
		}

		pending := 0
		for _, page := range stored {
			if len(page.Vector) == 0 {
				pending++
			}
		}
		if pending == 0 {
			break
		}
		if time.Now().After(deadline) {
			fmt.Fprintf(os.Stderr, "Warning: %d pages still unembedded after %s\n", pending, c.Duration("wait"))
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	facts, err := db.DocumentRepository().GetDocumentFacts(ctx, document.Id)
	if err != nil {
		return fmt.Errorf("failed to check facts: %w", err)
	}

	fmt.Printf("Ingested document %d (%d pages, %d facts)\n", document.Id, len(pages), len(facts))
	return nil
}

func analyzeCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := docufi.NewDatabase(c.String("db"), docufi.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service, err := db.NewAnalysisService(c.String("search-endpoint"))
	if err != nil {
		return fmt.Errorf("failed to create analysis service: %w", err)
	}
	defer service.Release()

	task, err := service.StartAnalysis(ctx, c.String("query"))
	if err != nil {
		return fmt.Errorf("failed to start analysis: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Task %d started for query %q\n", task.Id, task.Query)

	notifier, err := db.NewNotifier(analysis.WithPollInterval(c.Duration("poll-interval")))
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}

	for event := range notifier.Watch(ctx, task.Id) {
		switch event.Kind {
		case analysis.EventProgress:
			fmt.Fprintln(os.Stderr, event.Text)
		case analysis.EventComplete:
			fmt.Println(event.Text)
			return nil
		case analysis.EventError:
			return fmt.Errorf("analysis failed: %s", event.Text)
		}
	}

	return fmt.Errorf("progress stream ended unexpectedly")
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one question argument required")
	}
	question := c.Args().First()

	db, err := docufi.NewDatabase(c.String("db"), docufi.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	chatService, err := db.NewChatService()
	if err != nil {
		return fmt.Errorf("failed to create chat service: %w", err)
	}

	answer, err := chatService.Answer(ctx, core.ID(c.Uint64("doc")), question)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	fmt.Println(answer.Reply)

	if len(answer.Pages) > 0 || len(answer.Facts) > 0 {
		fmt.Fprintln(os.Stderr, "\nSources:")
		for _, match := range answer.Pages {
			fmt.Fprintf(os.Stderr, "  page %d (score %.3f)\n", match.Page.Number, match.Score)
		}
		for _, match := range answer.Facts {
			fmt.Fprintf(os.Stderr, "  fact %s: %s (score %.3f)\n", match.Fact.Label, match.Fact.Value, match.Score)
		}
	}

	return nil
}

// splitPages chunks text into page-sized pieces. Form feeds are honored as
// hard page breaks; otherwise paragraphs are packed up to maxChars per
// page. A single oversized paragraph becomes its own page.
func splitPages(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 2000
	}

	var pages []string
	for _, section := range strings.Split(text, "\f") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		var current strings.Builder
		for _, paragraph := range strings.Split(section, "\n\n") {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}

			if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxChars {
				pages = append(pages, current.String())
				current.Reset()
			}
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(paragraph)
		}
		if current.Len() > 0 {
			pages = append(pages, current.String())
		}
	}

	return pages
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
