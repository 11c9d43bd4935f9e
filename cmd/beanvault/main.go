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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/beanvault"
	"github.com/poiesic/beanvault/ai"
	"github.com/poiesic/beanvault/chatter"
	"github.com/poiesic/beanvault/cluster"
	"github.com/poiesic/beanvault/config"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/ingest"
	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/views"
)

func main() {
	app := &cli.App{
		Name:  "beanvault",
		Usage: "Content warehouse for collected news, posts and social chatter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the warehouse directory (overrides config)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Embed and seed the classification anchor catalogs",
				Action: seedCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Ingest newline-delimited JSON records from a file",
				ArgsUsage: "FILE",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Record kind in the file (beans, chatters, publishers)",
						Value: "beans",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records per ingestion batch",
						Value: 100,
					},
				},
			},
			{
				Name:   "embed",
				Usage:  "Embed every stored bean still lacking a vector",
				Action: embedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of beans to embed per batch",
						Value: 64,
					},
				},
			},
			{
				Name:   "refresh",
				Usage:  "Run classification, clustering and chatter aggregation",
				Action: refreshCommand,
			},
			{
				Name:   "sweep",
				Usage:  "Delete rows outside the retention window and compact",
				Action: sweepCommand,
			},
			{
				Name:   "compact",
				Usage:  "Run store compaction",
				Action: compactCommand,
			},
			{
				Name:      "query",
				Usage:     "Query a view and print the results as JSON",
				ArgsUsage: "[QUERY TEXT]",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "view",
						Usage: "View to query (latest, trending, aggregated, text, vector)",
						Value: "latest",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Restrict to a bean kind (news, post, comment)",
					},
					&cli.DurationFlag{
						Name:  "window",
						Usage: "Restrict to beans created within the window",
					},
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Match any of the given categories",
					},
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Restrict to the given sources",
					},
					&cli.BoolFlag{
						Name:  "group",
						Usage: "One representative per cluster",
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum similarity score for vector search",
						Value: 0.6,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum rows to return",
						Value: 20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openWarehouse(c *cli.Context) (*beanvault.Warehouse, config.Config, error) {
	cfg := config.Load()
	if path := c.String("db"); path != "" {
		cfg.Store.Path = path
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithVectorDim(cfg.AI.VectorDim),
	)

	w, err := beanvault.Open(cfg.Store.Path,
		beanvault.WithAIConfig(aiConfig),
		beanvault.WithRetention(cfg.Store.Retention()),
	)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to open warehouse: %w", err)
	}
	return w, cfg, nil
}

func seedCommand(c *cli.Context) error {
	w, _, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	inserted, err := w.SeedCatalogs(context.Background())
	if err != nil {
		return fmt.Errorf("seeding catalogs failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d anchors\n", inserted)
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: beanvault ingest [--kind KIND] FILE")
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	w, cfg, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	pipeline, err := w.NewIngestPipeline(ingest.WithVectorDim(cfg.AI.VectorDim))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	decoder := json.NewDecoder(f)
	batchSize := c.Int("batch-size")

	total := 0
	switch c.String("kind") {
	case "beans":
		total, err = ingestBeans(ctx, pipeline, decoder, batchSize)
	case "chatters":
		total, err = ingestChatters(ctx, pipeline, decoder, batchSize)
	case "publishers":
		total, err = ingestPublishers(ctx, pipeline, decoder, batchSize)
	default:
		return fmt.Errorf("unknown record kind %q", c.String("kind"))
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d records\n", total)
	return nil
}

func ingestBeans(ctx context.Context, pipeline *ingest.Pipeline, decoder *json.Decoder, batchSize int) (int, error) {
	total := 0
	batch := make([]*core.Bean, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := pipeline.IngestBeans(ctx, batch...)
		total += n
		batch = batch[:0]
		return err
	}

	for {
		var bean core.Bean
		if err := decoder.Decode(&bean); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return total, err
		}
		batch = append(batch, &bean)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func ingestChatters(ctx context.Context, pipeline *ingest.Pipeline, decoder *json.Decoder, batchSize int) (int, error) {
	total := 0
	batch := make([]*core.Chatter, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := pipeline.IngestChatters(ctx, batch...)
		total += n
		batch = batch[:0]
		return err
	}

	for {
		var chatter core.Chatter
		if err := decoder.Decode(&chatter); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return total, err
		}
		batch = append(batch, &chatter)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func ingestPublishers(ctx context.Context, pipeline *ingest.Pipeline, decoder *json.Decoder, batchSize int) (int, error) {
	total := 0
	batch := make([]*core.Publisher, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := pipeline.IngestPublishers(ctx, batch...)
		total += n
		batch = batch[:0]
		return err
	}

	for {
		var publisher core.Publisher
		if err := decoder.Decode(&publisher); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return total, err
		}
		batch = append(batch, &publisher)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func embedCommand(c *cli.Context) error {
	w, cfg, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	pipeline, err := w.NewIngestPipeline(ingest.WithVectorDim(cfg.AI.VectorDim))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	embedded, err := pipeline.EmbedMissing(context.Background(), c.Int("batch-size"))
	if err != nil {
		return fmt.Errorf("embedding catch-up failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Embedded %d beans\n", embedded)
	return nil
}

func refreshCommand(c *cli.Context) error {
	w, cfg, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	classifier, err := w.NewClassifyEngine()
	if err != nil {
		return err
	}
	clusterer, err := w.NewClusterEngine(
		cluster.WithEpsilon(cfg.Cluster.Epsilon),
		cluster.WithBatchSize(cfg.Cluster.BatchSize),
		cluster.WithScope(cfg.Cluster.Scope()),
	)
	if err != nil {
		return err
	}
	aggregator, err := w.NewChatterEngine(
		chatter.WithWindow(cfg.Chatter.Window()),
		chatter.WithTTL(cfg.Chatter.TTL()),
	)
	if err != nil {
		return err
	}

	refresher, err := maintain.NewRefresher(3, slog.Default())
	if err != nil {
		return err
	}
	defer refresher.Release()

	start := time.Now()
	err = refresher.RunAll(context.Background(),
		maintain.Task{Name: "classify", Run: func(ctx context.Context) error {
			_, runErr := classifier.Run(ctx)
			return runErr
		}},
		maintain.Task{Name: "cluster", Run: func(ctx context.Context) error {
			_, runErr := clusterer.Run(ctx)
			return runErr
		}},
		maintain.Task{Name: "chatter", Run: func(ctx context.Context) error {
			_, runErr := aggregator.Run(ctx)
			return runErr
		}},
	)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Refresh complete in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func sweepCommand(c *cli.Context) error {
	w, _, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	deleted, err := w.NewSweeper().Sweep(context.Background())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Deleted %d beans\n", deleted)
	return nil
}

func compactCommand(c *cli.Context) error {
	w, _, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Compact(context.Background()); err != nil {
		return fmt.Errorf("compaction failed: %w", err)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	w, _, err := openWarehouse(c)
	if err != nil {
		return err
	}
	defer w.Close()

	v, err := w.NewViews()
	if err != nil {
		return err
	}

	params := views.Params{
		Kind:           core.Kind(c.String("kind")),
		Categories:     c.StringSlice("category"),
		Sources:        c.StringSlice("source"),
		GroupByCluster: c.Bool("group"),
		Limit:          c.Int("limit"),
	}
	if window := c.Duration("window"); window > 0 {
		params.Since = time.Now().UTC().Add(-window)
	}

	ctx := context.Background()
	query := strings.Join(c.Args().Slice(), " ")

	var results []*core.Bean
	switch c.String("view") {
	case "latest":
		results, err = v.Latest(ctx, params)
	case "trending":
		results, err = v.Trending(ctx, params)
	case "aggregated":
		results, err = v.Aggregated(ctx, params)
	case "text":
		results, err = v.TextSearch(ctx, query, params)
	case "vector":
		results, err = v.VectorSearch(ctx, query, float32(c.Float64("min-score")), params)
	default:
		return fmt.Errorf("unknown view %q", c.String("view"))
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func setup(c *cli.Context) error {
	// A missing .env is fine; explicit environment still applies
	_ = godotenv.Load()

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
