// Copyright 2026 Hubforge Labs
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	contenthub "github.com/hubforge/contenthub"
	"github.com/hubforge/contenthub/ai"
	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/ingest"
	"github.com/hubforge/contenthub/storage"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "contenthub",
		Usage:  "Tenant-scoped content ingestion hub",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "PostgreSQL connection string",
				EnvVars: []string{"CONTENTHUB_DSN"},
			},
			&cli.StringFlag{
				Name:    "queue-dir",
				Usage:   "Directory for the durable embedding queue (in-memory if empty)",
				EnvVars: []string{"CONTENTHUB_QUEUE_DIR"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "OpenAI-compatible embedding service host (deterministic embedder if empty)",
				EnvVars: []string{"CONTENTHUB_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "text-embedding-3-small",
				EnvVars: []string{"CONTENTHUB_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "Embedding service API token",
				EnvVars: []string{"CONTENTHUB_API_TOKEN"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Pull one source into the hub",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant UUID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Source platform (shopify, wordpress)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "store-domain",
						Usage: "Shopify store domain (example.myshopify.com)",
					},
					&cli.StringFlag{
						Name:    "access-token",
						Usage:   "Shopify Admin API access token",
						EnvVars: []string{"CONTENTHUB_SHOPIFY_TOKEN"},
					},
					&cli.StringFlag{
						Name:  "api-version",
						Usage: "Shopify Admin API version",
					},
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "WordPress site base URL",
					},
					&cli.StringFlag{
						Name:  "site-id",
						Usage: "WordPress site identifier",
					},
					&cli.StringFlag{
						Name:    "auth-token",
						Usage:   "WordPress bearer token",
						EnvVars: []string{"CONTENTHUB_WORDPRESS_TOKEN"},
					},
					&cli.StringSliceFlag{
						Name:  "item-type",
						Usage: "WordPress item types to sync (repeatable)",
					},
				},
			},
			{
				Name:   "embed-worker",
				Usage:  "Drain the embedding queue until interrupted",
				Action: embedWorkerCommand,
			},
			{
				Name:   "search",
				Usage:  "Search a tenant's resources",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant UUID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "query",
						Usage: "Search text",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict to one resource type",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results",
						Value: 20,
					},
				},
			},
			{
				Name:   "get",
				Usage:  "Fetch one resource by ID",
				Action: getCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant UUID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Resource UUID",
						Required: true,
					},
				},
			},
		},
	}
}

func openHub(c *cli.Context) (*contenthub.Hub, error) {
	dsn := c.String("dsn")
	if dsn == "" {
		return nil, fmt.Errorf("--dsn or CONTENTHUB_DSN required")
	}

	var opts []contenthub.HubOption
	if dir := c.String("queue-dir"); dir != "" {
		opts = append(opts, contenthub.WithQueuePath(dir))
	}
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, contenthub.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(host),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithAPIToken(c.String("api-token")),
		)))
	}
	return contenthub.NewHub(c.Context, dsn, opts...)
}

func tenantID(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("tenant"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id: %w", err)
	}
	return id, nil
}

func syncCommand(c *cli.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	pipeline, err := hub.NewPipeline()
	if err != nil {
		return err
	}

	req := &ingest.SyncRequest{
		TenantID: tenant,
		Source:   core.SourceType(strings.ToLower(c.String("source"))),
		Params: ingest.SourceParams{
			StoreDomain: c.String("store-domain"),
			AccessToken: c.String("access-token"),
			APIVersion:  c.String("api-version"),
			BaseURL:     c.String("base-url"),
			SiteID:      c.String("site-id"),
			AuthToken:   c.String("auth-token"),
			ItemTypes:   c.StringSlice("item-type"),
		},
	}

	result, err := pipeline.Run(c.Context, req)
	if err != nil {
		return err
	}
	fmt.Printf("synced %d resources in %d batches\n", result.Resources, result.Batches)
	return nil
}

func embedWorkerCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("embedding worker started")
	return hub.NewEmbeddingWorker().Run(ctx)
}

func searchCommand(c *cli.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	results, err := hub.SearchResources(c.Context, tenant, storage.SearchQuery{
		Text:  c.String("query"),
		Type:  core.ResourceType(c.String("type")),
		Limit: c.Int("limit"),
	})
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Printf("%s\t%s\t%s\t%s\n", res.ID, res.Type, res.Title, res.URL)
	}
	fmt.Printf("%d results\n", len(results))
	return nil
}

func getCommand(c *cli.Context) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.String("id"))
	if err != nil {
		return fmt.Errorf("invalid resource id: %w", err)
	}

	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	res, err := hub.GetResource(c.Context, tenant, id)
	if err != nil {
		return err
	}

	fmt.Printf("id:        %s\n", res.ID)
	fmt.Printf("source:    %s (%s)\n", res.Source, res.SourceSite)
	fmt.Printf("source_id: %s\n", res.SourceID)
	fmt.Printf("type:      %s\n", res.Type)
	fmt.Printf("title:     %s\n", res.Title)
	fmt.Printf("slug:      %s\n", res.Slug)
	fmt.Printf("url:       %s\n", res.URL)
	fmt.Printf("updated:   %s\n", res.UpdatedAt)
	if res.PublishedAt != nil {
		fmt.Printf("published: %s\n", res.PublishedAt)
	}
	fmt.Printf("embedded:  %t\n", len(res.Embedding) > 0)
	return nil
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
