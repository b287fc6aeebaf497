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


// Package contenthub wires the ingestion hub together: Postgres-backed
// resource storage, source sync pipeline, durable embedding queue and
// the embedding worker.
package contenthub

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/ai"
	"github.com/hubforge/contenthub/ai/openai"
	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/embedding"
	"github.com/hubforge/contenthub/ingest"
	"github.com/hubforge/contenthub/sites"
	"github.com/hubforge/contenthub/storage"
	"github.com/hubforge/contenthub/storage/postgres"
)

// Hub owns the shared backends and hands out pipelines and workers.
type Hub struct {
	repo     storage.Repository
	queue    *embedding.Queue
	provider ai.Provider
	sites    *sites.Service
	logger   *slog.Logger
}

// HubOption configures a Hub.
type HubOption func(*hubOptions)

type hubOptions struct {
	aiConfig  *ai.Config
	queuePath string
	useOpenAI bool
}

// WithAIConfig enables the OpenAI-compatible embedding provider with
// the given configuration. Without it the deterministic fallback
// provider is used.
func WithAIConfig(cfg *ai.Config) HubOption {
	return func(o *hubOptions) {
		if cfg != nil {
			o.aiConfig = cfg
			o.useOpenAI = true
		}
	}
}

// WithQueuePath stores the embedding queue at the given directory
// instead of in memory.
func WithQueuePath(path string) HubOption {
	return func(o *hubOptions) {
		o.queuePath = path
	}
}

// NewHub connects to Postgres, opens the embedding queue and selects
// the embedding provider.
func NewHub(ctx context.Context, dsn string, opts ...HubOption) (*Hub, error) {
	options := &hubOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repo, err := postgres.NewRepository(ctx, dsn)
	if err != nil {
		return nil, err
	}

	var queue *embedding.Queue
	if options.queuePath != "" {
		queue, err = embedding.OpenQueue(options.queuePath)
	} else {
		queue, err = embedding.OpenMemoryQueue()
	}
	if err != nil {
		repo.Close()
		return nil, err
	}

	provider, err := newProvider(options)
	if err != nil {
		queue.Close()
		repo.Close()
		return nil, err
	}

	siteService, err := sites.NewService(repo)
	if err != nil {
		provider.Close()
		queue.Close()
		repo.Close()
		return nil, err
	}

	return &Hub{
		repo:     repo,
		queue:    queue,
		provider: provider,
		sites:    siteService,
		logger:   slog.Default(),
	}, nil
}

// newProvider picks the configured OpenAI-compatible provider, wrapping
// its embedder with the deterministic fallback, or the deterministic
// provider alone when no AI endpoint is configured.
func newProvider(options *hubOptions) (ai.Provider, error) {
	dimension := ai.DefaultDimension
	if options.aiConfig != nil && options.aiConfig.Dimension > 0 {
		dimension = options.aiConfig.Dimension
	}
	deterministic, err := ai.NewDeterministicEmbedder(dimension)
	if err != nil {
		return nil, err
	}

	if !options.useOpenAI {
		return &staticProvider{embedder: deterministic}, nil
	}

	remote, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return nil, err
	}
	return &fallbackProvider{
		inner:    remote,
		embedder: ai.NewFallbackEmbedder(remote.Embedder(), deterministic),
	}, nil
}

type staticProvider struct {
	embedder ai.Embedder
}

func (p *staticProvider) Embedder() ai.Embedder { return p.embedder }

func (p *staticProvider) Close() error { return nil }

type fallbackProvider struct {
	inner    ai.Provider
	embedder ai.Embedder
}

func (p *fallbackProvider) Embedder() ai.Embedder { return p.embedder }

func (p *fallbackProvider) Close() error { return p.inner.Close() }

// Repository exposes resource storage.
func (h *Hub) Repository() storage.Repository {
	return h.repo
}

// Sites exposes the site integration service.
func (h *Hub) Sites() *sites.Service {
	return h.sites
}

// NewPipeline creates a sync pipeline bound to the hub's storage and
// embedding queue.
func (h *Hub) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(h.repo, h.queue, opts...)
}

// NewDispatcher creates an async sync dispatcher over a fresh pipeline.
func (h *Hub) NewDispatcher(poolSize int, opts ...ingest.Option) (*ingest.Dispatcher, error) {
	pipeline, err := h.NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	return ingest.NewDispatcher(pipeline, poolSize)
}

// NewEmbeddingWorker creates a worker draining the hub's queue.
func (h *Hub) NewEmbeddingWorker() *embedding.Worker {
	return embedding.NewWorker(h.queue, h.repo, h.provider.Embedder())
}

// GetResource reads one resource.
func (h *Hub) GetResource(ctx context.Context, tenantID, id uuid.UUID) (*core.Resource, error) {
	return h.repo.GetResource(ctx, tenantID, id)
}

// SearchResources runs a tenant-scoped text search.
func (h *Hub) SearchResources(ctx context.Context, tenantID uuid.UUID, query storage.SearchQuery) ([]*core.Resource, error) {
	return h.repo.SearchResources(ctx, tenantID, query)
}

// Close shuts the hub down.
func (h *Hub) Close() error {
	if err := h.provider.Close(); err != nil {
		h.logger.Error("error closing AI provider", "err", err)
	}
	if err := h.queue.Close(); err != nil {
		h.logger.Error("error closing embedding queue", "err", err)
		return err
	}
	if err := h.repo.Close(); err != nil {
		h.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}
