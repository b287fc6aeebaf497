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


// Package ingest orchestrates source syncs: it streams vendor payloads,
// maps them into canonical resources, upserts them in fixed-size
// batches and hands the written IDs to the embedding queue.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/adapters"
	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/embedding"
	"github.com/hubforge/contenthub/sources"
	"github.com/hubforge/contenthub/storage"
)

// DefaultBatchSize is how many resources are upserted per transaction.
const DefaultBatchSize = 100

// ClientFactory builds the source client for a sync request. Swapped
// out in tests to avoid real vendor APIs.
type ClientFactory func(req *SyncRequest) (sources.ItemStream, error)

// SyncResult summarizes a completed sync.
type SyncResult struct {
	Resources int
	Batches   int
}

// Pipeline pulls a source into storage batch by batch. Each flushed
// batch is committed and queued for embedding before the next one
// starts, so a mid-sync failure keeps everything already flushed.
type Pipeline struct {
	repo          storage.ResourceRepository
	sender        embedding.Sender
	clientFactory ClientFactory
	batchSize     int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize overrides the upsert batch size.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithClientFactory overrides how source clients are built.
func WithClientFactory(factory ClientFactory) Option {
	return func(p *Pipeline) error {
		if factory != nil {
			p.clientFactory = factory
		}
		return nil
	}
}

// NewPipeline creates a sync pipeline over the given repository and
// embedding job sender.
func NewPipeline(repo storage.ResourceRepository, sender embedding.Sender, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if sender == nil {
		return nil, ErrSenderRequired
	}

	p := &Pipeline{
		repo:          repo,
		sender:        sender,
		clientFactory: defaultClientFactory,
		batchSize:     DefaultBatchSize,
		logger:        slog.Default().With("component", "ingest-pipeline"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func defaultClientFactory(req *SyncRequest) (sources.ItemStream, error) {
	switch req.Source {
	case core.SourceShopify:
		var opts []sources.ClientOption
		if req.Params.APIVersion != "" {
			opts = append(opts, sources.WithAPIVersion(req.Params.APIVersion))
		}
		return sources.NewShopifyClient(req.Params.StoreDomain, req.Params.AccessToken, opts...)
	case core.SourceWordPress:
		var opts []sources.ClientOption
		if len(req.Params.ItemTypes) > 0 {
			opts = append(opts, sources.WithItemTypes(req.Params.ItemTypes))
		}
		return sources.NewWordPressClient(req.Params.BaseURL, req.Params.AuthToken, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, req.Source)
}

// Run executes one sync synchronously. Batches committed before an
// error surface in the returned result alongside the error.
func (p *Pipeline) Run(ctx context.Context, req *SyncRequest) (*SyncResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	adapter, ok := adapters.ForSource(req.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, req.Source)
	}
	client, err := p.clientFactory(req)
	if err != nil {
		return nil, err
	}

	site := req.Site()
	result := &SyncResult{}
	batch := make([]*core.Resource, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		saved, err := p.repo.UpsertResources(ctx, req.TenantID, batch)
		if err != nil {
			return fmt.Errorf("flush batch: %w", err)
		}
		result.Resources += len(saved)
		result.Batches++
		p.enqueueEmbeddings(ctx, req, saved)
		batch = batch[:0]
		return nil
	}

	streamErr := client.ForEach(ctx, func(item map[string]any) error {
		batch = append(batch, adapter.Map(item, req.TenantID, site))
		if len(batch) >= p.batchSize {
			return flush()
		}
		return nil
	})
	if streamErr != nil {
		p.logger.Error("sync aborted", "tenant", req.TenantID, "source", req.Source,
			"resources", result.Resources, "err", streamErr)
		return result, streamErr
	}

	if err := flush(); err != nil {
		return result, err
	}

	p.logger.Info("sync complete", "tenant", req.TenantID, "source", req.Source,
		"site", site, "resources", result.Resources, "batches", result.Batches)
	return result, nil
}

// enqueueEmbeddings queues the flushed IDs for embedding. Queue errors
// are logged, never propagated: a failed enqueue must not undo a
// committed batch.
func (p *Pipeline) enqueueEmbeddings(ctx context.Context, req *SyncRequest, saved []*core.Resource) {
	ids := make([]uuid.UUID, len(saved))
	for i, res := range saved {
		ids[i] = res.ID
	}
	err := p.sender.Enqueue(ctx, &embedding.Job{
		TenantID:    req.TenantID,
		ResourceIDs: ids,
	})
	if err != nil {
		p.logger.Error("embedding enqueue failed", "tenant", req.TenantID, "count", len(ids), "err", err)
	}
}
