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


package embedding

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/ai"
	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/storage"
)

// Receiver is the dequeue side of the queue.
type Receiver interface {
	Dequeue(ctx context.Context) (*Job, error)
}

// Worker drains the job queue and writes embeddings back to storage.
// A resource with no usable text, or whose embedding fails, gets its
// stored embedding cleared so stale vectors never shadow new content.
type Worker struct {
	queue    Receiver
	repo     storage.ResourceRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewWorker creates a worker over the given queue, repository and embedder.
func NewWorker(queue Receiver, repo storage.ResourceRepository, embedder ai.Embedder) *Worker {
	return &Worker{
		queue:    queue,
		repo:     repo,
		embedder: embedder,
		logger:   slog.Default().With("component", "embedding-worker"),
	}
}

// Run processes jobs until the context is done or the queue closes.
// Per-job failures are logged, not fatal.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrQueueClosed) {
				return nil
			}
			return err
		}
		if err := w.Process(ctx, job); err != nil {
			w.logger.Error("job failed", "tenant", job.TenantID, "err", err)
		}
	}
}

// Process embeds one job's resources and stores the vectors.
func (w *Worker) Process(ctx context.Context, job *Job) error {
	resources, err := w.repo.GetResources(ctx, job.TenantID, job.ResourceIDs)
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		w.logger.Debug("job had no live resources", "tenant", job.TenantID)
		return nil
	}

	embeddings := make(map[uuid.UUID][]float32, len(resources))
	var pendingIDs []uuid.UUID
	var pendingTexts []string
	for _, res := range resources {
		text := embeddingText(res)
		if text == "" {
			embeddings[res.ID] = nil
			continue
		}
		pendingIDs = append(pendingIDs, res.ID)
		pendingTexts = append(pendingTexts, text)
	}

	if len(pendingTexts) > 0 {
		vectors, err := w.embedder.EmbedTexts(ctx, pendingTexts)
		if err != nil || len(vectors) != len(pendingIDs) {
			w.logger.Warn("embedding failed, clearing vectors", "tenant", job.TenantID, "count", len(pendingIDs), "err", err)
			for _, id := range pendingIDs {
				embeddings[id] = nil
			}
		} else {
			for i, id := range pendingIDs {
				embeddings[id] = vectors[i]
			}
		}
	}

	if err := w.repo.UpdateEmbeddings(ctx, job.TenantID, embeddings); err != nil {
		return err
	}
	w.logger.Debug("job processed", "tenant", job.TenantID, "resources", len(embeddings))
	return nil
}

// embeddingText picks what to embed: stripped body text, falling back
// to the raw HTML when stripping produced nothing.
func embeddingText(res *core.Resource) string {
	if text := strings.TrimSpace(res.BodyText); text != "" {
		return text
	}
	return strings.TrimSpace(res.BodyHTML)
}
