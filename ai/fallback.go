package ai

import (
	"context"
	"log/slog"
)

// FallbackEmbedder tries a primary embedder and falls back to a
// secondary when it fails. Used to keep ingestion flowing when the
// embedding service is down: the fallback result marks the resource
// for re-embedding rather than losing it.
type FallbackEmbedder struct {
	primary  Embedder
	fallback Embedder
	logger   *slog.Logger
}

var _ Embedder = (*FallbackEmbedder)(nil)

// NewFallbackEmbedder wraps primary with a fallback.
func NewFallbackEmbedder(primary, fallback Embedder) *FallbackEmbedder {
	return &FallbackEmbedder{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default().With("component", "fallback-embedder"),
	}
}

// EmbedText embeds one text, falling back on primary failure.
func (e *FallbackEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.primary.EmbedText(ctx, text)
	if err == nil {
		return vector, nil
	}
	e.logger.Warn("primary embedder failed, using fallback", "err", err)
	return e.fallback.EmbedText(ctx, text)
}

// EmbedTexts embeds a batch, falling back on primary failure.
func (e *FallbackEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.primary.EmbedTexts(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	e.logger.Warn("primary embedder failed, using fallback", "count", len(texts), "err", err)
	return e.fallback.EmbedTexts(ctx, texts)
}
