// Package mock provides test doubles for the ai interfaces.
//
// MockEmbedder allows behavior injection via function fields and falls
// back to deterministic hash-derived vectors, so tests run without an
// embedding service.
package mock

import (
	"context"
	"sync/atomic"

	"github.com/hubforge/contenthub/ai"
)

const mockDimension = 8

// MockEmbedder is a test double for ai.Embedder.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount atomic.Int64
	inner     *ai.DeterministicEmbedder
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic
// behavior. Returns the concrete type so tests can inspect call counts.
func NewMockEmbedder() *MockEmbedder {
	inner, _ := ai.NewDeterministicEmbedder(mockDimension)
	return &MockEmbedder{inner: inner}
}

// EmbedText embeds one text through the injected function or the
// deterministic default.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return m.inner.EmbedText(ctx, text)
}

// EmbedTexts embeds a batch through the injected function or the
// deterministic default.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	return m.inner.EmbedTexts(ctx, texts)
}

// CallCount reports how many embed calls were made.
func (m *MockEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// MockProvider aggregates a MockEmbedder behind ai.Provider.
type MockProvider struct {
	embedder *MockEmbedder
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider backed by a fresh MockEmbedder.
func NewMockProvider() *MockProvider {
	return &MockProvider{embedder: NewMockEmbedder()}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
