package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		cfg := NewConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		cfg.EmbeddingHost = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingEmbeddingHost)
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		cfg.EmbeddingModel = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingEmbeddingModel)
	})
}

func TestConfig_NormalizeAppendsV1(t *testing.T) {
	cfg := NewConfig(WithEmbeddingHost("http://localhost:11434"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)

	// Already canonical hosts stay untouched.
	cfg = NewConfig(WithEmbeddingHost("http://localhost:11434/v1"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
}

func TestDeterministicEmbedder(t *testing.T) {
	embedder, err := NewDeterministicEmbedder(64)
	require.NoError(t, err)

	ctx := context.Background()
	a1, err := embedder.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	a2, err := embedder.EmbedText(ctx, "hello world")
	require.NoError(t, err)
	b, err := embedder.EmbedText(ctx, "something else")
	require.NoError(t, err)

	assert.Len(t, a1, 64)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)

	// Values are normalized into [-1, 1].
	for _, v := range a1 {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestDeterministicEmbedder_InvalidDimension(t *testing.T) {
	_, err := NewDeterministicEmbedder(0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestDeterministicEmbedder_Batch(t *testing.T) {
	embedder, err := NewDeterministicEmbedder(16)
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.NotEqual(t, vectors[0], vectors[1])
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return s.vector, s.err
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func TestFallbackEmbedder(t *testing.T) {
	primary := &stubEmbedder{err: errors.New("service down")}
	fallback := &stubEmbedder{vector: []float32{1, 2}}
	embedder := NewFallbackEmbedder(primary, fallback)

	vector, err := embedder.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vector)

	// Healthy primary wins.
	primary.err = nil
	primary.vector = []float32{9}
	vector, err = embedder.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{9}, vector)
}
