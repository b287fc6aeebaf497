package ai

import (
	"context"
	"log/slog"

	"github.com/go-crypt/x/blake2b"
)

// DeterministicEmbedder derives embedding vectors from a content hash.
// The same text always yields the same vector, which keeps local
// development and tests reproducible without an embedding service.
// Vectors carry no semantic meaning.
type DeterministicEmbedder struct {
	dimension int
	logger    *slog.Logger
}

var _ Embedder = (*DeterministicEmbedder)(nil)

// NewDeterministicEmbedder creates an embedder producing hash-derived
// vectors of the given width.
func NewDeterministicEmbedder(dimension int) (*DeterministicEmbedder, error) {
	if dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	return &DeterministicEmbedder{
		dimension: dimension,
		logger:    slog.Default().With("component", "deterministic-embedder"),
	}, nil
}

// EmbedText generates a deterministic vector for one text.
func (e *DeterministicEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return e.vectorFor(text), nil
}

// EmbedTexts generates deterministic vectors for multiple texts.
func (e *DeterministicEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorFor(text)
	}
	return vectors, nil
}

// vectorFor expands a blake2b digest of the text across the vector,
// rehashing the previous block until the dimension is filled.
func (e *DeterministicEmbedder) vectorFor(text string) []float32 {
	vector := make([]float32, e.dimension)

	block := digest([]byte(text))
	pos := 0
	for pos < e.dimension {
		for _, b := range block {
			if pos >= e.dimension {
				break
			}
			vector[pos] = float32(b)/255.0*2 - 1
			pos++
		}
		block = digest(block)
	}
	return vector
}

func digest(data []byte) []byte {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return h.Sum(nil)
}
