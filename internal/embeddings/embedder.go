package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrLengthMismatch means the backend returned a different number of
	// vectors than texts were sent.
	ErrLengthMismatch = errors.New("embeddings: vector count does not match input count")
	// ErrDimensionMismatch means a returned vector does not have the
	// embedder's declared dimension.
	ErrDimensionMismatch = errors.New("embeddings: vector dimension mismatch")
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed returns one vector per input text, in input order. Embedding a
	// text alone or as part of a batch yields the same vector.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// EmbedAligned embeds texts and checks that the result can be stored next to
// them: exactly one vector per text, each of e.Dimensions() length. It never
// returns partial output.
func EmbedAligned(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrLengthMismatch, len(vectors), len(texts))
	}
	dims := e.Dimensions()
	for i, v := range vectors {
		if len(v) == 0 || (dims > 0 && len(v) != dims) {
			return nil, fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return vectors, nil
}

// normalize scales v to unit length in place. Zero vectors are left as-is.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
