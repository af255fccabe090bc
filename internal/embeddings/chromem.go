package embeddings

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ToChromemFunc converts an Embedder into a chromem.EmbeddingFunc.
// chromem-go expects a function that embeds a single text at a time.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		results, err := EmbedAligned(ctx, e, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embedding for chromem: %w", err)
		}
		return results[0], nil
	}
}
