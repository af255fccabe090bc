package embeddings

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// DefaultHashDimensions is the vector size of the local embedder.
const DefaultHashDimensions = 384

var tokenPattern = regexp.MustCompile(`\p{L}+|\p{N}+`)

// HashEmbedder is an offline embedder based on feature hashing. Each
// lower-cased word is hashed into one of dims buckets with a sign bit and
// the resulting bag-of-words vector is L2-normalised. Texts without any
// word characters fall back to hashing their runes. Output depends only on
// the text, so it is safe to mix single and batch calls.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a feature-hashing embedder. Non-positive dims
// select DefaultHashDimensions.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Name() string {
	return "local/hash"
}

func (e *HashEmbedder) Dimensions() int {
	return e.dims
}

func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *HashEmbedder) embedOne(text string) []float32 {
	v := make([]float32, e.dims)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		for _, r := range text {
			tokens = append(tokens, string(r))
		}
	}
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dims))
		if sum&(1<<63) != 0 {
			v[idx]--
		} else {
			v[idx]++
		}
	}
	return normalize(v)
}
