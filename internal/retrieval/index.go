// Package retrieval rebuilds a similarity index from processed documents and
// assembles the context handed to answer synthesis.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/docchat/internal/embeddings"
)

// ErrMisaligned is returned when fragments and vectors cannot be indexed
// together: their counts differ or a vector has the wrong dimension.
var ErrMisaligned = errors.New("retrieval: fragments and vectors are misaligned")

const collectionName = "fragments"

// Hit is one search result. Position is the fragment's index in insertion
// order.
type Hit struct {
	Position   int     `json:"position"`
	DocumentID string  `json:"document_id"`
	Fragment   string  `json:"fragment"`
	Similarity float32 `json:"similarity"`
}

// Index is a query-scoped, in-memory similarity index. Fragments and their
// vectors are only ever appended together, so position i of one always
// belongs to position i of the other. An Index is not safe for concurrent
// use.
type Index struct {
	collection *chromem.Collection
	dims       int
	fragments  []string
	sources    []string
}

// NewIndex creates an empty index whose queries are embedded with embedder.
func NewIndex(embedder embeddings.Embedder) (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{collection: col, dims: embedder.Dimensions()}, nil
}

// Len returns the number of indexed fragments.
func (x *Index) Len() int {
	return len(x.fragments)
}

// Add appends fragments and their vectors in lockstep. Nothing is added
// when the batch is misaligned.
func (x *Index) Add(ctx context.Context, source string, fragments []string, vectors [][]float32) error {
	if len(fragments) != len(vectors) {
		return fmt.Errorf("%w: %d fragments, %d vectors", ErrMisaligned, len(fragments), len(vectors))
	}
	if len(fragments) == 0 {
		return nil
	}
	dims := x.dims
	if dims == 0 {
		dims = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dims, want %d", ErrMisaligned, i, len(v), dims)
		}
	}

	base := len(x.fragments)
	docs := make([]chromem.Document, len(fragments))
	for i, frag := range fragments {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(base + i),
			Content:   frag,
			Embedding: vectors[i],
			Metadata:  map[string]string{"document_id": source},
		}
	}
	if err := x.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("indexing fragments: %w", err)
	}

	x.dims = dims
	x.fragments = append(x.fragments, fragments...)
	for range fragments {
		x.sources = append(x.sources, source)
	}
	return nil
}

// Search embeds query and returns up to k fragments ordered by descending
// cosine similarity, ties broken by ascending position. An empty index
// returns no hits without embedding the query.
func (x *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	count := x.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}

	// Rank everything so ties are resolved here rather than by chromem.
	results, err := x.collection.Query(ctx, query, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil || pos < 0 || pos >= len(x.fragments) {
			continue
		}
		hits = append(hits, Hit{
			Position:   pos,
			DocumentID: x.sources[pos],
			Fragment:   x.fragments[pos],
			Similarity: r.Similarity,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Position < hits[j].Position
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
