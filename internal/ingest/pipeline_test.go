package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ziadkadry99/docchat/internal/chunker"
	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/vectorset"
)

// mapExtractor serves text keyed by path.
type mapExtractor map[string]string

func (m mapExtractor) Extract(ctx context.Context, path string) string {
	return m[path]
}

// shortEmbedder drops the last vector of every batch.
type shortEmbedder struct{ embeddings.Embedder }

func (s shortEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := s.Embedder.Embed(ctx, texts)
	if err != nil || len(vs) == 0 {
		return vs, err
	}
	return vs[:len(vs)-1], nil
}

func newStore(t *testing.T) *documents.Store {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return documents.NewStore(d)
}

func TestIngestProducesAlignedRecord(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	text := strings.Repeat("x", 2500)

	doc, err := store.Create(ctx, documents.SourceDocument{FilePath: "/docs/long.pdf"})
	require.NoError(t, err)

	p := NewPipeline(mapExtractor{"/docs/long.pdf": text}, embeddings.NewHashEmbedder(32), store, 1000, nil)
	rec, err := p.Ingest(ctx, *doc)
	require.NoError(t, err)
	assert.Equal(t, "long.pdf", rec.FileName)
	assert.Equal(t, 1000, rec.ChunkSize)

	frags := chunker.Split(rec.Text, rec.ChunkSize)
	require.Len(t, frags, 3)
	assert.Len(t, frags[2], 500)

	vecs, err := vectorset.Decode(rec.Vectors)
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Len(t, vecs[0], 32)
}

func TestRunIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	core, logs := observer.New(zap.InfoLevel)

	for _, path := range []string{"good.pdf", "scanned.pdf", "blank.pdf"} {
		_, err := store.Create(ctx, documents.SourceDocument{FilePath: path})
		require.NoError(t, err)
	}
	extractor := mapExtractor{
		"good.pdf":  "Refund policy: thirty days.",
		"blank.pdf": "   \n\t  ",
	}

	var progress []int
	p := NewPipeline(extractor, embeddings.NewHashEmbedder(16), store, 10, zap.New(core))
	p.SetProgressFunc(func(done, total int, current string) {
		progress = append(progress, done)
		assert.Equal(t, 3, total)
	})

	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 3, res.Fragments)
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, []int{1, 2, 3}, progress)

	var sawEmpty, sawNoFragments bool
	for _, e := range res.Errors {
		sawEmpty = sawEmpty || errors.Is(e, ErrEmptyText)
		sawNoFragments = sawNoFragments || errors.Is(e, ErrNoFragments)
	}
	assert.True(t, sawEmpty)
	assert.True(t, sawNoFragments)
	assert.Equal(t, 2, logs.FilterMessage("document produced no text").Len())

	pending, err := store.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Create(ctx, documents.SourceDocument{FilePath: "a.pdf"})
	require.NoError(t, err)

	p := NewPipeline(mapExtractor{"a.pdf": "hello world"}, embeddings.NewHashEmbedder(16), store, 1000, nil)

	first, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	before, err := store.ListProcessed(ctx)
	require.NoError(t, err)

	second, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 0, second.Failed)

	after, err := store.ListProcessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEmbeddingMismatchLeavesDocumentPending(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Create(ctx, documents.SourceDocument{FilePath: "a.pdf"})
	require.NoError(t, err)

	p := NewPipeline(
		mapExtractor{"a.pdf": strings.Repeat("word ", 10)},
		shortEmbedder{embeddings.NewHashEmbedder(8)},
		store, 10, nil,
	)
	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], embeddings.ErrLengthMismatch))

	recs, err := store.ListProcessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	pending, err := store.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newStore(t)
	_, err := store.Create(context.Background(), documents.SourceDocument{FilePath: "a.pdf"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(mapExtractor{"a.pdf": "text"}, embeddings.NewHashEmbedder(8), store, 10, nil)
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
