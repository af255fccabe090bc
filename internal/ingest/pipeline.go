// Package ingest turns unprocessed documents into stored fragment vectors.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/chunker"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/extract"
	"github.com/ziadkadry99/docchat/internal/logging"
	"github.com/ziadkadry99/docchat/internal/vectorset"
)

var (
	// ErrEmptyText means no text could be extracted from the document.
	ErrEmptyText = errors.New("ingest: no text extracted")
	// ErrNoFragments means the extracted text contained only whitespace.
	ErrNoFragments = errors.New("ingest: no fragments produced")
)

// Store is the document persistence the pipeline reads from and commits to.
type Store interface {
	ListUnprocessed(ctx context.Context) ([]documents.SourceDocument, error)
	CommitProcessed(ctx context.Context, rec documents.ProcessedRecord) (*documents.ProcessedRecord, error)
}

// ProgressFunc is called after each document with the number handled so far.
type ProgressFunc func(processed int, total int, current string)

// Result summarizes one Run.
type Result struct {
	Processed int
	Failed    int
	Fragments int
	Duration  time.Duration
	Errors    []error
}

// Pipeline orchestrates ingestion: extract -> split -> embed -> commit.
type Pipeline struct {
	extractor  extract.Extractor
	embedder   embeddings.Embedder
	store      Store
	chunkSize  int
	logger     *zap.Logger
	onProgress ProgressFunc
}

// NewPipeline creates a new Pipeline.
func NewPipeline(
	extractor extract.Extractor,
	embedder embeddings.Embedder,
	store Store,
	chunkSize int,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		chunkSize: chunkSize,
		logger:    logging.OrNop(logger),
	}
}

// SetProgressFunc sets the progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// Ingest processes a single document and commits its record. On any error
// nothing is written and the document stays unprocessed.
func (p *Pipeline) Ingest(ctx context.Context, doc documents.SourceDocument) (*documents.ProcessedRecord, error) {
	text := p.extractor.Extract(ctx, doc.FilePath)
	if text == "" {
		return nil, ErrEmptyText
	}

	fragments := chunker.Split(text, p.chunkSize)
	if len(fragments) == 0 {
		return nil, ErrNoFragments
	}

	vectors, err := embeddings.EmbedAligned(ctx, p.embedder, fragments)
	if err != nil {
		return nil, fmt.Errorf("embedding %d fragments: %w", len(fragments), err)
	}

	blob, err := vectorset.Encode(vectors)
	if err != nil {
		return nil, fmt.Errorf("encoding vectors: %w", err)
	}

	rec, err := p.store.CommitProcessed(ctx, documents.ProcessedRecord{
		DocumentID: doc.ID,
		FileName:   filepath.Base(doc.FilePath),
		Text:       text,
		Vectors:    blob,
		ChunkSize:  p.chunkSize,
	})
	if err != nil {
		return nil, fmt.Errorf("committing record: %w", err)
	}
	return rec, nil
}

// Run ingests every unprocessed document. A failing document is logged and
// counted; it does not stop the others. Only listing failures and context
// cancellation are returned as errors.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	pending, err := p.store.ListUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unprocessed documents: %w", err)
	}

	for i, doc := range pending {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		log := p.logger.With(zap.String("document_id", doc.ID), zap.String("path", doc.FilePath))
		rec, err := p.Ingest(ctx, doc)
		switch {
		case err == nil:
			n := chunker.Count(rec.Text, rec.ChunkSize)
			result.Processed++
			result.Fragments += n
			log.Info("document ingested", zap.Int("fragments", n))
		case errors.Is(err, ErrEmptyText), errors.Is(err, ErrNoFragments):
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.FilePath, err))
			log.Warn("document produced no text", zap.Error(err))
		default:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.FilePath, err))
			log.Error("document ingestion failed", zap.Error(err))
		}

		if p.onProgress != nil {
			p.onProgress(i+1, len(pending), filepath.Base(doc.FilePath))
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
