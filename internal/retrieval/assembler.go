package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/docchat/internal/chunker"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/logging"
	"github.com/ziadkadry99/docchat/internal/vectorset"
)

// RecordSource lists every processed record.
type RecordSource interface {
	ListProcessed(ctx context.Context) ([]documents.ProcessedRecord, error)
}

// Assembler rebuilds an Index from the stored records on every query and
// turns the nearest fragments into a context string.
type Assembler struct {
	records   RecordSource
	embedder  embeddings.Embedder
	chunkSize int
	logger    *zap.Logger
}

// NewAssembler creates an Assembler. chunkSize is used for records that did
// not store the size they were built with.
func NewAssembler(records RecordSource, embedder embeddings.Embedder, chunkSize int, logger *zap.Logger) *Assembler {
	return &Assembler{
		records:   records,
		embedder:  embedder,
		chunkSize: chunkSize,
		logger:    logging.OrNop(logger),
	}
}

// BuildContext returns the topK fragments nearest to question joined by a
// single space, or "" when nothing is indexed.
func (a *Assembler) BuildContext(ctx context.Context, question string, topK int) (string, error) {
	hits, err := a.Retrieve(ctx, question, topK)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Fragment
	}
	return strings.Join(parts, " "), nil
}

// Retrieve returns the topK hits for question, nearest first.
func (a *Assembler) Retrieve(ctx context.Context, question string, topK int) ([]Hit, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil
	}
	idx, err := a.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		return nil, nil
	}
	hits, err := idx.Search(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return hits, nil
}

// BuildIndex loads every processed record into a fresh Index. Records that
// cannot be decoded or aligned with their text are logged and skipped.
func (a *Assembler) BuildIndex(ctx context.Context) (*Index, error) {
	recs, err := a.records.ListProcessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading processed records: %w", err)
	}
	idx, err := NewIndex(a.embedder)
	if err != nil {
		return nil, err
	}

	for _, rec := range recs {
		log := a.logger.With(zap.String("record_id", rec.ID), zap.String("document_id", rec.DocumentID))
		if len(rec.Vectors) == 0 {
			log.Debug("skipping record without vectors")
			continue
		}
		vectors, err := vectorset.Decode(rec.Vectors)
		if err != nil {
			log.Warn("skipping record with unreadable vectors", zap.Error(err))
			continue
		}

		size := rec.ChunkSize
		if size <= 0 {
			size = a.chunkSize
		}
		fragments := chunker.Split(rec.Text, size)

		if err := idx.Add(ctx, rec.DocumentID, fragments, vectors); err != nil {
			if errors.Is(err, ErrMisaligned) {
				log.Warn("skipping misaligned record", zap.Int("chunk_size", size), zap.Error(err))
				continue
			}
			return nil, err
		}
	}
	return idx, nil
}
