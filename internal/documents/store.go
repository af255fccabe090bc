package documents

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docchat/internal/db"
)

// Store manages persistence of documents and processed records.
type Store struct {
	db *db.DB
}

// NewStore creates a new document store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create registers a new, unprocessed document.
func (s *Store) Create(ctx context.Context, d SourceDocument) (*SourceDocument, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	d.Processed = false

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, description, file_path, uploaded_by, uploaded_at, is_processed)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		d.ID, d.Description, d.FilePath, d.UploadedBy, d.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}
	return &d, nil
}

// Get retrieves a document by ID. It returns nil when no document exists.
func (s *Store) Get(ctx context.Context, id string) (*SourceDocument, error) {
	var d SourceDocument
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, file_path, uploaded_by, uploaded_at, is_processed
		 FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Description, &d.FilePath, &d.UploadedBy, &d.UploadedAt, &d.Processed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return &d, nil
}

// List returns all documents, newest first.
func (s *Store) List(ctx context.Context) ([]SourceDocument, error) {
	return s.queryDocuments(ctx,
		`SELECT id, description, file_path, uploaded_by, uploaded_at, is_processed
		 FROM documents ORDER BY uploaded_at DESC, id`)
}

// ListUnprocessed returns documents still waiting for ingestion, oldest first.
func (s *Store) ListUnprocessed(ctx context.Context) ([]SourceDocument, error) {
	return s.queryDocuments(ctx,
		`SELECT id, description, file_path, uploaded_by, uploaded_at, is_processed
		 FROM documents WHERE is_processed = 0 ORDER BY uploaded_at ASC, id`)
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]SourceDocument, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []SourceDocument
	for rows.Next() {
		var d SourceDocument
		if err := rows.Scan(&d.ID, &d.Description, &d.FilePath, &d.UploadedBy, &d.UploadedAt, &d.Processed); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes a document together with its processed records. It reports
// whether a document was deleted.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM processed_documents WHERE document_id = ?`, id); err != nil {
			return fmt.Errorf("deleting processed records: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// CommitProcessed stores rec and marks its document processed in a single
// transaction. The record row is written before the flag, and any earlier
// record of the same document is replaced.
func (s *Store) CommitProcessed(ctx context.Context, rec ProcessedRecord) (*ProcessedRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	err := s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM processed_documents WHERE document_id = ?`, rec.DocumentID,
		); err != nil {
			return fmt.Errorf("replacing processed record: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO processed_documents (id, document_id, file_name, text_content, embeddings, chunk_size, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.DocumentID, rec.FileName, rec.Text, rec.Vectors, rec.ChunkSize, rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting processed record: %w", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE documents SET is_processed = 1 WHERE id = ?`, rec.DocumentID)
		if err != nil {
			return fmt.Errorf("marking document processed: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("marking document processed: document %s not found", rec.DocumentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListProcessed returns every processed record in creation order.
func (s *Store) ListProcessed(ctx context.Context) ([]ProcessedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, file_name, text_content, embeddings, chunk_size, created_at
		 FROM processed_documents ORDER BY created_at ASC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying processed records: %w", err)
	}
	defer rows.Close()

	var recs []ProcessedRecord
	for rows.Next() {
		var r ProcessedRecord
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.FileName, &r.Text, &r.Vectors, &r.ChunkSize, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning processed record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
