// Package documents persists uploaded source documents and the processed
// records derived from them.
package documents

import "time"

// SourceDocument is a document registered for ingestion.
type SourceDocument struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Processed   bool      `json:"is_processed"`
}

// ProcessedRecord is the durable result of ingesting one SourceDocument.
// Vectors holds the encoded fragment vectors, one row per fragment of
// chunker.Split(Text, ChunkSize). ChunkSize 0 marks a record written before
// the size was stored.
type ProcessedRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	Text       string    `json:"text_content"`
	Vectors    []byte    `json:"-"`
	ChunkSize  int       `json:"chunk_size"`
	CreatedAt  time.Time `json:"created_at"`
}
