package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is a registered source. The pair (SourceID, SourceType) is unique:
// re-ingesting the same source updates the existing row instead of creating a
// duplicate.
type Document struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	SourceID   string          `json:"source_id" db:"source_id"`
	SourceType string          `json:"source_type" db:"source_type"`
	MimeType   string          `json:"mime_type,omitempty" db:"mime_type"`
	Meta       json.RawMessage `json:"meta" db:"meta"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Chunk is one retrievable unit of a document's text. Chunks are immutable
// after creation; re-chunking replaces the whole sequence.
type Chunk struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	DocumentID uuid.UUID       `json:"document_id" db:"document_id"`
	Ord        int             `json:"ord" db:"ord"`
	Text       string          `json:"text" db:"text"`
	Meta       json.RawMessage `json:"meta" db:"meta"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// ChunkWithDocument is a row of the v_chunk_full view: a chunk joined with its
// parent document's provenance.
type ChunkWithDocument struct {
	Chunk    Chunk    `json:"chunk"`
	Document Document `json:"document"`
}

const (
	SourceTypeFile = "file"
	SourceTypeURL  = "url"
	SourceTypeDB   = "db"
	SourceTypeAPI  = "api"
)
