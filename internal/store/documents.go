package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trungnd/chunkstore/internal/models"
)

// DocumentStore persists registered sources. The upsert path keys on
// (source_id, source_type) so re-ingesting a source refreshes the existing row.
type DocumentStore struct {
	db *pgxpool.Pool
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db}
}

type UpsertDocumentParams struct {
	SourceID   string
	SourceType string
	MimeType   string
	Meta       map[string]interface{}
}

const documentColumns = "id, source_id, source_type, COALESCE(mime_type, ''), meta, created_at, updated_at"

func (s *DocumentStore) UpsertDocument(ctx context.Context, p UpsertDocumentParams) (*models.Document, error) {
	if p.SourceID == "" {
		return nil, fmt.Errorf("source_id required")
	}
	if p.SourceType == "" {
		p.SourceType = models.SourceTypeFile
	}

	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	if p.Meta == nil {
		meta = []byte("{}")
	}

	var doc models.Document
	err = s.db.QueryRow(ctx,
		`INSERT INTO documents (id, source_id, source_type, mime_type, meta)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 ON CONFLICT (source_id, source_type)
		 DO UPDATE SET mime_type = NULLIF($4, ''), meta = $5, updated_at = now()
		 RETURNING `+documentColumns,
		uuid.New(), p.SourceID, p.SourceType, p.MimeType, meta,
	).Scan(&doc.ID, &doc.SourceID, &doc.SourceType, &doc.MimeType, &doc.Meta, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert document %s/%s: %w", p.SourceType, p.SourceID, MapError(err))
	}

	return &doc, nil
}

func (s *DocumentStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.SourceID, &doc.SourceType, &doc.MimeType, &doc.Meta, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, MapError(err))
	}
	return &doc, nil
}

func (s *DocumentStore) ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", MapError(err))
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.SourceID, &d.SourceType, &d.MimeType, &d.Meta, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes the document and, through ON DELETE CASCADE, all of
// its chunks and their embeddings. Deleting an unknown id is a no-op.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, MapError(err))
	}
	return nil
}
