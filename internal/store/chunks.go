package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trungnd/chunkstore/internal/models"
)

// ChunkStore persists the ordered decomposition of a document. Replacement is
// the only write path: a document's chunk sequence changes as a whole or not
// at all.
type ChunkStore struct {
	db *pgxpool.Pool
}

func NewChunkStore(db *pgxpool.Pool) *ChunkStore {
	return &ChunkStore{db: db}
}

type ChunkInput struct {
	Text string                 `json:"text"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// ReplaceChunks swaps a document's chunk sequence in one transaction: old
// chunks (and their embeddings, via cascade) are deleted and the new sequence
// is inserted with ord assigned by position. A concurrent reader sees either
// the old generation or the new one, never a mix.
func (s *ChunkStore) ReplaceChunks(ctx context.Context, documentID uuid.UUID, inputs []ChunkInput) ([]models.Chunk, error) {
	for i, in := range inputs {
		if in.Text == "" {
			return nil, fmt.Errorf("chunk %d: text must be non-empty", i)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", MapError(err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM chunks WHERE document_id = $1", documentID); err != nil {
		return nil, fmt.Errorf("delete old chunks for %s: %w", documentID, MapError(err))
	}

	chunks := make([]models.Chunk, 0, len(inputs))
	for i, in := range inputs {
		meta, err := json.Marshal(in.Meta)
		if err != nil {
			return nil, fmt.Errorf("marshal chunk %d meta: %w", i, err)
		}
		if in.Meta == nil {
			meta = []byte("{}")
		}

		var c models.Chunk
		err = tx.QueryRow(ctx,
			`INSERT INTO chunks (id, document_id, ord, text, meta)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, document_id, ord, text, meta, created_at`,
			uuid.New(), documentID, i, in.Text, meta,
		).Scan(&c.ID, &c.DocumentID, &c.Ord, &c.Text, &c.Meta, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d for %s: %w", i, documentID, MapError(err))
		}
		chunks = append(chunks, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit chunk replacement for %s: %w", documentID, MapError(err))
	}
	return chunks, nil
}

// GetChunksForDocument returns the document's chunks in ascending ord. A
// document with no chunks yields an empty slice, not an error.
func (s *ChunkStore) GetChunksForDocument(ctx context.Context, documentID uuid.UUID) ([]models.Chunk, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, ord, text, meta, created_at
		 FROM chunks WHERE document_id = $1 ORDER BY ord ASC`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("get chunks for %s: %w", documentID, MapError(err))
	}
	defer rows.Close()

	chunks := []models.Chunk{}
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Ord, &c.Text, &c.Meta, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
