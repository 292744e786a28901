package vectorstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/trungnd/chunkstore/internal/models"
)

// Filter restricts search candidates by metadata before the ANN scan runs
// (pre-filtering): the predicate is part of the index query's WHERE clause, so
// results are exact with respect to the filter. JSONB containment semantics:
// every key/value pair given here must be present in the stored meta.
type Filter struct {
	DocumentMeta map[string]interface{} `json:"document_meta,omitempty"`
	ChunkMeta    map[string]interface{} `json:"chunk_meta,omitempty"`
	DocumentID   *uuid.UUID             `json:"document_id,omitempty"`
}

func (f *Filter) empty() bool {
	return f == nil || (len(f.DocumentMeta) == 0 && len(f.ChunkMeta) == 0 && f.DocumentID == nil)
}

type SearchOptions struct {
	TopK     int
	EfSearch int // query-time candidate list size; 0 uses the configured default
	Filter   *Filter
}

// Hit is one search result: the chunk plus its distance to the query vector
// under the deployment's metric (smaller = more similar).
type Hit struct {
	Chunk    models.Chunk `json:"chunk"`
	Distance float64      `json:"distance"`
}

// SearchResult carries the ordered hits. Partial is set when the caller's
// deadline expired mid-scan and the hits are a best-effort prefix of the top-k.
type SearchResult struct {
	Hits    []Hit `json:"hits"`
	Partial bool  `json:"partial"`
}

type VectorStore interface {
	UpsertEmbedding(ctx context.Context, chunkID uuid.UUID, embedding []float32) error
	Search(ctx context.Context, query []float32, opts SearchOptions) (*SearchResult, error)
	Resolve(ctx context.Context, chunkIDs []uuid.UUID) (map[uuid.UUID]models.ChunkWithDocument, error)
}
