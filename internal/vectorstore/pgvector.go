package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/trungnd/chunkstore/internal/config"
	"github.com/trungnd/chunkstore/internal/models"
	"github.com/trungnd/chunkstore/internal/store"
)

// PgVectorStore indexes one embedding per chunk in a pgvector HNSW index.
// The dimension and distance metric come from deployment config and every
// stored vector must match the dimension exactly.
type PgVectorStore struct {
	db  *pgxpool.Pool
	cfg config.VectorConfig
}

func NewPgVectorStore(db *pgxpool.Pool, cfg config.VectorConfig) *PgVectorStore {
	return &PgVectorStore{db: db, cfg: cfg}
}

// UpsertEmbedding stores the vector for a chunk, replacing any prior one.
// The dimension is checked before touching the database so a mismatch never
// disturbs an existing embedding.
func (s *PgVectorStore) UpsertEmbedding(ctx context.Context, chunkID uuid.UUID, embedding []float32) error {
	if len(embedding) != s.cfg.Dim {
		return fmt.Errorf("upsert embedding for %s: got %d dimensions, want %d: %w",
			chunkID, len(embedding), s.cfg.Dim, store.ErrDimensionMismatch)
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO chunk_embeddings (chunk_id, embedding)
		 VALUES ($1, $2)
		 ON CONFLICT (chunk_id) DO UPDATE SET embedding = EXCLUDED.embedding`,
		chunkID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert embedding for %s: %w", chunkID, store.MapError(err))
	}
	return nil
}

// Search returns up to opts.TopK chunks ordered by ascending distance to the
// query vector. If the caller's deadline expires while rows are being drained,
// the hits collected so far are returned with Partial set instead of an error.
func (s *PgVectorStore) Search(ctx context.Context, query []float32, opts SearchOptions) (*SearchResult, error) {
	if len(query) != s.cfg.Dim {
		return nil, fmt.Errorf("search: got %d dimensions, want %d: %w",
			len(query), s.cfg.Dim, store.ErrDimensionMismatch)
	}
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	efSearch := opts.EfSearch
	if efSearch <= 0 {
		efSearch = s.cfg.EfSearch
	}

	operator, err := metricOperator(s.cfg.Metric)
	if err != nil {
		return nil, err
	}

	sql, extraArgs, err := buildSearchQuery(operator, opts.Filter)
	if err != nil {
		return nil, err
	}
	args := append([]interface{}{pgvector.NewVector(query), opts.TopK}, extraArgs...)

	// SET LOCAL scopes ef_search to this transaction only, so concurrent
	// searches with different knobs never interfere.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin search tx: %w", store.MapError(err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", efSearch)); err != nil {
		return nil, fmt.Errorf("set ef_search: %w", store.MapError(err))
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &SearchResult{Hits: []Hit{}, Partial: true}, nil
		}
		return nil, fmt.Errorf("similarity search: %w", store.MapError(err))
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Chunk.ID, &h.Chunk.DocumentID, &h.Chunk.Ord, &h.Chunk.Text,
			&h.Chunk.Meta, &h.Chunk.CreatedAt, &h.Distance); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &SearchResult{Hits: hits, Partial: true}, nil
		}
		return nil, fmt.Errorf("drain search results: %w", store.MapError(err))
	}

	return &SearchResult{Hits: hits}, nil
}

// buildSearchQuery assembles the ANN query. The query vector is $1 and the
// limit is $2; filter predicates take the following placeholders. Metadata
// filters join through documents so the predicate is applied before the index
// scan result is truncated.
func buildSearchQuery(operator string, filter *Filter) (string, []interface{}, error) {
	var b strings.Builder
	b.WriteString(`SELECT c.id, c.document_id, c.ord, c.text, c.meta, c.created_at, e.embedding `)
	b.WriteString(operator)
	b.WriteString(` $1 AS distance
		FROM chunk_embeddings e
		JOIN chunks c ON c.id = e.chunk_id`)

	var (
		conds []string
		args  []interface{}
	)
	next := 3 // $1 = query vector, $2 = limit

	if !filter.empty() {
		if len(filter.DocumentMeta) > 0 || filter.DocumentID != nil {
			b.WriteString(`
		JOIN documents d ON d.id = c.document_id`)
		}
		if filter.DocumentID != nil {
			conds = append(conds, fmt.Sprintf("d.id = $%d", next))
			args = append(args, *filter.DocumentID)
			next++
		}
		if len(filter.DocumentMeta) > 0 {
			j, err := json.Marshal(filter.DocumentMeta)
			if err != nil {
				return "", nil, fmt.Errorf("marshal document meta filter: %w", err)
			}
			conds = append(conds, fmt.Sprintf("d.meta @> $%d", next))
			args = append(args, j)
			next++
		}
		if len(filter.ChunkMeta) > 0 {
			j, err := json.Marshal(filter.ChunkMeta)
			if err != nil {
				return "", nil, fmt.Errorf("marshal chunk meta filter: %w", err)
			}
			conds = append(conds, fmt.Sprintf("c.meta @> $%d", next))
			args = append(args, j)
			next++
		}
	}

	if len(conds) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	b.WriteString("\n\t\tORDER BY e.embedding ")
	b.WriteString(operator)
	b.WriteString(" $1\n\t\tLIMIT $2")

	return b.String(), args, nil
}

// Resolve hydrates chunks with their parent-document provenance in one bulk
// query against v_chunk_full. Ids deleted since the caller's search snapshot
// are silently omitted.
func (s *PgVectorStore) Resolve(ctx context.Context, chunkIDs []uuid.UUID) (map[uuid.UUID]models.ChunkWithDocument, error) {
	if len(chunkIDs) == 0 {
		return map[uuid.UUID]models.ChunkWithDocument{}, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT chunk_id, document_id, ord, text, chunk_meta, chunk_created_at,
		        source_id, source_type, COALESCE(mime_type, ''), document_meta,
		        document_created_at, document_updated_at
		 FROM v_chunk_full WHERE chunk_id = ANY($1)`,
		chunkIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve chunks: %w", store.MapError(err))
	}
	defer rows.Close()

	out := make(map[uuid.UUID]models.ChunkWithDocument, len(chunkIDs))
	for rows.Next() {
		var cwd models.ChunkWithDocument
		if err := rows.Scan(
			&cwd.Chunk.ID, &cwd.Chunk.DocumentID, &cwd.Chunk.Ord, &cwd.Chunk.Text,
			&cwd.Chunk.Meta, &cwd.Chunk.CreatedAt,
			&cwd.Document.SourceID, &cwd.Document.SourceType, &cwd.Document.MimeType,
			&cwd.Document.Meta, &cwd.Document.CreatedAt, &cwd.Document.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan provenance row: %w", err)
		}
		cwd.Document.ID = cwd.Chunk.DocumentID
		out[cwd.Chunk.ID] = cwd
	}
	return out, rows.Err()
}
