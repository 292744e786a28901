package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trungnd/chunkstore/internal/config"
)

// EnsureSchema creates the embedding table and its HNSW index for the
// configured dimension and metric. The dimension and metric are fixed per
// deployment; switching metric means dropping and rebuilding the index.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, cfg config.VectorConfig) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chunk_embeddings (
			chunk_id  UUID PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
			embedding VECTOR(%d) NOT NULL
		)
	`, cfg.Dim))
	if err != nil {
		return fmt.Errorf("create chunk_embeddings table: %w", err)
	}

	opclass, err := metricOpclass(cfg.Metric)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_hnsw
		ON chunk_embeddings USING hnsw (embedding %s)
		WITH (m = %d, ef_construction = %d)
	`, opclass, cfg.M, cfg.EfConstruction))
	if err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}

	return nil
}

func metricOpclass(metric string) (string, error) {
	switch metric {
	case config.MetricL2:
		return "vector_l2_ops", nil
	case config.MetricCosine:
		return "vector_cosine_ops", nil
	default:
		return "", fmt.Errorf("unsupported distance metric %q", metric)
	}
}

func metricOperator(metric string) (string, error) {
	switch metric {
	case config.MetricL2:
		return "<->", nil
	case config.MetricCosine:
		return "<=>", nil
	default:
		return "", fmt.Errorf("unsupported distance metric %q", metric)
	}
}
