package vectorstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungnd/chunkstore/internal/config"
	"github.com/trungnd/chunkstore/internal/store"
)

func testConfig() config.VectorConfig {
	return config.VectorConfig{
		Dim:            1536,
		Metric:         config.MetricL2,
		M:              16,
		EfConstruction: 64,
		EfSearch:       40,
	}
}

func TestUpsertEmbedding_DimensionMismatch(t *testing.T) {
	s := NewPgVectorStore(nil, testConfig())

	// one short and one long, both must fail before any database access
	for _, n := range []int{1535, 1537} {
		err := s.UpsertEmbedding(context.Background(), uuid.New(), make([]float32, n))
		assert.ErrorIs(t, err, store.ErrDimensionMismatch)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	s := NewPgVectorStore(nil, testConfig())

	_, err := s.Search(context.Background(), make([]float32, 3), SearchOptions{TopK: 5})
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestMetricOperator(t *testing.T) {
	op, err := metricOperator(config.MetricL2)
	require.NoError(t, err)
	assert.Equal(t, "<->", op)

	op, err = metricOperator(config.MetricCosine)
	require.NoError(t, err)
	assert.Equal(t, "<=>", op)

	_, err = metricOperator("dot")
	assert.Error(t, err)
}

func TestMetricOpclass(t *testing.T) {
	oc, err := metricOpclass(config.MetricL2)
	require.NoError(t, err)
	assert.Equal(t, "vector_l2_ops", oc)

	oc, err = metricOpclass(config.MetricCosine)
	require.NoError(t, err)
	assert.Equal(t, "vector_cosine_ops", oc)

	_, err = metricOpclass("hamming")
	assert.Error(t, err)
}

func TestBuildSearchQuery_NoFilter(t *testing.T) {
	sql, args, err := buildSearchQuery("<->", nil)
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Contains(t, sql, "ORDER BY e.embedding <-> $1")
	assert.Contains(t, sql, "LIMIT $2")
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "JOIN documents")
}

func TestBuildSearchQuery_DocumentMetaFilter(t *testing.T) {
	f := &Filter{DocumentMeta: map[string]interface{}{"domain": "xây dựng"}}
	sql, args, err := buildSearchQuery("<->", f)
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN documents d ON d.id = c.document_id")
	assert.Contains(t, sql, "d.meta @> $3")
	require.Len(t, args, 1)
	assert.JSONEq(t, `{"domain":"xây dựng"}`, string(args[0].([]byte)))
}

func TestBuildSearchQuery_ChunkMetaFilter(t *testing.T) {
	f := &Filter{ChunkMeta: map[string]interface{}{"section": "2"}}
	sql, args, err := buildSearchQuery("<=>", f)
	require.NoError(t, err)

	assert.NotContains(t, sql, "JOIN documents")
	assert.Contains(t, sql, "c.meta @> $3")
	assert.Contains(t, sql, "ORDER BY e.embedding <=> $1")
	assert.Len(t, args, 1)
}

func TestBuildSearchQuery_CombinedFilter(t *testing.T) {
	docID := uuid.New()
	f := &Filter{
		DocumentID:   &docID,
		DocumentMeta: map[string]interface{}{"domain": "tài chính"},
		ChunkMeta:    map[string]interface{}{"article": "Điều 5"},
	}
	sql, args, err := buildSearchQuery("<->", f)
	require.NoError(t, err)

	assert.Contains(t, sql, "d.id = $3")
	assert.Contains(t, sql, "d.meta @> $4")
	assert.Contains(t, sql, "c.meta @> $5")
	require.Len(t, args, 3)
	assert.Equal(t, docID, args[0])
}

func TestFilterEmpty(t *testing.T) {
	var f *Filter
	assert.True(t, f.empty())
	assert.True(t, (&Filter{}).empty())

	id := uuid.New()
	assert.False(t, (&Filter{DocumentID: &id}).empty())
	assert.False(t, (&Filter{ChunkMeta: map[string]interface{}{"a": 1}}).empty())
}
