package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1536, cfg.Vector.Dim)
	assert.Equal(t, MetricL2, cfg.Vector.Metric)
	assert.Equal(t, 16, cfg.Vector.M)
	assert.Equal(t, 64, cfg.Vector.EfConstruction)
	assert.Equal(t, 40, cfg.Vector.EfSearch)
	assert.Equal(t, 30*time.Second, cfg.Search.CacheTTL)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "768")
	t.Setenv("VECTOR_METRIC", "cosine")
	t.Setenv("HNSW_M", "32")
	t.Setenv("SEARCH_CACHE_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 768, cfg.Vector.Dim)
	assert.Equal(t, MetricCosine, cfg.Vector.Metric)
	assert.Equal(t, 32, cfg.Vector.M)
	assert.Equal(t, 2*time.Minute, cfg.Search.CacheTTL)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/chunkstore"},
		Auth:     AuthConfig{APIKey: "k"},
		Vector:   VectorConfig{Dim: 1536, Metric: MetricL2},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Database.URL = ""
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg.Database.URL = "postgres://localhost/chunkstore"
	cfg.Vector.Metric = "manhattan"
	assert.ErrorContains(t, cfg.Validate(), "VECTOR_METRIC")

	cfg.Vector.Metric = MetricCosine
	cfg.Vector.Dim = 0
	assert.ErrorContains(t, cfg.Validate(), "EMBEDDING_DIM")

	cfg.Vector.Dim = 1536
	cfg.Auth = AuthConfig{}
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET or API_KEY")
}

func TestAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 9090}}
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
}
