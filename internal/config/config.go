package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Vector   VectorConfig
	Embedder EmbedderConfig
	Search   SearchConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	APIKey       string
	APIKeyHeader string
}

// VectorConfig fixes the embedding dimension, the distance metric and the HNSW
// index parameters for a deployment. Changing Metric after the index exists
// requires rebuilding it.
type VectorConfig struct {
	Dim            int
	Metric         string // "l2" or "cosine"
	M              int    // HNSW graph connectivity per node
	EfConstruction int    // candidate list size at build time
	EfSearch       int    // default candidate list size at query time
}

type EmbedderConfig struct {
	OpenAIKey string
	Model     string
}

type SearchConfig struct {
	CacheTTL time.Duration
}

const (
	MetricL2     = "l2"
	MetricCosine = "cosine"
)

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	dim, err := getEnvInt("EMBEDDING_DIM", 1536)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_DIM: %w", err)
	}

	m, err := getEnvInt("HNSW_M", 16)
	if err != nil {
		return nil, fmt.Errorf("invalid HNSW_M: %w", err)
	}

	efConstruction, err := getEnvInt("HNSW_EF_CONSTRUCTION", 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HNSW_EF_CONSTRUCTION: %w", err)
	}

	efSearch, err := getEnvInt("HNSW_EF_SEARCH", 40)
	if err != nil {
		return nil, fmt.Errorf("invalid HNSW_EF_SEARCH: %w", err)
	}

	cacheTTL, err := getEnvDuration("SEARCH_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			APIKey:       getEnv("API_KEY", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
		},
		Vector: VectorConfig{
			Dim:            dim,
			Metric:         getEnv("VECTOR_METRIC", MetricL2),
			M:              m,
			EfConstruction: efConstruction,
			EfSearch:       efSearch,
		},
		Embedder: EmbedderConfig{
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Search: SearchConfig{
			CacheTTL: cacheTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" && c.Auth.APIKey == "" {
		missing = append(missing, "JWT_SECRET or API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.Vector.Dim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.Vector.Dim)
	}
	if c.Vector.Metric != MetricL2 && c.Vector.Metric != MetricCosine {
		return fmt.Errorf("VECTOR_METRIC must be %q or %q, got %q", MetricL2, MetricCosine, c.Vector.Metric)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
