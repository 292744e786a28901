package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/trungnd/chunkstore/internal/api/handlers"
	"github.com/trungnd/chunkstore/internal/api/middleware"
	"github.com/trungnd/chunkstore/internal/auth"
	"github.com/trungnd/chunkstore/internal/cache"
	"github.com/trungnd/chunkstore/internal/config"
	"github.com/trungnd/chunkstore/internal/queue"
	"github.com/trungnd/chunkstore/internal/store"
	"github.com/trungnd/chunkstore/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	queue *queue.Client
	cfg   *config.Config
	authn *auth.Middleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, qc *queue.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		queue: qc,
		cfg:   cfg,
		authn: auth.NewMiddleware(cfg.Auth),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	docStore := store.NewDocumentStore(rt.db)
	chunkStore := store.NewChunkStore(rt.db)
	vs := vectorstore.NewPgVectorStore(rt.db, rt.cfg.Vector)

	var searchCache *cache.Cache
	if rt.redis != nil {
		searchCache = cache.NewCache(rt.redis)
	}

	var enqueuer handlers.Enqueuer
	if rt.queue != nil {
		enqueuer = rt.queue
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authn.Authenticate)

		docH := handlers.NewDocumentHandler(docStore, chunkStore, enqueuer)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upsert)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Delete("/{id}", docH.Delete)
			r.Put("/{id}/chunks", docH.ReplaceChunks)
			r.Get("/{id}/chunks", docH.GetChunks)
		})

		searchH := handlers.NewSearchHandler(vs, searchCache, rt.cfg.Search.CacheTTL)
		r.Put("/chunks/{id}/embedding", searchH.UpsertEmbedding)
		r.Post("/search", searchH.Search)
		r.Post("/resolve", searchH.Resolve)
	})

	return r
}
