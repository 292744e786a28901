package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trungnd/chunkstore/internal/cache"
	"github.com/trungnd/chunkstore/internal/models"
	"github.com/trungnd/chunkstore/internal/vectorstore"
)

// SearchHandler serves similarity search, embedding upsert and bulk provenance
// resolution. Result caching lives here, above the storage contract, never
// inside it.
type SearchHandler struct {
	vectors  vectorstore.VectorStore
	cache    *cache.Cache // nil when redis is unavailable
	cacheTTL time.Duration
}

func NewSearchHandler(vectors vectorstore.VectorStore, c *cache.Cache, ttl time.Duration) *SearchHandler {
	return &SearchHandler{vectors: vectors, cache: c, cacheTTL: ttl}
}

type searchRequest struct {
	Vector            []float32           `json:"vector"`
	TopK              int                 `json:"top_k,omitempty"`
	EfSearch          int                 `json:"ef_search,omitempty"`
	Filter            *vectorstore.Filter `json:"filter,omitempty"`
	IncludeProvenance bool                `json:"include_provenance,omitempty"`
}

type searchResponse struct {
	Hits      []searchHit `json:"hits"`
	Count     int         `json:"count"`
	Partial   bool        `json:"partial,omitempty"`
	FromCache bool        `json:"from_cache,omitempty"`
}

type searchHit struct {
	Chunk    models.Chunk     `json:"chunk"`
	Distance float64          `json:"distance"`
	Document *models.Document `json:"document,omitempty"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Vector) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "vector required"})
		return
	}

	key := cache.SearchKey(req.Vector, req.TopK, req.EfSearch, req.Filter)
	if h.cache != nil {
		var cached searchResponse
		if err := h.cache.Get(r.Context(), key, &cached); err == nil {
			cached.FromCache = true
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result, err := h.vectors.Search(r.Context(), req.Vector, vectorstore.SearchOptions{
		TopK:     req.TopK,
		EfSearch: req.EfSearch,
		Filter:   req.Filter,
	})
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	hits := make([]searchHit, len(result.Hits))
	for i, hit := range result.Hits {
		hits[i] = searchHit{Chunk: hit.Chunk, Distance: hit.Distance}
	}

	if req.IncludeProvenance && len(hits) > 0 {
		ids := make([]uuid.UUID, len(hits))
		for i, hit := range hits {
			ids[i] = hit.Chunk.ID
		}
		resolved, err := h.vectors.Resolve(r.Context(), ids)
		if err != nil {
			writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
			return
		}
		for i := range hits {
			if cwd, ok := resolved[hits[i].Chunk.ID]; ok {
				doc := cwd.Document
				hits[i].Document = &doc
			}
		}
	}

	resp := searchResponse{Hits: hits, Count: len(hits), Partial: result.Partial}

	// Deadline-truncated results are not representative, so never cache them.
	if h.cache != nil && !result.Partial {
		if err := h.cache.Set(r.Context(), key, resp, h.cacheTTL); err != nil {
			slog.Warn("cache search result", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type upsertEmbeddingRequest struct {
	Vector []float32 `json:"vector"`
}

func (h *SearchHandler) UpsertEmbedding(w http.ResponseWriter, r *http.Request) {
	chunkID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chunk ID"})
		return
	}

	var req upsertEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.vectors.UpsertEmbedding(r.Context(), chunkID, req.Vector); err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resolveRequest struct {
	ChunkIDs []uuid.UUID `json:"chunk_ids"`
}

func (h *SearchHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	resolved, err := h.vectors.Resolve(r.Context(), req.ChunkIDs)
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chunks": resolved, "count": len(resolved)})
}
