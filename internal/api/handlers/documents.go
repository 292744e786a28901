package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trungnd/chunkstore/internal/models"
	"github.com/trungnd/chunkstore/internal/queue"
	"github.com/trungnd/chunkstore/internal/store"
)

type DocumentStore interface {
	UpsertDocument(ctx context.Context, p store.UpsertDocumentParams) (*models.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type ChunkStore interface {
	ReplaceChunks(ctx context.Context, documentID uuid.UUID, inputs []store.ChunkInput) ([]models.Chunk, error)
	GetChunksForDocument(ctx context.Context, documentID uuid.UUID) ([]models.Chunk, error)
}

type Enqueuer interface {
	EnqueueEmbedDocument(payload queue.EmbedDocumentPayload) error
}

type DocumentHandler struct {
	docs     DocumentStore
	chunks   ChunkStore
	enqueuer Enqueuer // nil when no queue backend is configured
}

func NewDocumentHandler(docs DocumentStore, chunks ChunkStore, enqueuer Enqueuer) *DocumentHandler {
	return &DocumentHandler{docs: docs, chunks: chunks, enqueuer: enqueuer}
}

type upsertDocumentRequest struct {
	SourceID   string                 `json:"source_id"`
	SourceType string                 `json:"source_type,omitempty"`
	MimeType   string                 `json:"mime_type,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func (h *DocumentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.SourceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source_id required"})
		return
	}

	doc, err := h.docs.UpsertDocument(r.Context(), store.UpsertDocumentParams{
		SourceID:   req.SourceID,
		SourceType: req.SourceType,
		MimeType:   req.MimeType,
		Meta:       req.Meta,
	})
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	docs, err := h.docs.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	doc, err := h.docs.GetDocument(r.Context(), id)
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": "document not found"})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	if err := h.docs.DeleteDocument(r.Context(), id); err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type replaceChunksRequest struct {
	Chunks []store.ChunkInput `json:"chunks"`
}

func (h *DocumentHandler) ReplaceChunks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	var req replaceChunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	chunks, err := h.chunks.ReplaceChunks(r.Context(), id, req.Chunks)
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	embedQueued := false
	if h.enqueuer != nil && r.URL.Query().Get("embed") == "true" && len(chunks) > 0 {
		if err := h.enqueuer.EnqueueEmbedDocument(queue.EmbedDocumentPayload{DocumentID: id.String()}); err != nil {
			slog.Error("enqueue embed job", "document_id", id, "error", err)
		} else {
			embedQueued = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chunks":       chunks,
		"count":        len(chunks),
		"embed_queued": embedQueued,
	})
}

func (h *DocumentHandler) GetChunks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	chunks, err := h.chunks.GetChunksForDocument(r.Context(), id)
	if err != nil {
		writeJSON(w, errStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chunks": chunks, "count": len(chunks)})
}

// errStatus maps the storage error taxonomy onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrReferentialIntegrity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrUniquenessViolation):
		return http.StatusConflict
	case errors.Is(err, store.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
