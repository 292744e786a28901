package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/trungnd/chunkstore/internal/embedding"
	"github.com/trungnd/chunkstore/internal/queue"
	"github.com/trungnd/chunkstore/internal/store"
	"github.com/trungnd/chunkstore/internal/vectorstore"
)

// EmbedWorker embeds every chunk of a document and writes the vectors through
// the embedding-upsert contract. A failed run leaves prior embeddings intact;
// asynq retries the whole task.
type EmbedWorker struct {
	chunks   *store.ChunkStore
	vectors  vectorstore.VectorStore
	embedder *embedding.Service
}

func NewEmbedWorker(chunks *store.ChunkStore, vectors vectorstore.VectorStore, embedder *embedding.Service) *EmbedWorker {
	return &EmbedWorker{
		chunks:   chunks,
		vectors:  vectors,
		embedder: embedder,
	}
}

func (w *EmbedWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.EmbedDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	chunks, err := w.chunks.GetChunksForDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("load chunks for %s: %w", docID, err)
	}
	if len(chunks) == 0 {
		slog.Info("no chunks to embed", "document_id", docID)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := w.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks for %s: %w", len(chunks), docID, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i, c := range chunks {
		if err := w.vectors.UpsertEmbedding(ctx, c.ID, vectors[i]); err != nil {
			return fmt.Errorf("upsert embedding for chunk %d: %w", c.Ord, err)
		}
	}

	slog.Info("embedded document", "document_id", docID, "chunks", len(chunks))
	return nil
}
