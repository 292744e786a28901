package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReplaceChunks_RejectsEmptyText(t *testing.T) {
	s := NewChunkStore(nil)

	// validated before any database access
	_, err := s.ReplaceChunks(context.Background(), uuid.New(), []ChunkInput{
		{Text: "ok"},
		{Text: ""},
	})
	assert.ErrorContains(t, err, "chunk 1")
	assert.ErrorContains(t, err, "non-empty")
}

func TestUpsertDocument_RequiresSourceID(t *testing.T) {
	s := NewDocumentStore(nil)

	_, err := s.UpsertDocument(context.Background(), UpsertDocumentParams{})
	assert.ErrorContains(t, err, "source_id")
}
