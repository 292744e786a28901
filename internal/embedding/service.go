package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/trungnd/chunkstore/internal/config"
)

// Service turns chunk text into vectors via the OpenAI embeddings API. It is
// the only component that talks to an embedding model; the storage core never
// computes embeddings itself.
type Service struct {
	client *openai.Client
	model  string
}

func NewService(cfg config.EmbedderConfig) *Service {
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Service{
		client: openai.NewClient(cfg.OpenAIKey),
		model:  model,
	}
}

// Embed generates one vector per input text, batching requests in groups of
// 100 to stay within API limits.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const batchSize = 100
	var allEmbeddings [][]float32

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(s.model),
			Input: texts[i:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}

		for _, d := range resp.Data {
			allEmbeddings = append(allEmbeddings, d.Embedding)
		}
	}

	return allEmbeddings, nil
}

func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}
