package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/trungnd/chunkstore/internal/config"
	"github.com/trungnd/chunkstore/internal/database"
	"github.com/trungnd/chunkstore/internal/embedding"
	"github.com/trungnd/chunkstore/internal/queue"
	"github.com/trungnd/chunkstore/internal/queue/workers"
	"github.com/trungnd/chunkstore/internal/store"
	"github.com/trungnd/chunkstore/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	chunkStore := store.NewChunkStore(db)
	vs := vectorstore.NewPgVectorStore(db, cfg.Vector)
	embedder := embedding.NewService(cfg.Embedder)

	registry := queue.NewHandlersRegistry()
	embedWorker := workers.NewEmbedWorker(chunkStore, vs, embedder)
	registry.Register(queue.TypeEmbedDocument, asynq.HandlerFunc(embedWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
