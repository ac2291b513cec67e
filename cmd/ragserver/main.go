package main

import (
	"context"
	"flag"

	"podcast-rag/pkg/config"
	"podcast-rag/pkg/embedder"
	"podcast-rag/pkg/feed"
	"podcast-rag/pkg/index"
	"podcast-rag/pkg/llm"
	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/rag"
	"podcast-rag/pkg/rerank"
	"podcast-rag/pkg/server"
)

func main() {
	var (
		port = flag.String("port", "", "Listen port (overrides PORT)")
	)
	flag.Parse()

	log := logger.New()
	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	if err := cfg.RequireOpenAI(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	idx := index.NewPostgresIndex(index.PostgresConfig{
		DSN:       cfg.DatabaseDSN,
		Table:     cfg.IndexName,
		Dimension: cfg.EmbeddingDimension,
	})
	if err := idx.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to vector index: %v", err)
	}
	defer idx.Close()

	emb := embedder.NewOpenAI(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	if emb.Dimension() != idx.Dimension() {
		log.Fatalf("Embedding dimension %d does not match index dimension %d",
			emb.Dimension(), idx.Dimension())
	}

	var reranker rerank.Reranker
	if cfg.CohereAPIKey != "" {
		reranker = rerank.NewCohere(cfg.CohereAPIKey)
	} else {
		log.Warn("COHERE_API_KEY not set, reranking disabled")
	}

	generator := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.ChatModel)
	engine := rag.New(emb, idx, reranker, generator, log)
	catalog := feed.NewCatalog(cfg.FeedURL, log)

	key, err := server.LoadPublicKey(cfg.PublicKeyPath, log)
	if err != nil {
		log.Fatalf("Failed to load public key: %v", err)
	}

	router := server.New(engine, catalog, log).Router(key)
	log.WithField("port", cfg.Port).Info("query server listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
