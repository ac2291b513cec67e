package main

import (
	"context"
	"flag"

	"podcast-rag/pkg/chunker"
	"podcast-rag/pkg/config"
	"podcast-rag/pkg/embedder"
	"podcast-rag/pkg/index"
	"podcast-rag/pkg/indexer"
	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/store"
)

func main() {
	var (
		skipOnDedupError = flag.Bool("skip-on-dedup-error", false,
			"Skip an episode when the already-indexed check fails instead of reindexing it")
	)
	flag.Parse()

	log := logger.New()
	cfg := config.Load()

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

	chk, err := chunker.New()
	if err != nil {
		log.Fatalf("Failed to build chunker: %v", err)
	}

	policy := indexer.ReprocessOnError
	if *skipOnDedupError {
		policy = indexer.SkipOnError
	}

	records := store.New(cfg.TranscriptsPath, log).Load()
	if len(records) == 0 {
		log.Info("no transcripts to index")
		return
	}

	indexer.New(chk, emb, idx, policy, log).IndexAll(ctx, records)
}
