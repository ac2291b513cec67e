package main

import (
	"context"
	"flag"

	"podcast-rag/pkg/audio"
	"podcast-rag/pkg/config"
	"podcast-rag/pkg/feed"
	"podcast-rag/pkg/ingest"
	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/store"
	"podcast-rag/pkg/transcribe"
)

func main() {
	var (
		feedURL = flag.String("feed", "", "Feed URL (overrides FEED_URL)")
		perRun  = flag.Int("max", 0, "Max new episodes to process this run (overrides EPISODES_PER_RUN)")
	)
	flag.Parse()

	log := logger.New()
	cfg := config.Load()
	if *feedURL != "" {
		cfg.FeedURL = *feedURL
	}
	if *perRun > 0 {
		cfg.EpisodesPerRun = *perRun
	}

	if err := cfg.RequireOpenAI(); err != nil {
		log.Fatal(err)
	}

	catalog := feed.NewCatalog(cfg.FeedURL, log)
	fetcher := audio.NewFetcher(cfg.AudioDir, log)
	whisper := transcribe.NewWhisper(cfg.OpenAIAPIKey, cfg.TranscriptionModel)
	transcriber := transcribe.NewService(whisper, audio.FFmpegSegmenter{}, cfg.SizeLimitBytes, cfg.SegmentDuration, log)
	archive := store.New(cfg.TranscriptsPath, log)

	runner := ingest.NewRunner(catalog, fetcher, transcriber, archive, cfg.EpisodesPerRun, log)
	runner.Run(context.Background())
}
