package main

import (
	"context"
	"flag"
	"fmt"

	"podcast-rag/pkg/audio"
	"podcast-rag/pkg/config"
	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/transcribe"
)

// One-off transcription of a single audio URL, useful for testing the
// transcription path without touching the feed or the archive.
func main() {
	var (
		url   = flag.String("url", "", "Audio URL to download and transcribe")
		title = flag.String("title", "adhoc", "Title used for the local audio filename")
	)
	flag.Parse()

	log := logger.New()
	if *url == "" {
		log.Fatal("-url is required")
	}

	cfg := config.Load()
	if err := cfg.RequireOpenAI(); err != nil {
		log.Fatal(err)
	}

	fetcher := audio.NewFetcher(cfg.AudioDir, log)
	path, err := fetcher.Fetch(*title, *url)
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}

	whisper := transcribe.NewWhisper(cfg.OpenAIAPIKey, cfg.TranscriptionModel)
	transcriber := transcribe.NewService(whisper, audio.FFmpegSegmenter{}, cfg.SizeLimitBytes, cfg.SegmentDuration, log)

	transcript, err := transcriber.Transcribe(context.Background(), path)
	if err != nil {
		log.Fatalf("Transcription failed: %v", err)
	}

	fmt.Println(transcript)
}
