package ingest

import (
	"context"
	"sort"
	"strings"

	"podcast-rag/pkg/domain"
	"podcast-rag/pkg/feed"
	"podcast-rag/pkg/logger"
)

// AudioFetcher downloads an episode's audio and returns its local path.
type AudioFetcher interface {
	Fetch(title, url string) (string, error)
}

// Transcriber produces a transcript for a local audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Archive is the transcript store the runner reads dedup state from and
// appends results to.
type Archive interface {
	ProcessedTitles() map[string]bool
	Append(record domain.TranscriptRecord) error
}

// Runner drives one ingestion pass: fetch the feed, keep the episodes not
// yet archived, and process the newest ones up to the per-run cap. Episodes
// are handled strictly one at a time; a failing episode is logged and
// skipped, and the next full run picks it up again since nothing was
// archived for it.
type Runner struct {
	catalog     feed.Fetcher
	fetcher     AudioFetcher
	transcriber Transcriber
	archive     Archive
	perRun      int
	log         *logger.Logger
}

// NewRunner assembles an ingestion runner. perRun caps how many new episodes
// one pass will process.
func NewRunner(catalog feed.Fetcher, fetcher AudioFetcher, transcriber Transcriber, archive Archive, perRun int, log *logger.Logger) *Runner {
	return &Runner{
		catalog:     catalog,
		fetcher:     fetcher,
		transcriber: transcriber,
		archive:     archive,
		perRun:      perRun,
		log:         log,
	}
}

// Run executes one ingestion pass and returns how many episodes were
// archived.
func (r *Runner) Run(ctx context.Context) int {
	episodes := r.catalog.Fetch()
	if len(episodes) == 0 {
		r.log.Info("no episodes in feed")
		return 0
	}

	processed := r.archive.ProcessedTitles()
	pending := make([]domain.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if !processed[ep.Title] {
			pending = append(pending, ep)
		}
	}

	// Newest first: when there is a backlog, recent episodes matter most.
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].PublishDate.After(pending[j].PublishDate)
	})
	if len(pending) > r.perRun {
		pending = pending[:r.perRun]
	}

	r.log.WithField("new", len(pending)).Info("episodes to process")

	archived := 0
	for _, ep := range pending {
		ok, err := r.processEpisode(ctx, ep)
		if err != nil {
			r.log.WithError(err).WithField("title", ep.Title).Warn("episode failed, continuing")
			continue
		}
		if ok {
			archived++
		}
	}

	r.log.WithField("archived", archived).Info("ingestion pass complete")
	return archived
}

// processEpisode reports whether the episode was archived. An empty
// transcript is not an error, but it is not archived either, so the episode
// stays eligible for the next run.
func (r *Runner) processEpisode(ctx context.Context, ep domain.Episode) (bool, error) {
	path, err := r.fetcher.Fetch(ep.Title, ep.AudioURL)
	if err != nil {
		return false, err
	}

	transcript, err := r.transcriber.Transcribe(ctx, path)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(transcript) == "" {
		r.log.WithField("title", ep.Title).Warn("empty transcript, not archiving")
		return false, nil
	}

	err = r.archive.Append(domain.TranscriptRecord{
		Title:         ep.Title,
		Date:          ep.PublishDate.Format("2006-01-02T15:04:05"),
		AudioURL:      ep.AudioURL,
		Transcription: transcript,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
