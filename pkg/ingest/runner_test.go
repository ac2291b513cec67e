package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-rag/pkg/domain"
	"podcast-rag/pkg/logger"
)

type staticCatalog struct {
	episodes []domain.Episode
}

func (s *staticCatalog) Fetch() []domain.Episode { return s.episodes }

type fakeFetcher struct {
	failOn string
	titles []string
}

func (f *fakeFetcher) Fetch(title, _ string) (string, error) {
	if title == f.failOn {
		return "", errors.New("download failed")
	}
	f.titles = append(f.titles, title)
	return "/tmp/" + title + ".mp3", nil
}

type fakeTranscriber struct {
	failOn  string
	emptyOn string
	paths   []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	if f.failOn != "" && path == "/tmp/"+f.failOn+".mp3" {
		return "", errors.New("transcription failed")
	}
	if f.emptyOn != "" && path == "/tmp/"+f.emptyOn+".mp3" {
		return "   ", nil
	}
	return "transcript of " + path, nil
}

type fakeArchive struct {
	processed map[string]bool
	appended  []domain.TranscriptRecord
}

func (f *fakeArchive) ProcessedTitles() map[string]bool { return f.processed }

func (f *fakeArchive) Append(record domain.TranscriptRecord) error {
	f.appended = append(f.appended, record)
	return nil
}

func episode(title string, published time.Time) domain.Episode {
	return domain.Episode{
		Title:       title,
		PublishDate: published,
		AudioURL:    "https://cdn.example.com/" + title + ".mp3",
	}
}

func TestRunProcessesNewestFirstUpToCap(t *testing.T) {
	catalog := &staticCatalog{episodes: []domain.Episode{
		episode("Old", time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)),
		episode("Newest", time.Date(2025, 7, 8, 7, 0, 0, 0, time.UTC)),
		episode("Newer", time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)),
	}}
	fetcher := &fakeFetcher{}
	archive := &fakeArchive{}
	runner := NewRunner(catalog, fetcher, &fakeTranscriber{}, archive, 2, logger.New())

	archived := runner.Run(context.Background())
	assert.Equal(t, 2, archived)

	// The cap keeps the two most recent; "Old" waits for a later run.
	assert.Equal(t, []string{"Newest", "Newer"}, fetcher.titles)

	require.Len(t, archive.appended, 2)
	assert.Equal(t, "Newest", archive.appended[0].Title)
	assert.Equal(t, "2025-07-08T07:00:00", archive.appended[0].Date)
	assert.Equal(t, "https://cdn.example.com/Newest.mp3", archive.appended[0].AudioURL)
	assert.NotEmpty(t, archive.appended[0].Transcription)
}

func TestRunSkipsAlreadyProcessed(t *testing.T) {
	catalog := &staticCatalog{episodes: []domain.Episode{
		episode("Done", time.Date(2025, 7, 8, 7, 0, 0, 0, time.UTC)),
		episode("Pending", time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)),
	}}
	archive := &fakeArchive{processed: map[string]bool{"Done": true}}
	fetcher := &fakeFetcher{}
	runner := NewRunner(catalog, fetcher, &fakeTranscriber{}, archive, 4, logger.New())

	assert.Equal(t, 1, runner.Run(context.Background()))
	assert.Equal(t, []string{"Pending"}, fetcher.titles)
}

func TestRunSecondPassIsIdempotent(t *testing.T) {
	catalog := &staticCatalog{episodes: []domain.Episode{
		episode("A", time.Date(2025, 7, 8, 7, 0, 0, 0, time.UTC)),
		episode("B", time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)),
	}}
	archive := &fakeArchive{processed: map[string]bool{}}
	runner := NewRunner(catalog, &fakeFetcher{}, &fakeTranscriber{}, archive, 4, logger.New())

	assert.Equal(t, 2, runner.Run(context.Background()))
	for _, rec := range archive.appended {
		archive.processed[rec.Title] = true
	}

	// Unchanged feed, second pass: nothing new.
	assert.Equal(t, 0, runner.Run(context.Background()))
	assert.Len(t, archive.appended, 2)
}

func TestRunFailuresDoNotStopTheBatch(t *testing.T) {
	catalog := &staticCatalog{episodes: []domain.Episode{
		episode("DownloadFails", time.Date(2025, 7, 8, 7, 0, 0, 0, time.UTC)),
		episode("TranscribeFails", time.Date(2025, 7, 7, 7, 0, 0, 0, time.UTC)),
		episode("Works", time.Date(2025, 7, 6, 7, 0, 0, 0, time.UTC)),
	}}
	archive := &fakeArchive{}
	runner := NewRunner(catalog,
		&fakeFetcher{failOn: "DownloadFails"},
		&fakeTranscriber{failOn: "TranscribeFails"},
		archive, 4, logger.New())

	assert.Equal(t, 1, runner.Run(context.Background()))
	require.Len(t, archive.appended, 1)
	assert.Equal(t, "Works", archive.appended[0].Title)
}

func TestRunEmptyTranscriptNotArchived(t *testing.T) {
	catalog := &staticCatalog{episodes: []domain.Episode{
		episode("Silent", time.Date(2025, 7, 8, 7, 0, 0, 0, time.UTC)),
	}}
	archive := &fakeArchive{}
	runner := NewRunner(catalog, &fakeFetcher{}, &fakeTranscriber{emptyOn: "Silent"}, archive, 4, logger.New())

	// Not an error, but nothing is archived either, so the episode is
	// reconsidered on the next run.
	assert.Equal(t, 0, runner.Run(context.Background()))
	assert.Empty(t, archive.appended)
}
