package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-rag/pkg/domain"
	"podcast-rag/pkg/index"
	"podcast-rag/pkg/logger"
)

type sentenceChunker struct{}

func (sentenceChunker) Chunk(transcript, title, date string) []domain.Chunk {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}
	var chunks []domain.Chunk
	for _, s := range strings.Split(transcript, ". ") {
		chunks = append(chunks, domain.Chunk{Text: s, EpisodeTitle: title, EpisodeDate: date})
	}
	return chunks
}

type fakeEmbedder struct {
	failOn string
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("rate limited")
	}
	return []float32{1, 2, 3}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

type fakeIndex struct {
	existing    map[string]bool
	queryErr    error
	upsertErr   error
	upserts     [][]domain.VectorRecord
	queryTitles []string
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, title string, _ int) ([]index.Match, error) {
	f.queryTitles = append(f.queryTitles, title)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.existing[title] {
		return []index.Match{{ID: "existing"}}, nil
	}
	return nil, nil
}

func (f *fakeIndex) Upsert(_ context.Context, records []domain.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, records)
	return nil
}

func (f *fakeIndex) Dimension() int { return 3 }

func record(title, text string) domain.TranscriptRecord {
	return domain.TranscriptRecord{Title: title, Date: "2025-07-08T07:00:00", Transcription: text}
}

func TestIndexEpisode(t *testing.T) {
	ix := &fakeIndex{}
	emb := &fakeEmbedder{}
	idx := New(sentenceChunker{}, emb, ix, ReprocessOnError, logger.New())

	err := idx.IndexEpisode(context.Background(), record("Episode 42", "First thought. Second thought. Third"))
	require.NoError(t, err)

	require.Len(t, ix.upserts, 1)
	vectors := ix.upserts[0]
	require.Len(t, vectors, 3)
	assert.Equal(t, "Episode 42", vectors[0].Metadata.EpisodeTitle)
	assert.Equal(t, "2025-07-08T07:00:00", vectors[0].Metadata.EpisodeDate)
	assert.NotEmpty(t, vectors[0].ID)
	assert.NotEqual(t, vectors[0].ID, vectors[1].ID)
}

func TestIndexEpisodeAlreadyIndexed(t *testing.T) {
	ix := &fakeIndex{existing: map[string]bool{"Episode 42": true}}
	emb := &fakeEmbedder{}
	idx := New(sentenceChunker{}, emb, ix, ReprocessOnError, logger.New())

	err := idx.IndexEpisode(context.Background(), record("Episode 42", "Anything at all"))
	require.NoError(t, err)

	assert.Zero(t, emb.calls)
	assert.Empty(t, ix.upserts)
	assert.Equal(t, []string{"Episode 42"}, ix.queryTitles)
}

func TestIndexEpisodeEmptyTranscript(t *testing.T) {
	ix := &fakeIndex{}
	idx := New(sentenceChunker{}, &fakeEmbedder{}, ix, ReprocessOnError, logger.New())

	require.NoError(t, idx.IndexEpisode(context.Background(), record("Episode 42", "   \n")))

	// Not even the dedup check runs for an empty transcript.
	assert.Empty(t, ix.queryTitles)
	assert.Empty(t, ix.upserts)
}

func TestIndexEpisodeChunkFailureIsIsolated(t *testing.T) {
	ix := &fakeIndex{}
	emb := &fakeEmbedder{failOn: "Second"}
	idx := New(sentenceChunker{}, emb, ix, ReprocessOnError, logger.New())

	err := idx.IndexEpisode(context.Background(), record("Episode 42", "First thought. Second thought. Third"))
	require.NoError(t, err)

	require.Len(t, ix.upserts, 1)
	require.Len(t, ix.upserts[0], 2)
	assert.Equal(t, "First thought", ix.upserts[0][0].Metadata.ChunkText)
	assert.Equal(t, "Third", ix.upserts[0][1].Metadata.ChunkText)
}

func TestDedupPolicyOnCheckError(t *testing.T) {
	// Default policy: a failed check does not block indexing.
	ix := &fakeIndex{queryErr: errors.New("index unavailable")}
	idx := New(sentenceChunker{}, &fakeEmbedder{}, ix, ReprocessOnError, logger.New())
	require.NoError(t, idx.IndexEpisode(context.Background(), record("Episode 42", "Some text")))
	assert.Len(t, ix.upserts, 1)

	// SkipOnError: a failed check drops the episode for this run.
	ix = &fakeIndex{queryErr: errors.New("index unavailable")}
	idx = New(sentenceChunker{}, &fakeEmbedder{}, ix, SkipOnError, logger.New())
	require.NoError(t, idx.IndexEpisode(context.Background(), record("Episode 42", "Some text")))
	assert.Empty(t, ix.upserts)
}

func TestIndexEpisodeBatchesUpserts(t *testing.T) {
	sentences := make([]string, 230)
	for i := range sentences {
		sentences[i] = "Sentence"
	}
	transcript := strings.Join(sentences, ". ")

	ix := &fakeIndex{}
	idx := New(sentenceChunker{}, &fakeEmbedder{}, ix, ReprocessOnError, logger.New())
	require.NoError(t, idx.IndexEpisode(context.Background(), record("Episode 42", transcript)))

	require.Len(t, ix.upserts, 3)
	assert.Len(t, ix.upserts[0], 100)
	assert.Len(t, ix.upserts[1], 100)
	assert.Len(t, ix.upserts[2], 30)
}

func TestIndexAllSkipsFailingEpisode(t *testing.T) {
	ix := &fakeIndex{upsertErr: errors.New("write failed")}
	idx := New(sentenceChunker{}, &fakeEmbedder{}, ix, ReprocessOnError, logger.New())

	// Must not panic or abort; both episodes are attempted.
	idx.IndexAll(context.Background(), []domain.TranscriptRecord{
		record("Episode 41", "Some text"),
		record("Episode 42", "More text"),
	})
	assert.Equal(t, []string{"Episode 41", "Episode 42"}, ix.queryTitles)
}
