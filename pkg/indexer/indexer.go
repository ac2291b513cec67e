package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"podcast-rag/pkg/domain"
	"podcast-rag/pkg/embedder"
	"podcast-rag/pkg/index"
	"podcast-rag/pkg/logger"
)

// Chunker splits a transcript into passages tagged with their episode.
type Chunker interface {
	Chunk(transcript, episodeTitle, episodeDate string) []domain.Chunk
}

// DedupPolicy decides what happens when the already-indexed check itself
// fails. Neither choice is free: reprocessing risks duplicate vectors,
// skipping risks losing an episode.
type DedupPolicy int

const (
	// ReprocessOnError indexes the episode anyway when the check fails.
	ReprocessOnError DedupPolicy = iota

	// SkipOnError leaves the episode out when the check fails.
	SkipOnError
)

// upsertBatchSize is how many vectors go into one index write.
const upsertBatchSize = 100

// Indexer turns archived transcripts into vectors in the index. Episodes
// whose title already has at least one vector are skipped.
type Indexer struct {
	chunker  Chunker
	embedder embedder.Embedder
	index    index.Index
	policy   DedupPolicy
	log      *logger.Logger
}

// New builds an indexer with the given dedup policy.
func New(c Chunker, e embedder.Embedder, ix index.Index, policy DedupPolicy, log *logger.Logger) *Indexer {
	return &Indexer{
		chunker:  c,
		embedder: e,
		index:    ix,
		policy:   policy,
		log:      log,
	}
}

// AlreadyIndexed reports whether the episode has at least one vector in the
// index. The title-filtered query uses a zero vector because only existence
// matters, not similarity.
func (ix *Indexer) AlreadyIndexed(ctx context.Context, title string) (bool, error) {
	zero := make([]float32, ix.index.Dimension())
	matches, err := ix.index.Query(ctx, zero, title, 1)
	if err != nil {
		return false, fmt.Errorf("check index for %q: %w", title, err)
	}
	return len(matches) > 0, nil
}

// IndexAll processes every record in order. A failing episode is logged and
// skipped; it does not stop the rest of the batch.
func (ix *Indexer) IndexAll(ctx context.Context, records []domain.TranscriptRecord) {
	for _, record := range records {
		if err := ix.IndexEpisode(ctx, record); err != nil {
			ix.log.WithError(err).WithField("title", record.Title).Warn("skipping episode")
		}
	}
}

// IndexEpisode chunks, embeds, and upserts one episode's transcript.
func (ix *Indexer) IndexEpisode(ctx context.Context, record domain.TranscriptRecord) error {
	if strings.TrimSpace(record.Transcription) == "" {
		ix.log.WithField("title", record.Title).Info("empty transcript, nothing to index")
		return nil
	}

	exists, err := ix.AlreadyIndexed(ctx, record.Title)
	if err != nil {
		switch ix.policy {
		case SkipOnError:
			ix.log.WithError(err).WithField("title", record.Title).
				Warn("dedup check failed, skipping episode")
			return nil
		default:
			ix.log.WithError(err).WithField("title", record.Title).
				Warn("dedup check failed, indexing anyway")
		}
	} else if exists {
		ix.log.WithField("title", record.Title).Info("episode already indexed")
		return nil
	}

	chunks := ix.chunker.Chunk(record.Transcription, record.Title, record.Date)
	if len(chunks) == 0 {
		ix.log.WithField("title", record.Title).Info("transcript produced no chunks")
		return nil
	}

	// A chunk that fails to embed drops out alone; the rest of the episode
	// still goes in.
	vectors := make([]domain.VectorRecord, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := ix.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			ix.log.WithError(err).
				WithField("title", record.Title).
				WithField("chunk", i).
				Warn("embedding failed, dropping chunk")
			continue
		}
		vectors = append(vectors, domain.VectorRecord{
			ID:        uuid.New().String(),
			Embedding: embedding,
			Metadata: domain.VectorMetadata{
				EpisodeTitle: chunk.EpisodeTitle,
				EpisodeDate:  chunk.EpisodeDate,
				ChunkText:    chunk.Text,
			},
		})
	}

	for start := 0; start < len(vectors); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		if err := ix.index.Upsert(ctx, vectors[start:end]); err != nil {
			return fmt.Errorf("upsert batch starting at %d: %w", start, err)
		}
	}

	ix.log.WithField("title", record.Title).
		WithField("vectors", len(vectors)).
		Info("episode indexed")
	return nil
}
