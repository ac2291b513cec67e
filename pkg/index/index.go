package index

import (
	"context"

	"podcast-rag/pkg/domain"
)

// Match is one retrieval result: a stored vector's metadata plus its
// similarity score (higher is more similar).
type Match struct {
	ID       string
	Score    float64
	Metadata domain.VectorMetadata
}

// Index is the vector store the pipeline writes to and the retrieval engine
// reads from.
type Index interface {
	// Query returns the limit nearest vectors to the given one. A non-empty
	// episodeTitle restricts matches to that episode's vectors.
	Query(ctx context.Context, vector []float32, episodeTitle string, limit int) ([]Match, error)

	// Upsert writes the records, replacing any with the same id.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// Dimension is the vector width the index was created with.
	Dimension() int
}
