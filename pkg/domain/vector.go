package domain

// Chunk is a semantically coherent passage cut from a transcript. Chunks are
// ephemeral; only the vector derived from one is persisted.
type Chunk struct {
	Text         string
	EpisodeTitle string
	EpisodeDate  string
}

// VectorMetadata is the payload stored alongside each embedding in the index.
type VectorMetadata struct {
	EpisodeTitle string `json:"episode_title"`
	EpisodeDate  string `json:"episode_date"`
	ChunkText    string `json:"chunk_text"`
}

// VectorRecord is an embedding plus metadata as written to the vector index.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Metadata  VectorMetadata
}
