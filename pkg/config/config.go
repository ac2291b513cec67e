package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every environment-derived setting. It is built once in each
// command's main and passed down explicitly; nothing in the pipeline reads the
// environment after this point.
type Config struct {
	// Feed and local storage.
	FeedURL         string
	AudioDir        string
	TranscriptsPath string

	// Ingestion limits.
	EpisodesPerRun  int
	SegmentDuration time.Duration
	SizeLimitBytes  int64

	// Models.
	TranscriptionModel string
	EmbeddingModel     string
	EmbeddingDimension int
	ChatModel          string

	// Vector index (a Postgres table with a pgvector column).
	DatabaseDSN string
	IndexName   string

	// Credentials.
	OpenAIAPIKey string
	CohereAPIKey string

	// Query server.
	Port          string
	PublicKeyPath string
}

// Defaults mirror the deployed constants.
const (
	defaultFeedURL         = "https://feedpress.me/rdvtech"
	defaultAudioDir        = "data/audio"
	defaultTranscriptsPath = "data/transcriptions.json"
	defaultIndexName       = "notpatrick"
	defaultEpisodesPerRun  = 4
	defaultSegmentMinutes  = 10
	defaultSizeLimitBytes  = 25 * 1024 * 1024 // transcription service hard limit
	defaultSTTModel        = "whisper-1"
	defaultEmbeddingModel  = "text-embedding-3-large"
	defaultEmbeddingDim    = 3072
	defaultChatModel       = "gpt-4o"
)

// Load reads .env (if present) and assembles the configuration.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		FeedURL:            envOr("FEED_URL", defaultFeedURL),
		AudioDir:           envOr("AUDIO_DIR", defaultAudioDir),
		TranscriptsPath:    envOr("TRANSCRIPTIONS_PATH", defaultTranscriptsPath),
		EpisodesPerRun:     envOrInt("EPISODES_PER_RUN", defaultEpisodesPerRun),
		SegmentDuration:    time.Duration(envOrInt("SEGMENT_MINUTES", defaultSegmentMinutes)) * time.Minute,
		SizeLimitBytes:     defaultSizeLimitBytes,
		TranscriptionModel: envOr("TRANSCRIPTION_MODEL", defaultSTTModel),
		EmbeddingModel:     envOr("EMBEDDING_MODEL", defaultEmbeddingModel),
		EmbeddingDimension: envOrInt("EMBEDDING_DIMENSION", defaultEmbeddingDim),
		ChatModel:          envOr("CHAT_MODEL", defaultChatModel),
		DatabaseDSN:        os.Getenv("DATABASE_DSN"),
		IndexName:          envOr("INDEX_NAME", defaultIndexName),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		CohereAPIKey:       os.Getenv("COHERE_API_KEY"),
		Port:               envOr("PORT", "8000"),
		PublicKeyPath:      envOr("PUBLIC_KEY_PATH", "public_key.pem"),
	}
}

// RequireOpenAI fails when the OpenAI credential is absent. Missing
// credentials are configuration errors and abort the run.
func (c *Config) RequireOpenAI() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

// RequireDatabase fails when the vector index DSN is absent.
func (c *Config) RequireDatabase() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN environment variable not set")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
