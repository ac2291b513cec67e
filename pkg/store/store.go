package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"podcast-rag/pkg/domain"
	"podcast-rag/pkg/logger"
)

// Store is the transcript archive: a single JSON file holding an array of
// records, one per processed episode. Records are only ever appended.
type Store struct {
	path string
	log  *logger.Logger
}

// New creates a store backed by the JSON file at path.
func New(path string, log *logger.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads all records. A missing file means an empty archive; an
// unreadable or corrupt file is treated the same way so a damaged archive
// never blocks ingestion, it only loses the dedup history.
func (s *Store) Load() []domain.TranscriptRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("could not read transcript archive, starting empty")
		}
		return nil
	}

	var records []domain.TranscriptRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.WithError(err).Warn("transcript archive is corrupt, starting empty")
		return nil
	}
	return records
}

// ProcessedTitles returns the set of episode titles already in the archive.
func (s *Store) ProcessedTitles() map[string]bool {
	titles := make(map[string]bool)
	for _, r := range s.Load() {
		titles[r.Title] = true
	}
	return titles
}

// Append adds a record to the archive with a read-modify-write: the whole
// array is reloaded, extended, and written to a temp file which then replaces
// the archive, so a crash mid-write never leaves a truncated file.
func (s *Store) Append(record domain.TranscriptRecord) error {
	records := append(s.Load(), record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript archive: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write transcript archive: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace transcript archive: %w", err)
	}

	s.log.WithField("title", record.Title).
		WithField("total", len(records)).
		Info("transcript archived")
	return nil
}
