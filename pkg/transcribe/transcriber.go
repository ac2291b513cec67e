package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podcast-rag/pkg/audio"
	"podcast-rag/pkg/logger"
)

// SpeechToText turns one audio file into text. The prompt seeds the model
// with the tail of the conversation so far; it is empty for the first (or
// only) file.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath, prompt string) (string, error)
}

// Service produces a full transcript for an episode. Files within the
// transcription API's size limit go through in one call; larger files are cut
// into fixed-length segments which are transcribed in order, each seeded with
// the previous segment's text for continuity, and joined back together.
//
// A transcript is all-or-nothing: if any segment fails the whole episode
// fails and no partial text is returned.
type Service struct {
	stt       SpeechToText
	segmenter audio.Segmenter
	sizeLimit int64
	segment   time.Duration
	log       *logger.Logger
}

// NewService builds a transcription service. sizeLimit is the single-request
// byte ceiling; segment is the slice length used above it.
func NewService(stt SpeechToText, segmenter audio.Segmenter, sizeLimit int64, segment time.Duration, log *logger.Logger) *Service {
	return &Service{
		stt:       stt,
		segmenter: segmenter,
		sizeLimit: sizeLimit,
		segment:   segment,
		log:       log,
	}
}

// Transcribe returns the transcript of the audio file at path.
func (s *Service) Transcribe(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Size() < s.sizeLimit {
		s.log.WithField("path", path).Info("transcribing in one call")
		return s.stt.Transcribe(ctx, path, "")
	}

	s.log.WithField("path", path).
		WithField("bytes", info.Size()).
		Info("file exceeds size limit, transcribing in segments")
	return s.transcribeChunked(ctx, path)
}

func (s *Service) transcribeChunked(ctx context.Context, path string) (string, error) {
	total, err := s.segmenter.Probe(path)
	if err != nil {
		return "", err
	}

	segments := int(total/s.segment) + 1
	base := strings.TrimSuffix(path, filepath.Ext(path))

	// Segment files are scratch space; remove whatever was created whether
	// the episode succeeds or not.
	temps := make([]string, 0, segments)
	defer func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}()

	parts := make([]string, 0, segments)
	prompt := ""
	for i := 0; i < segments; i++ {
		dst := fmt.Sprintf("%s_chunk_%d.mp3", base, i)
		temps = append(temps, dst)

		if err := s.segmenter.Extract(path, time.Duration(i)*s.segment, s.segment, dst); err != nil {
			return "", err
		}

		s.log.WithField("segment", i+1).WithField("of", segments).Info("transcribing segment")
		text, err := s.stt.Transcribe(ctx, dst, prompt)
		if err != nil {
			return "", fmt.Errorf("transcribe segment %d of %s: %w", i, path, err)
		}

		parts = append(parts, text)
		prompt = text
	}

	return strings.Join(parts, " "), nil
}
