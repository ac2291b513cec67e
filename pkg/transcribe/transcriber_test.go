package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-rag/pkg/logger"
)

type fakeSTT struct {
	prompts []string
	texts   []string
	failAt  int // 1-based call number to fail on, 0 = never
	calls   int
}

func (f *fakeSTT) Transcribe(_ context.Context, audioPath, prompt string) (string, error) {
	f.calls++
	if f.failAt != 0 && f.calls == f.failAt {
		return "", errors.New("service unavailable")
	}
	f.prompts = append(f.prompts, prompt)
	if len(f.texts) > 0 {
		return f.texts[(f.calls-1)%len(f.texts)], nil
	}
	return fmt.Sprintf("text for %s", filepath.Base(audioPath)), nil
}

type fakeSegmenter struct {
	duration time.Duration
	extracts int
}

func (f *fakeSegmenter) Probe(string) (time.Duration, error) {
	return f.duration, nil
}

func (f *fakeSegmenter) Extract(_ string, _, _ time.Duration, dst string) error {
	f.extracts++
	return os.WriteFile(dst, []byte("segment"), 0o644)
}

func writeAudio(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestTranscribeDirect(t *testing.T) {
	path := writeAudio(t, 100)
	stt := &fakeSTT{texts: []string{"the whole episode"}}
	seg := &fakeSegmenter{}

	svc := NewService(stt, seg, 1024, 10*time.Minute, logger.New())
	got, err := svc.Transcribe(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "the whole episode", got)
	assert.Equal(t, []string{""}, stt.prompts)
	assert.Zero(t, seg.extracts, "small files must not be segmented")
}

func TestTranscribeChunked(t *testing.T) {
	path := writeAudio(t, 2048)
	stt := &fakeSTT{texts: []string{"first part", "second part", "third part"}}
	seg := &fakeSegmenter{duration: 25 * time.Minute}

	svc := NewService(stt, seg, 1024, 10*time.Minute, logger.New())
	got, err := svc.Transcribe(context.Background(), path)
	require.NoError(t, err)

	// 25 minutes at 10-minute segments: three slices, joined with spaces.
	assert.Equal(t, "first part second part third part", got)
	assert.Equal(t, 3, seg.extracts)

	// Each segment is seeded with the previous one's text.
	assert.Equal(t, []string{"", "first part", "second part"}, stt.prompts)

	// Scratch segment files are gone.
	for i := 0; i < 3; i++ {
		chunk := filepath.Join(filepath.Dir(path), fmt.Sprintf("episode_chunk_%d.mp3", i))
		_, err := os.Stat(chunk)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", chunk)
	}
}

func TestTranscribeChunkedFailureCleansUp(t *testing.T) {
	path := writeAudio(t, 2048)
	stt := &fakeSTT{failAt: 2}
	seg := &fakeSegmenter{duration: 25 * time.Minute}

	svc := NewService(stt, seg, 1024, 10*time.Minute, logger.New())
	_, err := svc.Transcribe(context.Background(), path)
	require.Error(t, err)

	// No segment file survives a failed episode either.
	matches, globErr := filepath.Glob(filepath.Join(filepath.Dir(path), "episode_chunk_*.mp3"))
	require.NoError(t, globErr)
	assert.Empty(t, matches)
}

func TestTranscribeMissingFile(t *testing.T) {
	svc := NewService(&fakeSTT{}, &fakeSegmenter{}, 1024, 10*time.Minute, logger.New())
	_, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}
