package audio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Segmenter probes audio duration and extracts time-bounded slices. The
// transcriber depends on this interface so its chunked path can be tested
// without ffmpeg on the machine.
type Segmenter interface {
	// Probe returns the total duration of the audio file.
	Probe(path string) (time.Duration, error)

	// Extract copies [start, start+length) of src into dst without
	// re-encoding. The slice is clipped at end-of-stream.
	Extract(src string, start, length time.Duration, dst string) error
}

// FFmpegSegmenter implements Segmenter with ffprobe/ffmpeg.
type FFmpegSegmenter struct{}

var _ Segmenter = FFmpegSegmenter{}

// Probe reads the container duration from ffprobe's format section.
func (FFmpegSegmenter) Probe(path string) (time.Duration, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("parse probe output for %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// Extract performs a seek+duration stream copy (-ss/-t with acodec copy).
func (FFmpegSegmenter) Extract(src string, start, length time.Duration, dst string) error {
	err := ffmpeg.Input(src, ffmpeg.KwArgs{"ss": start.Seconds()}).
		Output(dst, ffmpeg.KwArgs{"t": length.Seconds(), "acodec": "copy"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("extract segment at %s from %s: %w", start, src, err)
	}
	return nil
}
