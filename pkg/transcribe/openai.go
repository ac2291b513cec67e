package transcribe

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Whisper is the OpenAI-backed SpeechToText implementation.
type Whisper struct {
	client openai.Client
	model  string
}

var _ SpeechToText = (*Whisper)(nil)

// NewWhisper creates a client for the given transcription model.
func NewWhisper(apiKey, model string) *Whisper {
	return &Whisper{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Transcribe uploads the audio file and returns its text.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, prompt string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", audioPath, err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(w.model),
		File:  f,
	}
	if prompt != "" {
		params.Prompt = openai.String(prompt)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	return resp.Text, nil
}
