package transcribe

import (
	"context"
	"fmt"
	"time"
)

// timed span of recognized speech
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// transcription result
type Result struct {
	Segments []Segment
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
)

// transcription options
type Options struct {
	Language string // ISO-639-1 language of the audio
	Model    string
	Prompt   string // vocabulary hint, e.g. product names
}

// creates transcriber based on provider
func Factory(
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderOpenAI:
		t, err := NewWhisperTranscriber(apiKey, opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
