package narration

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Synthesizer using the OpenAI Audio Speech API
type OpenAISynthesizer struct {
	client  openai.Client
	model   string
	voice   string
	options Options
}

func NewOpenAISynthesizer(apiKey string, opts Options) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = string(openai.SpeechModelGPT4oMiniTTS)
	}
	voice := opts.Voice
	if voice == "" {
		voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}

	return &OpenAISynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		options: opts,
	}, nil
}

func (s *OpenAISynthesizer) params(text string) openai.AudioSpeechNewParams {
	params := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if s.options.Speed > 0 {
		params.Speed = openai.Float(s.options.Speed)
	}
	if s.options.Instructions != "" {
		params.Instructions = openai.String(s.options.Instructions)
	}
	return params
}

// writes MP3 audio for text
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	resp, err := s.client.Audio.Speech.New(ctx, s.params(text))
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("empty audio response")
	}
	return nil
}
