package narration

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/mgpai22/promo/internal/audio"
)

// implements Synthesizer using Gemini's native speech output
type GeminiSynthesizer struct {
	client  *genai.Client
	model   string
	voice   string
	options Options
}

func NewGeminiSynthesizer(ctx context.Context, apiKey string, opts Options) (*GeminiSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}
	voice := opts.Voice
	if voice == "" {
		voice = "Kore"
	}

	return &GeminiSynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		options: opts,
	}, nil
}

func (s *GeminiSynthesizer) config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	}
}

func (s *GeminiSynthesizer) prompt(text string) string {
	if s.options.Instructions == "" {
		return text
	}
	return s.options.Instructions + ":\n\n" + text
}

// Gemini returns raw PCM, which is encoded to the output's format with ffmpeg
func (s *GeminiSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(s.prompt(text)), s.config())
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}

	pcm := inlineAudio(result)
	if len(pcm) == 0 {
		return fmt.Errorf("empty audio response")
	}

	rawPath := outputPath + ".pcm"
	if err := os.WriteFile(rawPath, pcm, 0644); err != nil {
		return fmt.Errorf("failed to write pcm: %w", err)
	}
	defer os.Remove(rawPath)

	return audio.PCMToFile(ctx, rawPath, outputPath, audio.DefaultPCMFormat(), audio.DefaultEncodeOptions())
}

// concatenates every inline audio part of the first candidate
func inlineAudio(result *genai.GenerateContentResponse) []byte {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil
	}
	var data []byte
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil {
			data = append(data, part.InlineData.Data...)
		}
	}
	return data
}
