package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/promo/internal/audio"
)

// WhisperTranscriber timestamps speech with the OpenAI transcription endpoint.
type WhisperTranscriber struct {
	client openai.Client
	model  string
	opts   Options
}

// verbose_json body, only the fields we read
type transcript struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

var errNoSpeech = errors.New("no speech in transcript")

func NewWhisperTranscriber(apiKey string, opts Options) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	w := &WhisperTranscriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  opts.Model,
		opts:   opts,
	}
	if w.model == "" {
		w.model = string(openai.AudioModelWhisper1)
	}
	return w, nil
}

func (w *WhisperTranscriber) request(f *os.File) openai.AudioTranscriptionNewParams {
	req := openai.AudioTranscriptionNewParams{
		File:                   f,
		Model:                  openai.AudioModel(w.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if lang := w.opts.Language; lang != "" {
		req.Language = openai.String(lang)
	}
	if hint := w.opts.Prompt; hint != "" {
		req.Prompt = openai.String(hint)
	}
	return req
}

// Transcribe uploads the whole file in one request; a voiceover is far
// below the endpoint's size limit.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", audioPath, err)
	}
	defer f.Close()

	probed, _ := audio.GetDuration(ctx, audioPath)

	resp, err := w.client.Audio.Transcriptions.New(ctx, w.request(f))
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	segments, err := decodeTranscript(resp.RawJSON(), probed)
	if err != nil {
		// raw body unusable, the typed text still covers the whole file
		text := strings.TrimSpace(resp.Text)
		if errors.Is(err, errNoSpeech) || text == "" || probed <= 0 {
			return nil, err
		}
		segments = []Segment{{EndTime: probed, Text: text}}
	}

	return &Result{Segments: segments, Language: w.opts.Language, Duration: probed}, nil
}

// decodeTranscript turns a verbose_json body into segments. Without
// segment timestamps the text spans [0, duration), taking the body's
// duration over probed when present.
func decodeTranscript(body string, probed time.Duration) ([]Segment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("empty transcription body")
	}

	var tr transcript
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}

	if len(tr.Segments) == 0 {
		text := strings.TrimSpace(tr.Text)
		if text == "" {
			return nil, errNoSpeech
		}
		end := probed
		if tr.Duration > 0 {
			end = seconds(tr.Duration)
		}
		return []Segment{{EndTime: end, Text: text}}, nil
	}

	out := make([]Segment, 0, len(tr.Segments))
	for _, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" || s.End <= s.Start {
			continue
		}
		out = append(out, Segment{StartTime: seconds(s.Start), EndTime: seconds(s.End), Text: text})
	}
	if len(out) == 0 {
		return nil, errNoSpeech
	}
	return out, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
