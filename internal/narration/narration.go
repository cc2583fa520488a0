package narration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/promo/internal/logging"
)

// speech synthesis provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none"
)

// environment variable holding the provider's API key
func (p Provider) KeyEnv() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// synthesis options
type Options struct {
	Model string
	Voice string
	Speed float64
	// delivery hint for models that accept one
	Instructions string
}

// converts text to an audio file at outputPath
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// ErrNoProvider is returned by Factory for ProviderNone.
var ErrNoProvider = errors.New("narration disabled")

// creates synthesizer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Synthesizer, error) {
	var (
		synth Synthesizer
		err   error
	)
	switch provider {
	case ProviderOpenAI:
		synth, err = NewOpenAISynthesizer(apiKey, opts)
	case ProviderGemini:
		synth, err = NewGeminiSynthesizer(ctx, apiKey, opts)
	case ProviderNone, "":
		return nil, ErrNoProvider
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}
	return synth, nil
}

// Script is the voiceover, one entry per paragraph.
type Script []string

// DefaultScript is the English voiceover.
var DefaultScript = Script{
	"Welcome to Pixel Fish Tank! A cozy virtual pet game where you care for your adorable pixel-art fish.",
	"Feed your fish to keep it happy and healthy. Watch as your fish grows and evolves through your care.",
	"Play fun mini-games to earn coins and experience points. Challenge yourself to beat your high scores!",
	"Decorate your tank with plants, rocks, and toys. Make your fish's home unique and beautiful.",
	"Complete daily tasks to maintain streaks and earn rewards. Build a routine of care!",
	"Pixel Fish Tank works completely offline. All your progress is saved locally on your device.",
	"Available soon on Google Play Store. Visit pixel-fish-tank dot web dot app for more information, screenshots, and updates.",
	"Download Pixel Fish Tank today and start your virtual pet journey!",
}

// Text joins the paragraphs with blank lines.
func (s Script) Text() string {
	var parts []string
	for _, p := range s {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Generator writes the voiceover and never fails the caller: any problem is
// logged and reported as absent audio.
type Generator struct {
	synth      Synthesizer
	outputPath string
	logger     *logging.Logger
}

// synth may be nil, in which case every call reports absent audio
func NewGenerator(synth Synthesizer, outputPath string, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Generator{synth: synth, outputPath: outputPath, logger: logger}
}

// Synthesize returns the audio path and true, or "" and false when no usable
// audio was produced.
func (g *Generator) Synthesize(ctx context.Context, script Script) (string, bool) {
	if g.synth == nil {
		g.logger.Warnw("no speech provider configured, video will be silent")
		return "", false
	}

	text := script.Text()
	if text == "" {
		g.logger.Warnw("narration script is empty, video will be silent")
		return "", false
	}

	if err := os.MkdirAll(filepath.Dir(g.outputPath), 0755); err != nil {
		g.logger.Warnw("cannot create voiceover directory", "path", g.outputPath, "error", err)
		return "", false
	}

	if err := g.synth.Synthesize(ctx, text, g.outputPath); err != nil {
		g.logger.Warnw("speech synthesis failed, video will be silent", "error", err)
		return "", false
	}

	info, err := os.Stat(g.outputPath)
	if err != nil || info.Size() == 0 {
		g.logger.Warnw("speech synthesis produced no audio, video will be silent", "path", g.outputPath)
		return "", false
	}

	g.logger.Infow("voiceover saved", "path", g.outputPath, "bytes", info.Size())
	return g.outputPath, true
}
