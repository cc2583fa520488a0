package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/promo/internal/asset"
	"github.com/mgpai22/promo/internal/audio"
	"github.com/mgpai22/promo/internal/config"
	"github.com/mgpai22/promo/internal/localize"
	"github.com/mgpai22/promo/internal/logging"
	"github.com/mgpai22/promo/internal/narration"
	"github.com/mgpai22/promo/internal/render"
	"github.com/mgpai22/promo/internal/timeline"
)

// steps shared by the build, narrate and thumbnail commands
type pipeline struct {
	cfg    config.Config
	logger *logging.Logger
}

func newPipeline(c config.Config, l *logging.Logger) *pipeline {
	if l == nil {
		l = logging.Nop()
	}
	return &pipeline{cfg: c, logger: l}
}

// on-screen text and voiceover in one language
type storyCopy struct {
	sections []timeline.Section
	script   narration.Script
	language string
}

// story returns the storyboard copy, translated when a non-English language
// is configured. Only an invalid language tag is an error; provider problems
// keep the English copy.
func (p *pipeline) story(ctx context.Context) (storyCopy, error) {
	s := storyCopy{
		sections: timeline.Storyboard(p.cfg),
		script:   narration.DefaultScript,
		language: "en",
	}

	requested := strings.TrimSpace(p.cfg.Localize.Language)
	if requested == "" {
		return s, nil
	}

	tag, name, english, err := localize.ParseLanguage(requested)
	if err != nil {
		return s, err
	}
	if english {
		return s, nil
	}

	log := p.logger.Stage("localize")
	provider := localize.Provider(p.cfg.Localize.Provider)

	translator, err := localize.Factory(ctx, provider, os.Getenv(provider.KeyEnv()), localize.Options{
		TargetLanguage: name,
		Model:          p.cfg.Localize.Model,
	})
	if err != nil {
		log.Warnw("translation unavailable, keeping English text",
			"provider", provider,
			"language", name,
			"error", err,
		)
		return s, nil
	}

	sections, script, ok := localize.NewLocalizer(translator, log).Localize(ctx, s.sections, s.script)
	if !ok {
		return s, nil
	}

	log.Infow("copy translated", "language", name, "provider", provider)
	return storyCopy{sections: sections, script: script, language: tag.String()}, nil
}

// narrate returns a usable voiceover path, or "" and false for a silent video.
// A supplied voiceover file takes precedence over synthesis.
func (p *pipeline) narrate(ctx context.Context, script narration.Script, voiceover string) (string, bool) {
	log := p.logger.Stage("narration")

	if voiceover != "" {
		if path, err := checkVoiceover(voiceover); err != nil {
			log.Warnw("ignoring voiceover file", "path", voiceover, "error", err)
		} else {
			log.Infow("using supplied voiceover", "path", path)
			return path, true
		}
	}

	provider := narration.Provider(p.cfg.Narration.Provider)
	synth, err := narration.Factory(ctx, provider, os.Getenv(provider.KeyEnv()), narration.Options{
		Model: p.cfg.Narration.Model,
		Voice: p.cfg.Narration.Voice,
		Speed: p.cfg.Narration.Speed,
	})
	if errors.Is(err, narration.ErrNoProvider) {
		log.Infow("narration disabled, video will be silent")
		return "", false
	}
	if err != nil {
		log.Warnw("speech provider unavailable, video will be silent",
			"provider", provider,
			"key_env", provider.KeyEnv(),
			"error", err,
		)
		return "", false
	}

	log.Infow("synthesizing voiceover", "provider", provider, "paragraphs", len(script))
	return narration.NewGenerator(synth, p.cfg.VoiceoverPath(), log).Synthesize(ctx, script)
}

func checkVoiceover(path string) (string, error) {
	if !audio.IsAudioFile(path) {
		return "", fmt.Errorf("unsupported audio type")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty")
	}
	return path, nil
}

// layout renders every element into ws and returns the timeline
func (p *pipeline) layout(ws *asset.Workspace, sections []timeline.Section) (*timeline.Timeline, error) {
	log := p.logger.Stage("timeline")

	fonts := render.LoadFonts(p.cfg.Fonts.Paths)
	log.Infow("font loaded", "source", fonts.Source())

	builder, err := timeline.NewBuilder(p.cfg, fonts, ws, log)
	if err != nil {
		return nil, err
	}

	tl, err := builder.Build(sections)
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline: %w", err)
	}

	log.Infow("timeline ready",
		"sections", len(tl.Sections),
		"elements", len(tl.Elements),
		"duration", tl.Duration(),
	)
	return tl, nil
}
