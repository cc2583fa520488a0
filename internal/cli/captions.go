package cli

import (
	"context"
	"os"
	"strings"

	"github.com/mgpai22/promo/internal/captions"
	"github.com/mgpai22/promo/internal/timeline"
	"github.com/mgpai22/promo/internal/transcribe"
	"github.com/mgpai22/promo/internal/video"
)

// where caption cues come from
const (
	captionsFromScreen = "screen"
	captionsFromSpeech = "speech"
)

// captionTrack returns the cues for the sidecar. Speech captions need a
// narration track and an OpenAI key; any failure falls back to the
// on-screen text.
func (p *pipeline) captionTrack(
	ctx context.Context,
	source string,
	tl *timeline.Timeline,
	narration *video.AudioTrack,
	language string,
) *captions.Track {
	screen := captions.FromTimeline(tl, language)
	if source != captionsFromSpeech {
		return screen
	}

	log := p.logger.Stage("captions")
	if narration == nil {
		log.Infow("no narration in the video, using on-screen text for captions")
		return screen
	}

	tr, err := transcribe.Factory(transcribe.ProviderOpenAI, os.Getenv("OPENAI_API_KEY"), transcribe.Options{
		Language: baseLanguage(language),
		Prompt:   "Pixel Fish Tank",
	})
	if err != nil {
		log.Warnw("transcription unavailable, using on-screen text for captions", "error", err)
		return screen
	}

	log.Infow("transcribing voiceover", "path", narration.Path)
	result, err := tr.Transcribe(ctx, narration.Path)
	if err != nil {
		log.Warnw("transcription failed, using on-screen text for captions", "error", err)
		return screen
	}

	track := captions.FromSpeech(result.Segments, narration.Plan, language)
	if len(track.Entries) == 0 {
		log.Warnw("transcription produced no cues, using on-screen text for captions")
		return screen
	}
	return track
}

// ISO-639 part of a BCP 47 tag
func baseLanguage(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}
