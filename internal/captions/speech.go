package captions

import (
	"time"

	"github.com/mgpai22/promo/internal/audio"
	"github.com/mgpai22/promo/internal/transcribe"
)

// FromSpeech lays transcribed voiceover segments over the exported audio:
// the segments repeat once per loop of the narration and stop at the trim
// point, matching what the viewer hears.
func FromSpeech(segments []transcribe.Segment, plan audio.FitPlan, language string) *Track {
	track := &Track{Language: language}
	if len(segments) == 0 || plan.Repetitions < 1 {
		return track
	}

	loop := toDuration(plan.AudioSeconds)
	end := toDuration(plan.TrimSeconds)

	for rep := 0; rep < plan.Repetitions; rep++ {
		offset := time.Duration(rep) * loop
		for _, seg := range segments {
			start := offset + seg.StartTime
			stop := offset + seg.EndTime
			if start >= end {
				return track
			}
			if stop > end {
				stop = end
			}
			if stop <= start {
				continue
			}
			track.Entries = append(track.Entries, Entry{
				Index:     len(track.Entries) + 1,
				StartTime: start,
				EndTime:   stop,
				Text:      seg.Text,
			})
		}
	}
	return track
}
