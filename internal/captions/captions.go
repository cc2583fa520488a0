package captions

import (
	"math"
	"strings"
	"time"

	"github.com/mgpai22/promo/internal/timeline"
)

// represents single caption cue
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete caption track
type Track struct {
	Entries  []Entry
	Language string
}

// represents supported caption formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for writing captions to files
type Writer interface {
	Write(track *Track, path string) error
}

// FromTimeline emits one cue per section that shows text, spanning its text
// overlays and listing their strings in draw order.
func FromTimeline(tl *timeline.Timeline, language string) *Track {
	track := &Track{Language: language}

	type span struct {
		start, end float64
		lines      []string
	}
	spans := make(map[int]*span)
	var order []int

	for _, e := range tl.TextElements() {
		s, ok := spans[e.Section]
		if !ok {
			s = &span{start: e.Start, end: e.End()}
			spans[e.Section] = s
			order = append(order, e.Section)
		}
		s.start = math.Min(s.start, e.Start)
		s.end = math.Max(s.end, e.End())
		s.lines = append(s.lines, strings.TrimSpace(e.Text))
	}

	for _, idx := range order {
		s := spans[idx]
		track.Entries = append(track.Entries, Entry{
			Index:     len(track.Entries) + 1,
			StartTime: toDuration(s.start),
			EndTime:   toDuration(s.end),
			Text:      strings.Join(s.lines, "\n"),
		})
	}
	return track
}

// rounded to the millisecond so 5.5 does not print as 5.499
func toDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}
