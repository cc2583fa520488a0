package captions

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/promo/internal/audio"
	"github.com/mgpai22/promo/internal/timeline"
	"github.com/mgpai22/promo/internal/transcribe"
)

func sampleTimeline() *timeline.Timeline {
	return &timeline.Timeline{
		Sections: timeline.Schedule([]timeline.Section{
			{Name: "intro", Duration: 5},
			{Name: "tank", Duration: 6},
			{Name: "cta", Duration: 8},
		}),
		Elements: []timeline.Element{
			{Section: 0, Layer: timeline.LayerBackground, Start: 0, Duration: 5},
			{Section: 0, Layer: timeline.LayerTitle, Start: 0.5, Duration: 4, Text: "Pixel Fish Tank"},
			{Section: 0, Layer: timeline.LayerScreenshot, Start: 0.5, Duration: 4},
			{Section: 0, Layer: timeline.LayerSubtitle, Start: 0.5, Duration: 4, Text: "A cozy virtual pet game"},
			{Section: 1, Layer: timeline.LayerBackground, Start: 5, Duration: 6},
			{Section: 2, Layer: timeline.LayerLabel, Start: 12, Duration: 6, Text: "Visit us at:"},
			{Section: 2, Layer: timeline.LayerURL, Start: 12, Duration: 6, Text: "https://pixel-fish-tank.web.app"},
		},
	}
}

func TestFromTimeline(t *testing.T) {
	track := FromTimeline(sampleTimeline(), "en")

	if len(track.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (sections without text have no cue)", len(track.Entries))
	}

	first := track.Entries[0]
	if first.StartTime != 500*time.Millisecond || first.EndTime != 4500*time.Millisecond {
		t.Errorf("first cue %v-%v", first.StartTime, first.EndTime)
	}
	if first.Text != "Pixel Fish Tank\nA cozy virtual pet game" {
		t.Errorf("first cue text %q", first.Text)
	}

	second := track.Entries[1]
	if second.Index != 2 || second.StartTime != 12*time.Second || second.EndTime != 18*time.Second {
		t.Errorf("second cue %+v", second)
	}
}

func TestSRTWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "promo.srt")
	if err := Save(FromTimeline(sampleTimeline(), ""), path, image.Point{}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "1\n00:00:00,500 --> 00:00:04,500\nPixel Fish Tank\nA cozy virtual pet game\n\n" +
		"2\n00:00:12,000 --> 00:00:18,000\nVisit us at:\nhttps://pixel-fish-tank.web.app\n\n"
	if string(data) != want {
		t.Errorf("got:\n%s\nwant:\n%s", data, want)
	}
}

func TestVTTWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promo.vtt")
	track := &Track{
		Language: "ja",
		Entries:  []Entry{{Index: 1, StartTime: 61*time.Second + 5*time.Millisecond, EndTime: 62 * time.Second, Text: "a --> b"}},
	}
	if err := Save(track, path, image.Point{}); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	got := string(data)
	for _, want := range []string{"WEBVTT\nLanguage: ja\n\n", "00:01:01.005 --> 00:01:02.000", "a -> b"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestASSWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promo.ass")
	if err := Save(FromTimeline(sampleTimeline(), ""), path, image.Point{}); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	got := string(data)
	if !strings.Contains(got, "Dialogue: 0,0:00:00.50,0:00:04.50,Default,,0,0,0,,Pixel Fish Tank\\NA cozy virtual pet game") {
		t.Errorf("unexpected dialogue:\n%s", got)
	}
	if !strings.Contains(got, "PlayResX: 1920") {
		t.Error("missing play resolution")
	}
}

func TestASSPlayResFollowsFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promo.ass")
	if err := Save(FromTimeline(sampleTimeline(), ""), path, image.Pt(1280, 720)); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	got := string(data)
	for _, want := range []string{"PlayResX: 1280", "PlayResY: 720"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.srt", FormatSRT},
		{"a.VTT", FormatVTT},
		{"a.ssa", FormatASS},
		{"a.txt", FormatSRT},
	}
	for _, tt := range tests {
		if got := FormatFromExtension(tt.path); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.path, got, tt.want)
		}
	}

	if _, err := NewWriter(Format("sbv"), image.Point{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestTimeFormats(t *testing.T) {
	d := time.Hour + 2*time.Minute + 3*time.Second + 456*time.Millisecond
	if got := formatSRTTime(d); got != "01:02:03,456" {
		t.Errorf("srt = %s", got)
	}
	if got := formatVTTTime(d); got != "01:02:03.456" {
		t.Errorf("vtt = %s", got)
	}
	if got := formatASSTime(d); got != "1:02:03.45" {
		t.Errorf("ass = %s", got)
	}
	if got := toDuration(5.5); got != 5500*time.Millisecond {
		t.Errorf("toDuration = %v", got)
	}
}

func TestFromSpeechLoopsAndTrims(t *testing.T) {
	segments := []transcribe.Segment{
		{StartTime: 0, EndTime: 2 * time.Second, Text: "Welcome"},
		{StartTime: 2 * time.Second, EndTime: 4 * time.Second, Text: "Feed your fish"},
	}
	plan, err := audio.PlanFit(4, 10)
	if err != nil {
		t.Fatal(err)
	}

	track := FromSpeech(segments, plan, "en")

	// 3 loops of 4s cover 12s; cues from 10s on are dropped
	if len(track.Entries) != 5 {
		t.Fatalf("entries = %d, want 5: %+v", len(track.Entries), track.Entries)
	}
	if e := track.Entries[2]; e.StartTime != 4*time.Second || e.Text != "Welcome" {
		t.Errorf("second loop starts with %+v", e)
	}
	last := track.Entries[4]
	if last.StartTime != 8*time.Second || last.EndTime != 10*time.Second {
		t.Errorf("last cue %v-%v", last.StartTime, last.EndTime)
	}

	clipped := FromSpeech([]transcribe.Segment{{StartTime: 9 * time.Second, EndTime: 12 * time.Second, Text: "tail"}},
		audio.FitPlan{AudioSeconds: 12, VideoSeconds: 10, Repetitions: 1, TrimSeconds: 10}, "")
	if len(clipped.Entries) != 1 || clipped.Entries[0].EndTime != 10*time.Second {
		t.Errorf("clipped = %+v", clipped.Entries)
	}
}

func TestFromSpeechEmpty(t *testing.T) {
	plan, _ := audio.PlanFit(4, 10)
	if got := FromSpeech(nil, plan, ""); len(got.Entries) != 0 {
		t.Error("no segments should give no cues")
	}
}
