package video

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mgpai22/promo/internal/audio"
	"github.com/mgpai22/promo/internal/logging"
	"github.com/mgpai22/promo/internal/render"
	"github.com/mgpai22/promo/internal/timeline"
)

func testTimeline() *timeline.Timeline {
	sections := timeline.Schedule([]timeline.Section{
		{Name: "title", Kind: timeline.KindFeature, Duration: 5},
		{Name: "feeding", Kind: timeline.KindFeature, Duration: 6},
	})
	return &timeline.Timeline{
		Sections: sections,
		Frame:    render.Frame{Width: 1920, Height: 1080},
		Elements: []timeline.Element{
			{Section: 0, Layer: timeline.LayerBackground, Path: "/work/001_bg.png", Start: 0, Duration: 5},
			{Section: 0, Layer: timeline.LayerTitle, Path: "/work/002_title.png", X: 192, Y: 54, Start: 0.5, Duration: 4, Text: "Pixel Fish Tank"},
			{Section: 0, Layer: timeline.LayerScreenshot, Path: "/work/003_shot.png", X: 600, Y: 194, Start: 0.5, Duration: 4, FadeIn: 0.5, FadeOut: 0.5},
			{Section: 1, Layer: timeline.LayerBackground, Path: "/work/004_bg.png", Start: 5, Duration: 6},
			{Section: 1, Layer: timeline.LayerTitle, Path: "/work/005_title.png", X: 192, Y: 54, Start: 5.5, Duration: 5, Text: "Feed Your Fish"},
		},
	}
}

func filterComplex(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-filter_complex" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("no -filter_complex in %v", args)
	return ""
}

func hasPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestGraphSilent(t *testing.T) {
	tl := testTimeline()
	e := NewExporter(DefaultExportOptions(), logging.Nop())

	args := e.Graph(tl, nil, "/out/promo.mp4").GetArgs()

	for _, pair := range [][2]string{
		{"-t", "11"},
		{"-r", "30"},
		{"-c:v", "libx264"},
		{"-b:v", "8000k"},
		{"-preset", "medium"},
		{"-pix_fmt", "yuv420p"},
		{"-f", "lavfi"},
		{"-i", "color=c=0x1a1a2e:s=1920x1080:r=30:d=11"},
	} {
		if !hasPair(args, pair[0], pair[1]) {
			t.Errorf("missing %s %s in %v", pair[0], pair[1], args)
		}
	}

	if hasPair(args, "-c:a", "aac") {
		t.Error("silent export should not set an audio codec")
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "/out/promo.mp4") || !strings.Contains(joined, "-y") {
		t.Errorf("output should be overwritten in place: %v", args)
	}

	fc := filterComplex(t, args)
	if got := strings.Count(fc, "overlay="); got != len(tl.Elements) {
		t.Errorf("overlays = %d, want %d", got, len(tl.Elements))
	}
	if strings.Contains(fc, "atrim") {
		t.Error("silent export should not trim audio")
	}
	if !strings.Contains(fc, "eof_action=pass") {
		t.Error("overlays should pass the base through after a layer ends")
	}
}

func TestGraphLayerTiming(t *testing.T) {
	tl := testTimeline()
	args := NewExporter(DefaultExportOptions(), nil).Graph(tl, nil, "/out/promo.mp4").GetArgs()

	if got := strings.Count(strings.Join(args, " "), "-loop 1"); got != len(tl.Elements) {
		t.Errorf("looped inputs = %d, want %d", got, len(tl.Elements))
	}
	if !hasPair(args, "-t", "4") || !hasPair(args, "-i", "/work/003_shot.png") {
		t.Error("screenshot input should be looped for its duration")
	}

	fc := filterComplex(t, args)
	for _, want := range []string{
		"setpts=PTS-STARTPTS+0.5/TB",
		"setpts=PTS-STARTPTS+5.5/TB",
		"fade=alpha=1:d=0.5:st=0:t=in",
		"fade=alpha=1:d=0.5:st=3.5:t=out",
		"x=600:y=194",
	} {
		if !strings.Contains(fc, want) {
			t.Errorf("filter graph missing %q:\n%s", want, fc)
		}
	}
	if got := strings.Count(fc, "fade="); got != 2 {
		t.Errorf("fades = %d, want 2 (text overlays do not fade)", got)
	}
}

func TestGraphWithNarration(t *testing.T) {
	tl := testTimeline()
	plan, err := audio.PlanFit(4, tl.Duration())
	if err != nil {
		t.Fatal(err)
	}

	args := NewExporter(DefaultExportOptions(), nil).
		Graph(tl, &AudioTrack{Path: "/work/voiceover.mp3", Plan: plan}, "/out/promo.mp4").
		GetArgs()

	if !hasPair(args, "-stream_loop", "2") {
		t.Errorf("expected -stream_loop 2 for 3 repetitions, got %v", args)
	}
	if !hasPair(args, "-c:a", "aac") {
		t.Error("narrated export should encode aac")
	}

	fc := filterComplex(t, args)
	if !strings.Contains(fc, "atrim=duration=11") {
		t.Errorf("audio should be trimmed to the video length:\n%s", fc)
	}
	if !strings.Contains(fc, "asetpts=PTS-STARTPTS") {
		t.Error("trimmed audio should restart its timestamps")
	}
}

func TestGraphNarrationLongerThanVideo(t *testing.T) {
	tl := testTimeline()
	plan, _ := audio.PlanFit(30, tl.Duration())

	args := NewExporter(DefaultExportOptions(), nil).
		Graph(tl, &AudioTrack{Path: "/work/voiceover.mp3", Plan: plan}, "/out/promo.mp4").
		GetArgs()

	for _, a := range args {
		if a == "-stream_loop" {
			t.Fatal("a single repetition should not loop the input")
		}
	}
}

func TestAssembleRejectsInvalidTimeline(t *testing.T) {
	tl := testTimeline()
	tl.Elements[1].Start = 4.5
	tl.Elements[1].Duration = 3

	_, err := NewExporter(DefaultExportOptions(), nil).Assemble(
		context.Background(), tl, "", filepath.Join(t.TempDir(), "promo.mp4"))
	if err == nil || !strings.Contains(err.Error(), "invalid timeline") {
		t.Fatalf("err = %v", err)
	}
}

func TestPrepareAudioMissingFile(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewExporter(DefaultExportOptions(), logging.FromCore(core))

	if track := e.prepareAudio(context.Background(), "", 48); track != nil {
		t.Error("empty path should mean no audio")
	}
	if logs.Len() != 0 {
		t.Error("absent narration is not a warning")
	}

	if track := e.prepareAudio(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), 48); track != nil {
		t.Error("missing narration should be dropped")
	}
	if logs.Len() != 1 {
		t.Errorf("warnings = %d, want 1", logs.Len())
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		actual time.Duration
		warn   bool
	}{
		{"exact", 48 * time.Second, false},
		{"within a frame", 48*time.Second + 20*time.Millisecond, false},
		{"short", 47 * time.Second, true},
		{"long", 48*time.Second + 100*time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			e := NewExporter(DefaultExportOptions(), logging.FromCore(core))
			e.verify(&Result{Expected: 48, Info: &Info{Duration: tt.actual}})
			if got := logs.Len() > 0; got != tt.warn {
				t.Errorf("warned = %v, want %v", got, tt.warn)
			}
		})
	}
}

func TestParseInfo(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30/1", "r_frame_rate": "30/1"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "48.000000"}
	}`)

	info, err := parseInfo(data)
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 1920 || info.Height != 1080 || info.Codec != "h264" {
		t.Errorf("got %+v", info)
	}
	if info.FrameRate != 30 || info.Duration != 48*time.Second || !info.HasAudio {
		t.Errorf("got %+v", info)
	}

	if _, err := parseInfo([]byte(`{"streams": [{"codec_type": "audio"}], "format": {}}`)); err == nil {
		t.Error("audio-only file should fail")
	}
	if _, err := parseInfo([]byte(`nope`)); err == nil {
		t.Error("bad json should fail")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"60000/2000", 30},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExportOptionsFromConfigDefaults(t *testing.T) {
	opts := DefaultExportOptions()
	if opts.Width != 1920 || opts.Height != 1080 || opts.FPS != 30 {
		t.Errorf("got %+v", opts)
	}
	if render.FFmpegColor(opts.Background) != "0x1a1a2e" {
		t.Errorf("background = %v", opts.Background)
	}
}
