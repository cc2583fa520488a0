package timeline

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mgpai22/promo/internal/asset"
	"github.com/mgpai22/promo/internal/config"
	"github.com/mgpai22/promo/internal/logging"
	"github.com/mgpai22/promo/internal/render"
)

var (
	bgColor   = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	tankColor = color.RGBA{R: 10, G: 120, B: 200, A: 0xff}
)

// small frame keeps scaling and encoding fast
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default().WithRoot(t.TempDir())
	cfg.Video.Width = 320
	cfg.Video.Height = 180
	return cfg
}

func writeImage(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, asset.Fallback(image.Pt(w, h), c)); err != nil {
		t.Fatal(err)
	}
}

// writes every storyboard image except the ones named in skip
func writeAssets(t *testing.T, cfg config.Config, skip ...string) {
	t.Helper()
	skipped := map[string]bool{}
	for _, s := range skip {
		skipped[s] = true
	}
	if !skipped["background"] {
		writeImage(t, cfg.BackgroundPath(), 64, 36, tankColor)
	}
	for _, s := range Storyboard(cfg) {
		if s.Image != "" && !skipped[s.Name] {
			writeImage(t, s.Image, 40, 80, color.White)
		}
	}
}

func newTestBuilder(t *testing.T, cfg config.Config) *Builder {
	t.Helper()
	ws, err := asset.NewWorkspace()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ws.Close() })

	b, err := NewBuilder(cfg, render.LoadFonts(nil), ws, logging.Nop())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func layers(elems []Element) []Layer {
	out := make([]Layer, len(elems))
	for i, e := range elems {
		out[i] = e.Layer
	}
	return out
}

func equalLayers(a, b []Layer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStoryboardSchedule(t *testing.T) {
	sections := Storyboard(config.Default())

	wantStarts := []float64{0, 5, 11, 17, 23, 29, 35, 43}
	if len(sections) != len(wantStarts) {
		t.Fatalf("got %d sections, want %d", len(sections), len(wantStarts))
	}

	var sum float64
	for i, s := range sections {
		if s.Start != wantStarts[i] {
			t.Errorf("section %s starts at %v, want %v", s.Name, s.Start, wantStarts[i])
		}
		if s.Start != sum {
			t.Errorf("section %d start %v != sum of previous durations %v", i, s.Start, sum)
		}
		sum += s.Duration
	}
	if got := TotalDuration(sections); got != 48 {
		t.Errorf("total = %v, want 48", got)
	}
	if sections[6].Kind != KindCTA || sections[7].Kind != KindEnding {
		t.Errorf("last two sections should be cta and ending, got %s and %s", sections[6].Kind, sections[7].Kind)
	}
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	in := []Section{{Name: "a", Duration: 2, Start: 99}, {Name: "b", Duration: 3}}
	out := Schedule(in)
	if in[0].Start != 99 {
		t.Error("input was modified")
	}
	if out[0].Start != 0 || out[1].Start != 2 {
		t.Errorf("starts = %v, %v", out[0].Start, out[1].Start)
	}
}

func TestBuildFeatureSection(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)
	b := newTestBuilder(t, cfg)

	s := Storyboard(cfg)[1]
	elems, err := b.BuildSection(s)
	if err != nil {
		t.Fatalf("BuildSection: %v", err)
	}

	want := []Layer{LayerBackground, LayerTitle, LayerScreenshot, LayerSubtitle}
	if got := layers(elems); !equalLayers(got, want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}

	bg := elems[0]
	if bg.Start != s.Start || bg.Duration != s.Duration {
		t.Errorf("background timing %v+%v, want %v+%v", bg.Start, bg.Duration, s.Start, s.Duration)
	}
	if bg.Size() != image.Pt(320, 180) {
		t.Errorf("background size = %v", bg.Size())
	}

	for _, e := range elems[1:] {
		if e.Start != s.Start+0.5 {
			t.Errorf("%s starts at %v, want %v", e.Layer, e.Start, s.Start+0.5)
		}
		if e.Duration != s.Duration-1 {
			t.Errorf("%s lasts %v, want %v", e.Layer, e.Duration, s.Duration-1)
		}
	}

	shot := elems[2]
	if shot.Size().Y != int(180*0.65) {
		t.Errorf("screenshot height = %d, want %d", shot.Size().Y, int(180*0.65))
	}
	if shot.Y != 32 {
		t.Errorf("screenshot top = %d, want 32", shot.Y)
	}
	if shot.X != (320-shot.Size().X)/2 {
		t.Errorf("screenshot not centered: x=%d width=%d", shot.X, shot.Size().X)
	}
	if shot.FadeIn != 0.5 || shot.FadeOut != 0.5 {
		t.Errorf("fades = %v/%v", shot.FadeIn, shot.FadeOut)
	}

	title := elems[1]
	if title.Text != s.Title || title.Y != int(180*0.05) || title.X != (320-cfg.TextWidth())/2 {
		t.Errorf("title = %q at (%d,%d)", title.Text, title.X, title.Y)
	}
	if elems[3].Y != int(180*0.85) {
		t.Errorf("subtitle top = %d", elems[3].Y)
	}

	for _, e := range elems {
		if _, err := os.Stat(e.Path); err != nil {
			t.Errorf("%s bitmap not written: %v", e.Layer, err)
		}
	}
}

func TestBuildSkipsMissingScreenshot(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg, "minigames")
	b := newTestBuilder(t, cfg)

	elems, err := b.BuildSection(Storyboard(cfg)[2])
	if err != nil {
		t.Fatalf("BuildSection: %v", err)
	}
	want := []Layer{LayerBackground, LayerTitle, LayerSubtitle}
	if got := layers(elems); !equalLayers(got, want) {
		t.Errorf("layers = %v, want %v", got, want)
	}
}

func TestBuildWithoutSubtitle(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)
	b := newTestBuilder(t, cfg)

	s := Storyboard(cfg)[0]
	s.Subtitle = ""
	elems, err := b.BuildSection(s)
	if err != nil {
		t.Fatalf("BuildSection: %v", err)
	}
	for _, e := range elems {
		if e.Layer == LayerSubtitle {
			t.Fatal("subtitle layer should be absent")
		}
	}
}

func TestMissingBackgroundFallsBack(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg, "background")
	b := newTestBuilder(t, cfg)

	elems, err := b.BuildSection(Storyboard(cfg)[0])
	if err != nil {
		t.Fatalf("BuildSection: %v", err)
	}
	bg := elems[0]
	if bg.Layer != LayerBackground {
		t.Fatalf("first layer = %s", bg.Layer)
	}
	if got := bg.Bitmap.RGBAAt(100, 100); got != bgColor {
		t.Errorf("fallback pixel = %v, want %v", got, bgColor)
	}
}

func TestBuildCTAAndEnding(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)
	b := newTestBuilder(t, cfg)
	sections := Storyboard(cfg)

	cta := sections[6]
	elems, err := b.BuildSection(cta)
	if err != nil {
		t.Fatalf("cta: %v", err)
	}
	want := []Layer{LayerBackground, LayerLabel, LayerURL, LayerTitle, LayerIcon}
	if got := layers(elems); !equalLayers(got, want) {
		t.Fatalf("cta layers = %v, want %v", got, want)
	}
	for _, e := range elems[1:] {
		if e.Start != cta.Start+1 || e.End() != cta.End() {
			t.Errorf("cta %s runs %v-%v, want %v-%v", e.Layer, e.Start, e.End(), cta.Start+1, cta.End())
		}
	}
	if elems[2].Text != WebsiteURL {
		t.Errorf("url text = %q", elems[2].Text)
	}
	if icon := elems[4]; icon.Size().Y != 200 || icon.Y != int(180*0.2) {
		t.Errorf("icon %v at y=%d", icon.Size(), icon.Y)
	}

	ending := sections[7]
	elems, err = b.BuildSection(ending)
	if err != nil {
		t.Fatalf("ending: %v", err)
	}
	want = []Layer{LayerBackground, LayerTitle, LayerTagline}
	if got := layers(elems); !equalLayers(got, want) {
		t.Fatalf("ending layers = %v, want %v", got, want)
	}
	name := elems[1]
	if name.Y != (180-name.Size().Y)/2 {
		t.Errorf("ending title not vertically centered: y=%d h=%d", name.Y, name.Size().Y)
	}
	if name.Start != ending.Start+0.5 || name.End() > ending.End() {
		t.Errorf("ending title runs %v-%v", name.Start, name.End())
	}
}

func TestBuildTimeline(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg, "store")
	b := newTestBuilder(t, cfg)

	tl, err := b.Build(Storyboard(cfg))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Duration() != 48 {
		t.Errorf("duration = %v", tl.Duration())
	}
	if err := tl.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	screenshots := 0
	for _, e := range tl.Elements {
		if e.Layer == LayerScreenshot {
			screenshots++
		}
		if e.End() > tl.Duration() {
			t.Errorf("%s ends at %v past the video", e.Layer, e.End())
		}
	}
	if screenshots != 5 {
		t.Errorf("screenshots = %d, want 5 (store is missing)", screenshots)
	}

	if got := tl.SectionAt(47.9); got != 7 {
		t.Errorf("SectionAt(47.9) = %d", got)
	}
	if got := tl.SectionAt(48); got != -1 {
		t.Errorf("SectionAt(48) = %d", got)
	}
	if n := len(tl.TextElements()); n == 0 {
		t.Error("expected text elements")
	}
}

func TestActiveAtAndOpacity(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)
	b := newTestBuilder(t, cfg)

	tl, err := b.Build(Storyboard(cfg))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := layers(tl.ActiveAt(0.2)); !equalLayers(got, []Layer{LayerBackground}) {
		t.Errorf("ActiveAt(0.2) = %v", got)
	}
	if got := layers(tl.ActiveAt(1)); !equalLayers(got, []Layer{LayerBackground, LayerTitle, LayerScreenshot, LayerSubtitle}) {
		t.Errorf("ActiveAt(1) = %v", got)
	}
	// trailing second of each section shows only the background
	if got := layers(tl.ActiveAt(4.7)); !equalLayers(got, []Layer{LayerBackground}) {
		t.Errorf("ActiveAt(4.7) = %v", got)
	}

	shot := tl.ActiveAt(1)[2]
	tests := []struct {
		at   float64
		want float64
	}{
		{0.5, 0},
		{0.75, 0.5},
		{2, 1},
		{4.25, 0.5},
		{4.5, 0},
	}
	for _, tt := range tests {
		if got := shot.Opacity(tt.at); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Opacity(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestCompose(t *testing.T) {
	cfg := testConfig(t)
	writeAssets(t, cfg)
	b := newTestBuilder(t, cfg)

	tl, err := b.Build(Storyboard(cfg))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	frame := tl.Compose(0.1)
	if frame.Bounds().Size() != image.Pt(320, 180) {
		t.Fatalf("frame size = %v", frame.Bounds().Size())
	}
	if got := frame.RGBAAt(2, 2); got != tankColor {
		t.Errorf("background pixel = %v, want %v", got, tankColor)
	}

	// mid-section the white screenshot covers the frame center
	frame = tl.Compose(7)
	if got := frame.RGBAAt(160, 90); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("center pixel = %v, want white", got)
	}
}

func TestValidateRejectsBadTimelines(t *testing.T) {
	tests := []struct {
		name string
		tl   Timeline
	}{
		{
			name: "gap between sections",
			tl: Timeline{Sections: []Section{
				{Name: "a", Duration: 5, Start: 0},
				{Name: "b", Duration: 5, Start: 6},
			}},
		},
		{
			name: "nan duration",
			tl:   Timeline{Sections: []Section{{Name: "a", Duration: math.NaN()}}},
		},
		{
			name: "negative duration",
			tl:   Timeline{Sections: []Section{{Name: "a", Duration: -1}}},
		},
		{
			name: "element outlives section",
			tl: Timeline{
				Sections: []Section{{Name: "a", Duration: 5}},
				Elements: []Element{{Layer: LayerTitle, Start: 0.5, Duration: 5}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tl.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
