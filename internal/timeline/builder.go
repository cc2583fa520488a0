package timeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mgpai22/promo/internal/asset"
	"github.com/mgpai22/promo/internal/config"
	"github.com/mgpai22/promo/internal/logging"
	"github.com/mgpai22/promo/internal/render"
)

// vertical anchors as fractions of the frame height
const (
	titleTop       = 0.05
	screenshotTop  = 0.18
	screenshotSize = 0.65
	subtitleTop    = 0.85
	iconTop        = 0.20
	labelTop       = 0.35
	urlTop         = 0.45
	ctaTop         = 0.65
	taglineTop     = 0.60
)

// font sizes in pixels
const (
	titleSize    = 70
	subtitleSize = 40
	labelSize    = 40
	urlSize      = 55
	ctaSize      = 60
	endingSize   = 80
	taglineSize  = 40
)

const (
	iconHeight = 200
	imageFade  = 0.5
	// overlays run this much shorter than their section
	overlayTrim = 1.0
)

// delay between section start and overlay start
var overlayDelay = map[Kind]float64{
	KindFeature: 0.5,
	KindCTA:     1.0,
	KindEnding:  0.5,
}

type palette struct {
	background color.RGBA
	text       color.RGBA
	accent     color.RGBA
	website    color.RGBA
}

// Builder turns sections into positioned, timed elements. Every bitmap it
// produces is written into the workspace.
type Builder struct {
	frame          render.Frame
	textWidth      int
	palette        palette
	backgroundPath string

	text   *render.TextRenderer
	loader *asset.Loader
	ws     *asset.Workspace
	logger *logging.Logger

	// full-frame background, prepared once and shared by all sections
	background     *image.RGBA
	backgroundFile string
}

func NewBuilder(
	cfg config.Config,
	fonts *render.FontSet,
	ws *asset.Workspace,
	logger *logging.Logger,
) (*Builder, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	var p palette
	for _, c := range []struct {
		dst *color.RGBA
		hex string
	}{
		{&p.background, cfg.Palette.Background},
		{&p.text, cfg.Palette.Text},
		{&p.accent, cfg.Palette.Accent},
		{&p.website, cfg.Palette.Website},
	} {
		parsed, err := render.ParseHex(c.hex)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		*c.dst = parsed
	}

	return &Builder{
		frame:          render.Frame{Width: cfg.Video.Width, Height: cfg.Video.Height},
		textWidth:      cfg.TextWidth(),
		palette:        p,
		backgroundPath: cfg.BackgroundPath(),
		text:           render.NewTextRenderer(fonts),
		loader:         asset.NewLoader(ws, logger),
		ws:             ws,
		logger:         logger,
	}, nil
}

// Build lays out every section in order and returns the finished timeline.
func (b *Builder) Build(sections []Section) (*Timeline, error) {
	sections = Schedule(sections)

	tl := &Timeline{
		Sections:   sections,
		Frame:      b.frame,
		Background: b.palette.background,
	}
	for i, s := range sections {
		elems, err := b.BuildSection(s)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		for j := range elems {
			elems[j].Section = i
		}
		tl.Elements = append(tl.Elements, elems...)
		b.logger.Debugw("section built",
			"section", s.Name,
			"start", s.Start,
			"duration", s.Duration,
			"elements", len(elems),
		)
	}

	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// OverlayWindow is when a section's overlays are on screen. A non-positive
// duration means the section only shows its background.
func OverlayWindow(s Section) (start, duration float64) {
	return s.Start + overlayDelay[s.Kind], s.Duration - overlayTrim
}

// BuildSection returns the section's elements back to front. Missing images
// are skipped; only workspace write failures are errors.
func (b *Builder) BuildSection(s Section) ([]Element, error) {
	bg, err := b.backgroundElement(s)
	if err != nil {
		return nil, err
	}
	elems := []Element{bg}

	start, dur := OverlayWindow(s)
	if dur <= 0 {
		b.logger.Warnw("section too short for overlays", "section", s.Name, "duration", s.Duration)
		return elems, nil
	}

	var overlays []Element
	switch s.Kind {
	case KindFeature:
		overlays, err = b.featureOverlays(s, start, dur)
	case KindCTA:
		overlays, err = b.ctaOverlays(s, start, dur)
	case KindEnding:
		overlays, err = b.endingOverlays(s, start, dur)
	default:
		return nil, fmt.Errorf("unknown section kind %q", s.Kind)
	}
	if err != nil {
		return nil, err
	}
	return append(elems, overlays...), nil
}

// title, screenshot, subtitle
func (b *Builder) featureOverlays(s Section, start, dur float64) ([]Element, error) {
	var elems []Element

	title, err := b.textElement(s, LayerTitle, s.Title, titleSize, b.palette.accent, anchorTop(titleTop))
	if err != nil {
		return nil, err
	}
	elems = append(elems, title)

	if shot, ok, err := b.imageElement(s, LayerScreenshot, s.Image, b.frame.FromTop(screenshotSize), b.frame.FromTop(screenshotTop)); err != nil {
		return nil, err
	} else if ok {
		elems = append(elems, shot)
	}

	if s.Subtitle != "" {
		sub, err := b.textElement(s, LayerSubtitle, s.Subtitle, subtitleSize, b.palette.text, anchorTop(subtitleTop))
		if err != nil {
			return nil, err
		}
		elems = append(elems, sub)
	}

	return timeAll(elems, start, dur), nil
}

// label, url, call to action, icon
func (b *Builder) ctaOverlays(s Section, start, dur float64) ([]Element, error) {
	var elems []Element

	texts := []struct {
		layer Layer
		text  string
		size  float64
		color color.RGBA
		top   float64
	}{
		{LayerLabel, s.Subtitle, labelSize, b.palette.text, labelTop},
		{LayerURL, WebsiteURL, urlSize, b.palette.website, urlTop},
		{LayerTitle, s.Title, ctaSize, b.palette.accent, ctaTop},
	}
	for _, t := range texts {
		if t.text == "" {
			continue
		}
		e, err := b.textElement(s, t.layer, t.text, t.size, t.color, anchorTop(t.top))
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}

	if icon, ok, err := b.imageElement(s, LayerIcon, s.Image, iconHeight, b.frame.FromTop(iconTop)); err != nil {
		return nil, err
	} else if ok {
		elems = append(elems, icon)
	}

	return timeAll(elems, start, dur), nil
}

// centered name, tagline
func (b *Builder) endingOverlays(s Section, start, dur float64) ([]Element, error) {
	name, err := b.textElement(s, LayerTitle, s.Title, endingSize, b.palette.accent, anchorCenter)
	if err != nil {
		return nil, err
	}
	elems := []Element{name}

	if s.Subtitle != "" {
		tagline, err := b.textElement(s, LayerTagline, s.Subtitle, taglineSize, b.palette.text, anchorTop(taglineTop))
		if err != nil {
			return nil, err
		}
		elems = append(elems, tagline)
	}

	return timeAll(elems, start, dur), nil
}

func (b *Builder) backgroundElement(s Section) (Element, error) {
	if b.background == nil {
		img := b.loadBackground()
		path, err := b.ws.WritePNG("background", img)
		if err != nil {
			return Element{}, err
		}
		b.background = img
		b.backgroundFile = path
	}

	return Element{
		Layer:    LayerBackground,
		Path:     b.backgroundFile,
		Bitmap:   b.background,
		Start:    s.Start,
		Duration: s.Duration,
	}, nil
}

// tank background stretched to the frame, or a solid fill when unusable
func (b *Builder) loadBackground() *image.RGBA {
	res := b.loader.Load(b.backgroundPath)
	if !res.OK {
		b.logger.Warnw("using solid background", "path", b.backgroundPath, "reason", res.Reason)
		return asset.Fallback(b.frame.Size(), b.palette.background)
	}
	return asset.Fill(res.Image, b.frame.Width, b.frame.Height)
}

// positions a bitmap of height h vertically
type anchor func(f render.Frame, h int) int

func anchorTop(fraction float64) anchor {
	return func(f render.Frame, _ int) int { return f.FromTop(fraction) }
}

func anchorCenter(f render.Frame, h int) int {
	return f.CenterY(h)
}

func (b *Builder) textElement(
	s Section,
	layer Layer,
	text string,
	size float64,
	c color.RGBA,
	y anchor,
) (Element, error) {
	bitmap := b.text.Render(render.TextStyle{
		Width:      b.textWidth,
		FontSize:   size,
		Color:      c,
		Background: true,
	}, text)

	path, err := b.ws.WritePNG(s.Name+"_"+string(layer), bitmap)
	if err != nil {
		return Element{}, err
	}

	return Element{
		Layer:  layer,
		Path:   path,
		Bitmap: bitmap,
		X:      b.frame.CenterX(b.textWidth),
		Y:      y(b.frame, bitmap.Bounds().Dy()),
		Text:   text,
	}, nil
}

// loads, scales to height h and centers horizontally; ok is false when the
// image is missing or undecodable
func (b *Builder) imageElement(s Section, layer Layer, path string, h, y int) (Element, bool, error) {
	if path == "" {
		return Element{}, false, nil
	}
	res := b.loader.Load(path)
	if !res.OK {
		b.logger.Warnw("skipping image", "section", s.Name, "layer", layer, "path", path, "reason", res.Reason)
		return Element{}, false, nil
	}

	bitmap := asset.FitHeight(res.Image, h)
	out, err := b.ws.WritePNG(s.Name+"_"+string(layer), bitmap)
	if err != nil {
		return Element{}, false, err
	}

	return Element{
		Layer:   layer,
		Path:    out,
		Bitmap:  bitmap,
		X:       b.frame.CenterX(bitmap.Bounds().Dx()),
		Y:       y,
		FadeIn:  imageFade,
		FadeOut: imageFade,
	}, true, nil
}

func timeAll(elems []Element, start, dur float64) []Element {
	for i := range elems {
		elems[i].Start = start
		elems[i].Duration = dur
	}
	return elems
}
