package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

const (
	lineSpacing       = 10
	panelPadding      = 20
	plainPadding      = 10
	panelHorizontal   = 10
	panelVertical     = 5
	panelAlpha        = 200
	minTextImageWidth = 1
)

// TextStyle describes one text overlay.
type TextStyle struct {
	Width      int
	FontSize   float64
	Color      color.RGBA
	Background bool
	// opaque fill used when Background is false; nil keeps the bitmap transparent
	Fill *color.RGBA
}

// TextRenderer rasterizes wrapped text with optional per-line panels.
type TextRenderer struct {
	fonts *FontSet
}

func NewTextRenderer(fonts *FontSet) *TextRenderer {
	return &TextRenderer{fonts: fonts}
}

// Lines returns the wrapped lines for text under style without rendering.
func (r *TextRenderer) Lines(style TextStyle, text string) []string {
	face := r.fonts.Face(style.FontSize)
	return Wrap(text, style.Width, FaceMeasurer{Face: face})
}

// Render draws text centered line by line into a bitmap of style.Width pixels.
// The height is lines*(size+10) plus padding on both sides. Every line gets
// its own panel sized to that line, so panels differ in width.
func (r *TextRenderer) Render(style TextStyle, text string) *image.RGBA {
	face := r.fonts.Face(style.FontSize)
	lines := Wrap(text, style.Width, FaceMeasurer{Face: face})

	width := style.Width
	if width < minTextImageWidth {
		width = minTextImageWidth
	}
	padding := plainPadding
	if style.Background {
		padding = panelPadding
	}
	lineHeight := int(math.Round(style.FontSize)) + lineSpacing
	height := len(lines)*lineHeight + padding*2

	dc := gg.NewContext(width, height)
	if !style.Background && style.Fill != nil {
		dc.SetColor(*style.Fill)
		dc.Clear()
	}
	dc.SetFontFace(face)

	ascent := float64(face.Metrics().Ascent.Ceil())
	positions := make([]float64, len(lines))
	widths := make([]float64, len(lines))
	for i, line := range lines {
		lw, _ := dc.MeasureString(line)
		widths[i] = lw
		positions[i] = math.Floor((float64(width) - lw) / 2)
	}

	if style.Background {
		dc.SetRGBA255(0, 0, 0, panelAlpha)
		for i := range lines {
			y := float64(padding + i*lineHeight)
			dc.DrawRectangle(
				positions[i]-panelHorizontal,
				y-panelVertical,
				widths[i]+2*panelHorizontal,
				style.FontSize+2*panelVertical,
			)
			dc.Fill()
		}
	}

	dc.SetColor(style.Color)
	for i, line := range lines {
		y := float64(padding + i*lineHeight)
		dc.DrawString(line, positions[i], y+ascent)
	}

	return imageToRGBA(dc.Image())
}

// PanelBounds reports the panel rectangle of every line as Render would draw
// it, in bitmap coordinates.
func (r *TextRenderer) PanelBounds(style TextStyle, text string) []image.Rectangle {
	face := r.fonts.Face(style.FontSize)
	m := FaceMeasurer{Face: face}
	lines := Wrap(text, style.Width, m)
	lineHeight := int(math.Round(style.FontSize)) + lineSpacing

	rects := make([]image.Rectangle, len(lines))
	for i, line := range lines {
		lw := m.Width(line)
		x := math.Floor((float64(style.Width) - lw) / 2)
		y := panelPadding + i*lineHeight
		rects[i] = image.Rect(
			int(x)-panelHorizontal,
			y-panelVertical,
			int(math.Ceil(x+lw))+panelHorizontal,
			y+int(math.Round(style.FontSize))+panelVertical,
		)
	}
	return rects
}

func imageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
