package timeline

import (
	"image"
)

// Layer names the role of an element inside its section.
type Layer string

const (
	LayerBackground Layer = "background"
	LayerTitle      Layer = "title"
	LayerScreenshot Layer = "screenshot"
	LayerSubtitle   Layer = "subtitle"
	LayerLabel      Layer = "label"
	LayerURL        Layer = "url"
	LayerIcon       Layer = "icon"
	LayerTagline    Layer = "tagline"
)

// Element is one positioned, timed bitmap. Its z-order is its index in
// Timeline.Elements; later elements draw on top.
type Element struct {
	Section int
	Layer   Layer
	// PNG inside the build workspace
	Path   string
	Bitmap *image.RGBA
	X, Y   int

	Start    float64
	Duration float64
	FadeIn   float64
	FadeOut  float64

	// source string for text overlays, empty for images
	Text string
}

func (e Element) End() float64 {
	return e.Start + e.Duration
}

func (e Element) Size() image.Point {
	if e.Bitmap == nil {
		return image.Point{}
	}
	return e.Bitmap.Bounds().Size()
}

// ActiveAt reports whether the element is on screen at time t.
func (e Element) ActiveAt(t float64) bool {
	return t >= e.Start && t < e.End()
}

// Opacity is the element's alpha multiplier at time t, following linear
// fades at both ends.
func (e Element) Opacity(t float64) float64 {
	if !e.ActiveAt(t) {
		return 0
	}
	alpha := 1.0
	if e.FadeIn > 0 {
		if in := (t - e.Start) / e.FadeIn; in < alpha {
			alpha = in
		}
	}
	if e.FadeOut > 0 {
		if out := (e.End() - t) / e.FadeOut; out < alpha {
			alpha = out
		}
	}
	if alpha < 0 {
		return 0
	}
	return alpha
}

func (e Element) IsText() bool {
	return e.Text != ""
}
