package timeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/mgpai22/promo/internal/render"
)

// tolerance when comparing accumulated start times
const epsilon = 1e-9

// Timeline is the flat, z-ordered element list for the whole video.
type Timeline struct {
	Sections   []Section
	Elements   []Element
	Frame      render.Frame
	Background color.RGBA
}

// Duration is the sum of section durations.
func (t *Timeline) Duration() float64 {
	return TotalDuration(t.Sections)
}

// ActiveAt returns the elements visible at time at, back to front.
func (t *Timeline) ActiveAt(at float64) []Element {
	var out []Element
	for _, e := range t.Elements {
		if e.ActiveAt(at) {
			out = append(out, e)
		}
	}
	return out
}

// SectionAt returns the index of the section playing at time at, or -1.
func (t *Timeline) SectionAt(at float64) int {
	for i, s := range t.Sections {
		if at >= s.Start && at < s.End() {
			return i
		}
	}
	return -1
}

// TextElements returns the text overlays in z-order.
func (t *Timeline) TextElements() []Element {
	var out []Element
	for _, e := range t.Elements {
		if e.IsText() {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks durations are finite and positive, sections are contiguous
// and no element escapes its section.
func (t *Timeline) Validate() error {
	var errs []error

	var expected float64
	for i, s := range t.Sections {
		if !finite(s.Duration) || s.Duration <= 0 {
			errs = append(errs, fmt.Errorf("section %d (%s): invalid duration %v", i, s.Name, s.Duration))
		}
		if !finite(s.Start) || math.Abs(s.Start-expected) > epsilon {
			errs = append(errs, fmt.Errorf("section %d (%s): starts at %v, want %v", i, s.Name, s.Start, expected))
		}
		expected += s.Duration
	}

	for i, e := range t.Elements {
		if !finite(e.Start) || !finite(e.Duration) || e.Duration <= 0 || e.Start < 0 {
			errs = append(errs, fmt.Errorf("element %d (%s): invalid timing %v+%v", i, e.Layer, e.Start, e.Duration))
			continue
		}
		if e.Section < 0 || e.Section >= len(t.Sections) {
			errs = append(errs, fmt.Errorf("element %d (%s): unknown section %d", i, e.Layer, e.Section))
			continue
		}
		s := t.Sections[e.Section]
		if e.Start < s.Start-epsilon || e.End() > s.End()+epsilon {
			errs = append(errs, fmt.Errorf("element %d (%s): %v-%v outside section %s", i, e.Layer, e.Start, e.End(), s.Name))
		}
	}

	return errors.Join(errs...)
}

// Compose renders the frame at time at by alpha-blending every active
// element over the background color, honoring fades.
func (t *Timeline) Compose(at float64) *image.RGBA {
	canvas := image.NewRGBA(image.Rectangle{Max: t.Frame.Size()})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(t.Background), image.Point{}, draw.Src)

	for _, e := range t.ActiveAt(at) {
		if e.Bitmap == nil {
			continue
		}
		alpha := e.Opacity(at)
		if alpha <= 0 {
			continue
		}
		dst := e.Bitmap.Bounds().Sub(e.Bitmap.Bounds().Min).Add(image.Pt(e.X, e.Y))
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
		draw.DrawMask(canvas, dst, e.Bitmap, e.Bitmap.Bounds().Min, mask, image.Point{}, draw.Over)
	}
	return canvas
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
