package render

import "image"

// Frame is the output canvas size.
type Frame struct {
	Width  int
	Height int
}

func (f Frame) Size() image.Point {
	return image.Pt(f.Width, f.Height)
}

// FromTop converts a fraction of the frame height into a y offset.
func (f Frame) FromTop(fraction float64) int {
	return int(float64(f.Height) * fraction)
}

// CenterX returns the x offset that centers an element of width w.
func (f Frame) CenterX(w int) int {
	return (f.Width - w) / 2
}

// CenterY returns the y offset that centers an element of height h.
func (f Frame) CenterY(h int) int {
	return (f.Height - h) / 2
}
