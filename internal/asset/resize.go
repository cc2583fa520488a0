package asset

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Fallback is a solid bitmap standing in for a missing image.
func Fallback(size image.Point, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Fill stretches img to exactly w x h.
func Fill(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// FitHeight scales img to height h keeping its aspect ratio.
func FitHeight(img image.Image, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, h))
	}
	w := int(math.Round(float64(b.Dx()) * float64(h) / float64(b.Dy())))
	if w < 1 {
		w = 1
	}
	return Fill(img, w, h)
}
