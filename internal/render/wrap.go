package render

import (
	"strings"

	"golang.org/x/image/font"
)

// share of the width budget a wrapped line may occupy
const wrapFraction = 0.9

// Measurer reports the rendered pixel width of a string.
type Measurer interface {
	Width(s string) float64
}

// FaceMeasurer measures with a font face's advance widths.
type FaceMeasurer struct {
	Face font.Face
}

func (m FaceMeasurer) Width(s string) float64 {
	return float64(font.MeasureString(m.Face, s)) / 64
}

// Wrap breaks text into lines using greedy first-fit: a word joins the current
// line while the joined line measures strictly under 90% of maxWidth, otherwise
// it starts a new line. A word that alone exceeds the budget still gets its own
// line and is never split.
func Wrap(text string, maxWidth int, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	budget := float64(maxWidth) * wrapFraction

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Width(candidate) < budget {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}

	return append(lines, current)
}
