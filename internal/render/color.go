package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHex converts "#rrggbb", "rrggbb" or the short "#rgb" form to an opaque color.
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// MustHex is ParseHex for values already checked by config validation.
func MustHex(hex string) color.RGBA {
	c, err := ParseHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// FFmpegColor formats a color the way lavfi sources expect it (0xRRGGBB).
func FFmpegColor(c color.RGBA) string {
	return fmt.Sprintf("0x%02x%02x%02x", c.R, c.G, c.B)
}
