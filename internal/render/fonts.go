package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	// source name reported when the embedded Go font is used
	EmbeddedFontSource = "embedded:goregular"
	// source name reported when only the bitmap face is left
	BasicFontSource = "embedded:basicfont"
)

// FontSet resolves a prioritized list of font files once and hands out faces
// per size. It always yields a usable face.
type FontSet struct {
	parsed *opentype.Font
	source string

	mu    sync.Mutex
	faces map[float64]font.Face
}

// LoadFonts tries each path in order, then the embedded Go Regular font, then
// the fixed-size basic face.
func LoadFonts(paths []string) *FontSet {
	fs := &FontSet{faces: map[float64]font.Face{}}

	for _, path := range paths {
		parsed, err := parseFontFile(path)
		if err != nil {
			continue
		}
		fs.parsed = parsed
		fs.source = path
		return fs
	}

	if parsed, err := opentype.Parse(goregular.TTF); err == nil {
		fs.parsed = parsed
		fs.source = EmbeddedFontSource
		return fs
	}

	fs.source = BasicFontSource
	return fs
}

// Source names the font that won resolution.
func (fs *FontSet) Source() string {
	return fs.source
}

// Face returns a face at the given pixel size (72 DPI, so points == pixels).
func (fs *FontSet) Face(size float64) font.Face {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if face, ok := fs.faces[size]; ok {
		return face
	}

	var face font.Face = basicfont.Face7x13
	if fs.parsed != nil {
		if f, err := opentype.NewFace(fs.parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		}); err == nil {
			face = f
		}
	}

	fs.faces[size] = face
	return face
}

func parseFontFile(path string) (*opentype.Font, error) {
	if path == "" {
		return nil, fmt.Errorf("empty font path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return parsed, nil
}
