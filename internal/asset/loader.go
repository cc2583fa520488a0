package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sort"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/mgpai22/promo/internal/logging"
)

// Strategy names the decode path that produced an image.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyExtended Strategy = "extended"
	StrategyRaw      Strategy = "raw"
)

// ReasonNotFound is reported when the input path does not exist.
const ReasonNotFound = "not found"

// Result is the outcome of loading one image. When OK is false, Image and
// Path are empty and Reason explains why.
type Result struct {
	OK       bool
	Image    *image.RGBA
	Path     string
	Strategy Strategy
	Reason   string
}

type decoder struct {
	name   string
	decode func(io.Reader) (image.Image, error)
}

// std codecs only; image.Decode would also pick up the x/image formats
// registered by the imports below
var directDecoders = []decoder{
	{"png", png.Decode},
	{"jpeg", jpeg.Decode},
	{"gif", gif.Decode},
}

var extendedDecoders = []decoder{
	{"webp", webp.Decode},
	{"bmp", bmp.Decode},
	{"tiff", tiff.Decode},
}

// magic numbers searched for by the raw strategy
var signatures = [][]byte{
	[]byte("\x89PNG\r\n\x1a\n"),
	[]byte("\xff\xd8\xff"),
	[]byte("GIF87a"),
	[]byte("GIF89a"),
	[]byte("RIFF"),
	[]byte("II*\x00"),
	[]byte("MM\x00*"),
	[]byte("BM"),
}

// Loader decodes images with progressively more lenient strategies and
// re-encodes them as opaque PNGs inside a workspace.
type Loader struct {
	ws     *Workspace
	logger *logging.Logger
}

func NewLoader(ws *Workspace, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{ws: ws, logger: logger}
}

// Load never fails hard: problems come back as a Result with OK unset.
func (l *Loader) Load(path string) Result {
	if _, err := os.Stat(path); err != nil {
		l.logger.Warnw("image unavailable", "path", path, "reason", ReasonNotFound)
		return Result{Reason: ReasonNotFound}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warnw("image unreadable", "path", path, "error", err)
		return Result{Reason: fmt.Sprintf("read: %v", err)}
	}

	img, strategy, err := decode(data)
	if err != nil {
		l.logger.Warnw("image undecodable", "path", path, "error", err)
		return Result{Reason: err.Error()}
	}

	rgba := Normalize(img)
	out, err := l.ws.WritePNG(path, rgba)
	if err != nil {
		l.logger.Warnw("image re-encode failed", "path", path, "error", err)
		return Result{Reason: err.Error()}
	}

	l.logger.Debugw("image loaded",
		"path", path,
		"strategy", strategy,
		"size", fmt.Sprintf("%dx%d", rgba.Bounds().Dx(), rgba.Bounds().Dy()),
	)
	return Result{OK: true, Image: rgba, Path: out, Strategy: strategy}
}

// tries direct, then extended, then raw
func decode(data []byte) (image.Image, Strategy, error) {
	for _, d := range directDecoders {
		if img, err := d.decode(bytes.NewReader(data)); err == nil {
			return img, StrategyDirect, nil
		}
	}

	for _, d := range extendedDecoders {
		if img, err := d.decode(bytes.NewReader(data)); err == nil {
			return img, StrategyExtended, nil
		}
	}

	if img, err := decodeRaw(data); err == nil {
		return img, StrategyRaw, nil
	}

	return nil, "", errors.New("no decoder accepted the file")
}

// skips leading bytes up to each known signature, nearest first
func decodeRaw(data []byte) (image.Image, error) {
	var offsets []int
	seen := map[int]bool{}
	for _, sig := range signatures {
		idx := bytes.Index(data, sig)
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		offsets = append(offsets, idx)
	}
	sort.Ints(offsets)

	for _, off := range offsets {
		if img, _, err := image.Decode(bytes.NewReader(data[off:])); err == nil {
			return img, nil
		}
	}
	return nil, errors.New("no image signature found")
}

// Normalize converts any color model to opaque RGBA, keeping the straight
// (non-premultiplied) color values and discarding alpha.
func Normalize(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return out
}
