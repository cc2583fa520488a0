package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Video holds the fixed output parameters.
type Video struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FPS        int    `toml:"fps"`
	Bitrate    string `toml:"bitrate"`
	Preset     string `toml:"preset"`
	VideoCodec string `toml:"video_codec"`
	AudioCodec string `toml:"audio_codec"`
	PixFmt     string `toml:"pix_fmt"`
}

// Palette holds the hex colors used for backgrounds and text.
type Palette struct {
	Background string `toml:"background"`
	Text       string `toml:"text"`
	Accent     string `toml:"accent"`
	Website    string `toml:"website"`
}

// Paths describes the input layout and output files, relative to Root.
type Paths struct {
	Root           string `toml:"root"`
	ScreenshotsDir string `toml:"screenshots_dir"`
	AssetsDir      string `toml:"assets_dir"`
	OutputDir      string `toml:"output_dir"`
	OutputFile     string `toml:"output_file"`
	VoiceoverFile  string `toml:"voiceover_file"`
	CaptionsFile   string `toml:"captions_file"`
}

// Fonts lists font files tried in order before the embedded fallback.
type Fonts struct {
	Paths []string `toml:"paths"`
}

// Narration configures the speech synthesis provider.
type Narration struct {
	Provider string  `toml:"provider"`
	Model    string  `toml:"model"`
	Voice    string  `toml:"voice"`
	Speed    float64 `toml:"speed"`
}

// Localize configures optional translation of on-screen text and narration.
type Localize struct {
	Language string `toml:"language"`
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
}

// Config is built once at startup and passed by value to every component.
type Config struct {
	Video     Video     `toml:"video"`
	Palette   Palette   `toml:"palette"`
	Paths     Paths     `toml:"paths"`
	Fonts     Fonts     `toml:"fonts"`
	Narration Narration `toml:"narration"`
	Localize  Localize  `toml:"localize"`
	Captions  bool      `toml:"captions"`
}

// Load returns the defaults overlaid with the TOML file at path. An empty path
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Config{}, fmt.Errorf("config %s: %s", path, strictErr.String())
		}
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot render.
func (c Config) Validate() error {
	var errs []error
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		errs = append(errs, fmt.Errorf("video size must be positive, got %dx%d", c.Video.Width, c.Video.Height))
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("video size must be even for yuv420p, got %dx%d", c.Video.Width, c.Video.Height))
	}
	if c.Video.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.Video.FPS))
	}
	if c.Narration.Speed <= 0 || math.IsNaN(c.Narration.Speed) || math.IsInf(c.Narration.Speed, 0) {
		errs = append(errs, fmt.Errorf("narration speed must be a positive number, got %v", c.Narration.Speed))
	}
	for name, hex := range map[string]string{
		"background": c.Palette.Background,
		"text":       c.Palette.Text,
		"accent":     c.Palette.Accent,
		"website":    c.Palette.Website,
	} {
		if !validHex(hex) {
			errs = append(errs, fmt.Errorf("palette.%s: invalid hex color %q", name, hex))
		}
	}
	if strings.TrimSpace(c.Paths.OutputFile) == "" {
		errs = append(errs, errors.New("paths.output_file is required"))
	}
	return errors.Join(errs...)
}

// WithRoot returns a copy rooted at dir.
func (c Config) WithRoot(dir string) Config {
	c.Paths.Root = dir
	return c
}

// FrameSeconds is the duration of a single frame.
func (c Config) FrameSeconds() float64 {
	return 1 / float64(c.Video.FPS)
}

// TextWidth is the pixel width budget for text overlays.
func (c Config) TextWidth() int {
	return int(float64(c.Video.Width) * textWidthFraction)
}

func (c Config) ScreenshotPath(name string) string {
	return filepath.Join(c.Paths.Root, c.Paths.ScreenshotsDir, name)
}

func (c Config) AssetPath(parts ...string) string {
	elems := append([]string{c.Paths.Root, c.Paths.AssetsDir}, parts...)
	return filepath.Join(elems...)
}

func (c Config) BackgroundPath() string {
	return c.AssetPath("tank", "Main_Tank_Background.png")
}

func (c Config) FeaturePath() string {
	return c.AssetPath("feature", "feature.png")
}

func (c Config) IconPath() string {
	return c.AssetPath("icon", "icon.png")
}

func (c Config) OutputDir() string {
	return filepath.Join(c.Paths.Root, c.Paths.OutputDir)
}

func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir(), c.Paths.OutputFile)
}

func (c Config) VoiceoverPath() string {
	return filepath.Join(c.OutputDir(), c.Paths.VoiceoverFile)
}

func (c Config) CaptionsPath() string {
	return filepath.Join(c.OutputDir(), c.Paths.CaptionsFile)
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
