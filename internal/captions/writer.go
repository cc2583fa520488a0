package captions

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
	Width    int
	Height   int
}

// default ASS play resolution when no frame size is given
var defaultPlayRes = image.Pt(1920, 1080)

// NewWriter returns the writer for format; frame sets the ASS play
// resolution and is ignored by the other formats.
func NewWriter(format Format, frame image.Point) (Writer, error) {
	if frame.X <= 0 || frame.Y <= 0 {
		frame = defaultPlayRes
	}

	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "Pixel Fish Tank Promo",
			FontName: "Arial",
			FontSize: 48,
			Width:    frame.X,
			Height:   frame.Y,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the track to an SRT file
func (w *SRTWriter) Write(track *Track, path string) error {
	var sb strings.Builder
	for i, entry := range track.Entries {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(entry.StartTime),
			formatSRTTime(entry.EndTime)))
		sb.WriteString(entry.Text)
		sb.WriteString("\n\n")
	}
	return writeFile(path, sb.String())
}

// writes the track to a VTT file
func (w *VTTWriter) Write(track *Track, path string) error {
	var sb strings.Builder

	sb.WriteString("WEBVTT")
	if track.Language != "" {
		sb.WriteString("\nLanguage: " + track.Language)
	}
	sb.WriteString("\n\n")

	for i, entry := range track.Entries {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(entry.StartTime),
			formatVTTTime(entry.EndTime)))
		// "-->" is not allowed inside a cue payload
		sb.WriteString(strings.ReplaceAll(entry.Text, "-->", "->"))
		sb.WriteString("\n\n")
	}
	return writeFile(path, sb.String())
}

// writes the track to an ASS file
func (w *ASSWriter) Write(track *Track, path string) error {
	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString(fmt.Sprintf("PlayResX: %d\n", w.Width))
	sb.WriteString(fmt.Sprintf("PlayResY: %d\n\n", w.Height))

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, entry := range track.Entries {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			strings.ReplaceAll(entry.Text, "\n", "\\N")))
	}
	return writeFile(path, sb.String())
}

func formatSRTTime(d time.Duration) string {
	h, m, s, ms := split(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTime(d time.Duration) string {
	h, m, s, ms := split(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatASSTime(d time.Duration) string {
	h, m, s, ms := split(d)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func split(d time.Duration) (h, m, s, ms int) {
	total := int(d.Milliseconds())
	return total / 3600000, total / 60000 % 60, total / 1000 % 60, total % 1000
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create caption directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// caption format based on file extension
func FormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// Save writes track in the format implied by path's extension.
func Save(track *Track, path string, frame image.Point) error {
	w, err := NewWriter(FormatFromExtension(path), frame)
	if err != nil {
		return err
	}
	return w.Write(track, path)
}
