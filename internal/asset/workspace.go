package asset

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Workspace is a scratch directory for normalized and rendered bitmaps.
// Callers own it and remove it with Close, usually via defer.
type Workspace struct {
	dir string

	mu     sync.Mutex
	seq    int
	closed bool
}

// creates a fresh temp directory
func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "promo-work-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Name returns a unique file path inside the workspace for the given stem.
func (w *Workspace) Name(stem, ext string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++

	stem = sanitize(stem)
	if stem == "" {
		stem = "item"
	}
	return filepath.Join(w.dir, fmt.Sprintf("%03d_%s%s", w.seq, stem, ext))
}

// WritePNG encodes img under a unique name and returns its path.
func (w *Workspace) WritePNG(stem string, img image.Image) (string, error) {
	path := w.Name(stem, ".png")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(buf, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// Close removes the directory and everything in it. Safe to call twice.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return os.RemoveAll(w.dir)
}

func sanitize(s string) string {
	s = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
