package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	bundleVersion = "6.1"
	bundleBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	envFFmpeg  = "PROMO_FFMPEG_PATH"
	envFFprobe = "PROMO_FFPROBE_PATH"
)

// BinaryPaths locates the ffmpeg and ffprobe executables.
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
	// where the pair came from: env, path, cache, embedded or download
	Origin string
}

func (p BinaryPaths) complete() bool {
	return p.FFmpeg != "" && p.FFprobe != ""
}

var (
	resolveOnce sync.Once
	resolveErr  error
	resolved    BinaryPaths
)

// Ensure resolves the binaries once per process.
func Ensure() (BinaryPaths, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = resolve(runtime.GOOS, runtime.GOARCH)
	})
	return resolved, resolveErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// Installed returns binaries reachable through the env overrides or PATH,
// without touching the cache or the network.
func Installed() (BinaryPaths, bool) {
	paths := fromEnvAndPath()
	return paths, paths.complete()
}

// env override, then PATH, then the per-user cache, which is filled from the
// embedded bundle when built with ffmpeg_embedded or downloaded otherwise
func resolve(goos, goarch string) (BinaryPaths, error) {
	paths := fromEnvAndPath()
	if paths.complete() {
		return paths, nil
	}

	assetName, err := bundleAsset(goos, goarch)
	if err != nil {
		return BinaryPaths{}, fmt.Errorf("ffmpeg not found on PATH and %w", err)
	}

	installDir := cacheDir(goos, goarch)
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+exeSuffix(goos)),
		FFprobe: filepath.Join(installDir, "ffprobe"+exeSuffix(goos)),
		Origin:  "cache",
	}
	if binariesExist(cached) {
		return cached, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	cached.Origin = "embedded"
	found, err := unpackEmbedded(assetName, installDir)
	if err != nil {
		return BinaryPaths{}, err
	}
	if !found {
		cached.Origin = "download"
		if err := download(assetName, installDir); err != nil {
			return BinaryPaths{}, err
		}
	}

	if !binariesExist(cached) {
		return BinaryPaths{}, fmt.Errorf("ffmpeg binaries missing after %s", cached.Origin)
	}
	if err := markExecutable(goos, cached); err != nil {
		return BinaryPaths{}, err
	}
	return cached, nil
}

func fromEnvAndPath() BinaryPaths {
	paths := BinaryPaths{
		FFmpeg:  os.Getenv(envFFmpeg),
		FFprobe: os.Getenv(envFFprobe),
		Origin:  "env",
	}
	if paths.complete() {
		return paths
	}

	paths.Origin = "path"
	if paths.FFmpeg == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	return paths
}

func cacheDir(goos, goarch string) string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "promo", "ffmpeg", bundleVersion, goos, goarch)
}

func bundleAsset(goos, goarch string) (string, error) {
	platforms := map[string]string{
		"linux/amd64":   "linux-64",
		"linux/arm64":   "linux-arm-64",
		"darwin/amd64":  "macos-64",
		"windows/amd64": "win-64",
	}
	suffix, ok := platforms[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("no bundled ffmpeg for %s/%s", goos, goarch)
	}
	return "ffmpeg-" + bundleVersion + "-" + suffix + ".zip", nil
}

func download(assetName, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", bundleBaseURL, bundleVersion, assetName)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	return unpack(assetName, resp.Body, installDir)
}

func unpackEmbedded(assetName, installDir string) (bool, error) {
	reader, ok, err := openEmbeddedAsset(assetName)
	if err != nil || !ok {
		return ok, err
	}
	defer func() { _ = reader.Close() }()

	return true, unpack(assetName, reader, installDir)
}

// zip needs random access, so the stream is spooled to a temp file first
func unpack(assetName string, reader io.Reader, installDir string) error {
	tmp, err := os.CreateTemp("", "promo-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmp.Name()
	defer func() { _ = os.Remove(archivePath) }()

	_, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if err := extractBinaries(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

func extractBinaries(archivePath, installDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	wanted := map[string]bool{"ffmpeg": false, "ffprobe": false}
	for _, file := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(file.Name)), ".exe")
		if _, ok := wanted[name]; !ok {
			continue
		}
		dest := filepath.Join(installDir, strings.ToLower(filepath.Base(file.Name)))
		if err := extractFile(file, dest); err != nil {
			return err
		}
		wanted[name] = true
	}

	for name, found := range wanted {
		if !found {
			return fmt.Errorf("archive has no %s binary", name)
		}
	}
	return nil
}

func extractFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", file.Name, err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func markExecutable(goos string, paths BinaryPaths) error {
	if goos == "windows" {
		return nil
	}
	for _, p := range []string{paths.FFmpeg, paths.FFprobe} {
		if err := os.Chmod(p, 0o755); err != nil {
			return fmt.Errorf("chmod %s: %w", p, err)
		}
	}
	return nil
}

func binariesExist(paths BinaryPaths) bool {
	return fileExists(paths.FFmpeg) && fileExists(paths.FFprobe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func exeSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
