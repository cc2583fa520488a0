package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/promo/internal/ffmpeg"
)

// layout of raw PCM returned by speech providers
type PCMFormat struct {
	Format     string // ffmpeg sample format name (s16le)
	SampleRate int    // Sample rate in Hz
	Channels   int    // Number of channels (1=mono, 2=stereo)
}

// Gemini TTS output
func DefaultPCMFormat() PCMFormat {
	return PCMFormat{
		Format:     "s16le",
		SampleRate: 24000,
		Channels:   1,
	}
}

// settings for the encoded voiceover
type EncodeOptions struct {
	Codec   string // ffmpeg audio encoder
	Bitrate string // Bitrate (e.g., "128k")
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Codec:   "libmp3lame",
		Bitrate: "128k",
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an audio/video file
func GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	out, err := ffmpegbin.Probe(ctx, durationArgs(filePath))
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeDuration(out)
}

func durationArgs(filePath string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	}
}

func parseProbeDuration(data []byte) (time.Duration, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// how a narration track is stretched onto the video
type FitPlan struct {
	AudioSeconds float64
	VideoSeconds float64
	// total plays of the source; StreamLoop is this minus one
	Repetitions int
	// final track length, always equal to the video length
	TrimSeconds float64
}

// extra loops passed to ffmpeg's -stream_loop
func (p FitPlan) StreamLoop() int {
	return p.Repetitions - 1
}

// playable length before trimming
func (p FitPlan) LoopedSeconds() float64 {
	return float64(p.Repetitions) * p.AudioSeconds
}

// PlanFit loops a shorter track floor(video/audio)+1 times and trims any
// track to exactly the video length.
func PlanFit(audioSeconds, videoSeconds float64) (FitPlan, error) {
	if audioSeconds <= 0 || math.IsNaN(audioSeconds) || math.IsInf(audioSeconds, 0) {
		return FitPlan{}, fmt.Errorf("invalid audio duration %v", audioSeconds)
	}
	if videoSeconds <= 0 || math.IsNaN(videoSeconds) || math.IsInf(videoSeconds, 0) {
		return FitPlan{}, fmt.Errorf("invalid video duration %v", videoSeconds)
	}

	reps := 1
	if audioSeconds < videoSeconds {
		reps = int(math.Floor(videoSeconds/audioSeconds)) + 1
	}

	return FitPlan{
		AudioSeconds: audioSeconds,
		VideoSeconds: videoSeconds,
		Repetitions:  reps,
		TrimSeconds:  videoSeconds,
	}, nil
}

// encodes raw PCM into a compressed audio file
func PCMToFile(
	ctx context.Context,
	inputPath, outputPath string,
	pcm PCMFormat,
	opts EncodeOptions,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stream := pcmStream(inputPath, outputPath, pcm, opts)
	if err := ffmpegbin.Run(ctx, stream.GetArgs()); err != nil {
		return fmt.Errorf("pcm conversion failed: %w", err)
	}

	return nil
}

func pcmStream(inputPath, outputPath string, pcm PCMFormat, opts EncodeOptions) *ffmpeg.Stream {
	in := ffmpeg.KwArgs{
		"f":  pcm.Format,
		"ar": pcm.SampleRate,
		"ac": pcm.Channels,
	}

	codec := opts.Codec
	if codec == "" {
		codec = "libmp3lame"
	}

	out := ffmpeg.KwArgs{
		"vn":     "", // No video
		"acodec": codec,
	}
	if opts.Bitrate != "" {
		out["b:a"] = opts.Bitrate
	}

	return ffmpeg.Input(inputPath, in).
		Output(outputPath, out).
		OverWriteOutput()
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}
