package video

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/promo/internal/audio"
	"github.com/mgpai22/promo/internal/config"
	ffmpegbin "github.com/mgpai22/promo/internal/ffmpeg"
	"github.com/mgpai22/promo/internal/logging"
	"github.com/mgpai22/promo/internal/render"
	"github.com/mgpai22/promo/internal/timeline"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// renders the timeline, with optional narration, to outputPath
	Assemble(
		ctx context.Context,
		tl *timeline.Timeline,
		narrationPath, outputPath string,
	) (*Result, error)

	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)
}

// encoder settings for the final file
type ExportOptions struct {
	Width      int
	Height     int
	FPS        int
	Bitrate    string
	Preset     string
	VideoCodec string
	AudioCodec string
	PixFmt     string
	Background color.RGBA
}

func DefaultExportOptions() ExportOptions {
	opts, _ := ExportOptionsFromConfig(config.Default())
	return opts
}

func ExportOptionsFromConfig(cfg config.Config) (ExportOptions, error) {
	bg, err := render.ParseHex(cfg.Palette.Background)
	if err != nil {
		return ExportOptions{}, fmt.Errorf("background color: %w", err)
	}
	return ExportOptions{
		Width:      cfg.Video.Width,
		Height:     cfg.Video.Height,
		FPS:        cfg.Video.FPS,
		Bitrate:    cfg.Video.Bitrate,
		Preset:     cfg.Video.Preset,
		VideoCodec: cfg.Video.VideoCodec,
		AudioCodec: cfg.Video.AudioCodec,
		PixFmt:     cfg.Video.PixFmt,
		Background: bg,
	}, nil
}

// narration prepared for muxing
type AudioTrack struct {
	Path string
	Plan audio.FitPlan
}

// outcome of an export
type Result struct {
	Path     string
	Expected float64
	Info     *Info
	HasAudio bool

	// nil for a silent export
	Narration *AudioTrack
}

// default implementation using ffmpeg
type Exporter struct {
	opts   ExportOptions
	logger *logging.Logger
}

func NewExporter(opts ExportOptions, logger *logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Exporter{opts: opts, logger: logger}
}

// composites every element, muxes narration when present, encodes, and then
// probes the result
func (e *Exporter) Assemble(
	ctx context.Context,
	tl *timeline.Timeline,
	narrationPath, outputPath string,
) (*Result, error) {
	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timeline: %w", err)
	}
	if len(tl.Elements) == 0 {
		return nil, fmt.Errorf("timeline has no elements")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	track := e.prepareAudio(ctx, narrationPath, tl.Duration())

	stream := e.Graph(tl, track, outputPath)
	e.logger.Infow("encoding",
		"output", outputPath,
		"elements", len(tl.Elements),
		"duration", tl.Duration(),
		"audio", track != nil,
	)
	e.logger.Debugw("ffmpeg arguments", "args", strings.Join(stream.GetArgs(), " "))

	if err := ffmpegbin.Run(ctx, stream.GetArgs()); err != nil {
		return nil, fmt.Errorf("ffmpeg export failed: %w", err)
	}

	res := &Result{Path: outputPath, Expected: tl.Duration(), HasAudio: track != nil, Narration: track}

	info, err := e.GetInfo(ctx, outputPath)
	if err != nil {
		e.logger.Warnw("could not verify output", "path", outputPath, "error", err)
		return res, nil
	}
	res.Info = info
	e.verify(res)
	return res, nil
}

// a narration that cannot be probed or planned is dropped, not fatal
func (e *Exporter) prepareAudio(ctx context.Context, narrationPath string, videoSeconds float64) *AudioTrack {
	if narrationPath == "" {
		return nil
	}

	dur, err := audio.GetDuration(ctx, narrationPath)
	if err != nil {
		e.logger.Warnw("narration unusable, exporting silent video", "path", narrationPath, "error", err)
		return nil
	}

	plan, err := audio.PlanFit(dur.Seconds(), videoSeconds)
	if err != nil {
		e.logger.Warnw("narration unusable, exporting silent video", "path", narrationPath, "error", err)
		return nil
	}

	e.logger.Infow("narration fitted",
		"audio_seconds", plan.AudioSeconds,
		"repetitions", plan.Repetitions,
		"trim_seconds", plan.TrimSeconds,
	)
	return &AudioTrack{Path: narrationPath, Plan: plan}
}

// Graph builds the ffmpeg stream: a solid base the length of the timeline,
// each element overlaid in z-order from its start time, and the narration
// looped and trimmed to the same length.
func (e *Exporter) Graph(tl *timeline.Timeline, track *AudioTrack, outputPath string) *ffmpeg.Stream {
	total := tl.Duration()

	base := ffmpeg.Input(
		fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
			render.FFmpegColor(e.opts.Background), e.opts.Width, e.opts.Height, e.opts.FPS, seconds(total)),
		ffmpeg.KwArgs{"f": "lavfi"},
	)

	composite := base
	for _, el := range tl.Elements {
		composite = composite.Overlay(e.layer(el), "pass", ffmpeg.KwArgs{
			"x": el.X,
			"y": el.Y,
		})
	}

	streams := []*ffmpeg.Stream{composite}
	out := ffmpeg.KwArgs{
		"c:v":     e.opts.VideoCodec,
		"b:v":     e.opts.Bitrate,
		"preset":  e.opts.Preset,
		"r":       e.opts.FPS,
		"pix_fmt": e.opts.PixFmt,
		"t":       seconds(total),
	}

	if track != nil {
		inArgs := ffmpeg.KwArgs{}
		if loops := track.Plan.StreamLoop(); loops > 0 {
			inArgs["stream_loop"] = loops
		}
		narration := ffmpeg.Input(track.Path, inArgs).
			Audio().
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": seconds(track.Plan.TrimSeconds)}).
			Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})
		streams = append(streams, narration)
		out["c:a"] = e.opts.AudioCodec
	}

	return ffmpeg.Output(streams, outputPath, out).OverWriteOutput()
}

// still image looped for the element's lifetime and shifted to its start
func (e *Exporter) layer(el timeline.Element) *ffmpeg.Stream {
	s := ffmpeg.Input(el.Path, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": e.opts.FPS,
		"t":         seconds(el.Duration),
	}).Filter("format", ffmpeg.Args{"rgba"})

	if el.FadeIn > 0 {
		s = s.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{
			"t":     "in",
			"st":    0,
			"d":     seconds(el.FadeIn),
			"alpha": 1,
		})
	}
	if el.FadeOut > 0 {
		s = s.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{
			"t":     "out",
			"st":    seconds(el.Duration - el.FadeOut),
			"d":     seconds(el.FadeOut),
			"alpha": 1,
		})
	}

	return s.Filter("setpts", ffmpeg.Args{fmt.Sprintf("PTS-STARTPTS+%s/TB", seconds(el.Start))})
}

// warns when the probed length is off by more than one frame
func (e *Exporter) verify(res *Result) {
	got := res.Info.Duration.Seconds()
	frame := 1 / float64(e.opts.FPS)
	if math.Abs(got-res.Expected) > frame {
		e.logger.Warnw("output duration differs from timeline",
			"expected", res.Expected,
			"actual", got,
			"tolerance", frame,
		)
		return
	}
	e.logger.Infow("output verified",
		"duration", got,
		"resolution", fmt.Sprintf("%dx%d", res.Info.Width, res.Info.Height),
		"audio", res.Info.HasAudio,
	)
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// retrieves video file information
func (e *Exporter) GetInfo(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	out, err := ffmpegbin.Probe(ctx, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	})
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseInfo(out)
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

func parseInfo(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if probe.Format.Duration != "" {
		secs, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	foundVideo := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.Codec = s.CodecName
			info.FrameRate = parseRate(s.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if !foundVideo {
		return nil, fmt.Errorf("no video stream found")
	}
	return info, nil
}

// "30000/1001" or "30"
func parseRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// shortest decimal form, so 48 stays "48" and 4.5 stays "4.5"
func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
