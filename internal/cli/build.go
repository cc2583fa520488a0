package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/promo/internal/asset"
	"github.com/mgpai22/promo/internal/captions"
	"github.com/mgpai22/promo/internal/config"
	"github.com/mgpai22/promo/internal/video"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the promo video",
	Long: `Render the full promo video: narration, title cards, screenshot overlays,
call to action and ending card, encoded to H.264/AAC at 1920x1080, 30 fps.

Missing screenshots are skipped and a missing background falls back to the
palette color. If no speech provider is available the video is silent.

Examples:
  promo build
  promo build --tts-provider gemini
  promo build --language ja --translate-provider anthropic
  promo build --voiceover narration.mp3 --no-captions
  promo build --captions-source speech
  promo --root ../pixel-fish-tank -v`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addBuildFlags(buildCmd)
}

// flag overrides shared by build and the bare root command
type buildOptions struct {
	TTSProvider       string
	Language          string
	TranslateProvider string
	NoCaptions        bool
	CaptionsSource    string
	Voiceover         string
}

func addBuildFlags(cmd *cobra.Command) {
	addCopyFlags(cmd)
	cmd.Flags().
		Bool("no-captions", false, "Do not write the caption sidecar")
	cmd.Flags().
		String("captions-source", captionsFromScreen, "Caption cues from on-screen text (screen) or the transcribed voiceover (speech)")
	cmd.Flags().
		String("voiceover", "", "Use an existing audio file instead of synthesizing narration")
}

// flags that change the narration and on-screen text
func addCopyFlags(cmd *cobra.Command) {
	cmd.Flags().
		String("tts-provider", "", "Speech provider (openai, gemini, none)")
	cmd.Flags().
		StringP("language", "l", "", "Target language as a BCP 47 tag (e.g., ja, es, pt-BR); empty keeps English")
	cmd.Flags().
		String("translate-provider", "", "Translation provider (gemini, openai, anthropic)")
}

func buildOptionsFromFlags(cmd *cobra.Command) buildOptions {
	var o buildOptions
	o.TTSProvider, _ = cmd.Flags().GetString("tts-provider")
	o.Language, _ = cmd.Flags().GetString("language")
	o.TranslateProvider, _ = cmd.Flags().GetString("translate-provider")
	o.NoCaptions, _ = cmd.Flags().GetBool("no-captions")
	o.CaptionsSource, _ = cmd.Flags().GetString("captions-source")
	o.Voiceover, _ = cmd.Flags().GetString("voiceover")
	return o
}

func (o buildOptions) validate() error {
	switch strings.ToLower(o.TTSProvider) {
	case "", "openai", "gemini", "none":
	default:
		return fmt.Errorf("unsupported tts provider %q: use openai, gemini, or none", o.TTSProvider)
	}
	switch strings.ToLower(o.TranslateProvider) {
	case "", "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported translate provider %q: use gemini, openai, or anthropic", o.TranslateProvider)
	}
	switch o.CaptionsSource {
	case "", captionsFromScreen, captionsFromSpeech:
	default:
		return fmt.Errorf("unsupported captions source %q: use screen or speech", o.CaptionsSource)
	}
	return nil
}

// returns c with the flag overrides applied
func (o buildOptions) apply(c config.Config) config.Config {
	if o.TTSProvider != "" {
		c.Narration.Provider = strings.ToLower(o.TTSProvider)
	}
	if o.Language != "" {
		c.Localize.Language = o.Language
	}
	if o.TranslateProvider != "" {
		c.Localize.Provider = strings.ToLower(o.TranslateProvider)
	}
	if o.NoCaptions {
		c.Captions = false
	}
	return c
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts := buildOptionsFromFlags(cmd)
	if err := opts.validate(); err != nil {
		return err
	}

	p := newPipeline(opts.apply(cfg), logger)
	report, err := p.build(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.table())
	return nil
}

// what a finished build produced
type buildReport struct {
	Output   string
	Duration float64
	Width    int
	Height   int
	Audio    bool
	Language string
	Captions string
	Sections int
	Elements int
	Elapsed  time.Duration
}

func (r *buildReport) table() string {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no (silent)"
	}
	captionsPath := r.Captions
	if captionsPath == "" {
		captionsPath = "-"
	}

	rows := [][]string{
		{"Output", r.Output},
		{"Duration", fmt.Sprintf("%.2fs", r.Duration)},
		{"Resolution", fmt.Sprintf("%dx%d", r.Width, r.Height)},
		{"Narration", yesNo(r.Audio)},
		{"Language", r.Language},
		{"Captions", captionsPath},
		{"Sections", fmt.Sprintf("%d", r.Sections)},
		{"Elements", fmt.Sprintf("%d", r.Elements)},
		{"Elapsed", r.Elapsed.Round(time.Millisecond).String()},
	}
	return renderTable("Promo video", []string{"Item", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}

// build runs the whole pipeline: copy, narration, layout, export, captions.
func (p *pipeline) build(ctx context.Context, opts buildOptions) (*buildReport, error) {
	started := time.Now()

	story, err := p.story(ctx)
	if err != nil {
		return nil, err
	}

	narrationPath, _ := p.narrate(ctx, story.script, opts.Voiceover)

	ws, err := asset.NewWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	defer ws.Close()

	tl, err := p.layout(ws, story.sections)
	if err != nil {
		return nil, err
	}

	exportOpts, err := video.ExportOptionsFromConfig(p.cfg)
	if err != nil {
		return nil, err
	}

	res, err := video.NewExporter(exportOpts, p.logger.Stage("export")).
		Assemble(ctx, tl, narrationPath, p.cfg.OutputPath())
	if err != nil {
		return nil, err
	}

	absOutput, _ := filepath.Abs(res.Path)
	report := &buildReport{
		Output:   absOutput,
		Duration: res.Expected,
		Width:    exportOpts.Width,
		Height:   exportOpts.Height,
		Audio:    res.HasAudio,
		Language: story.language,
		Sections: len(tl.Sections),
		Elements: len(tl.Elements),
	}
	if res.Info != nil {
		report.Duration = res.Info.Duration.Seconds()
		report.Width, report.Height = res.Info.Width, res.Info.Height
	}

	if p.cfg.Captions {
		track := p.captionTrack(ctx, opts.CaptionsSource, tl, res.Narration, story.language)
		path := p.cfg.CaptionsPath()
		if err := captions.Save(track, path, tl.Frame.Size()); err != nil {
			p.logger.Warnw("failed to write captions", "path", path, "error", err)
		} else {
			report.Captions = path
			p.logger.Infow("captions written", "path", path, "cues", len(track.Entries))
		}
	}

	report.Elapsed = time.Since(started)
	return report, nil
}
