package cli

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/promo/internal/asset"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail",
	Short: "Render a single frame of the promo to PNG",
	Long: `Lay out the timeline and composite the frame at --at seconds, with fades
applied, without running ffmpeg.

Examples:
  promo thumbnail
  promo thumbnail --at 14 --out shot.png`,
	Args: cobra.NoArgs,
	RunE: runThumbnail,
}

func init() {
	rootCmd.AddCommand(thumbnailCmd)

	thumbnailCmd.Flags().
		Float64("at", 2.5, "Time in seconds of the frame to render")
	thumbnailCmd.Flags().
		StringP("out", "o", "", "Output PNG path (default promo/thumbnail.png)")
}

func runThumbnail(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetFloat64("at")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(cfg.OutputDir(), "thumbnail.png")
	}

	p := newPipeline(cfg, logger)
	if err := p.thumbnail(cmd.Context(), at, out); err != nil {
		return err
	}

	absOut, _ := filepath.Abs(out)
	fmt.Fprintf(cmd.OutOrStdout(), "Thumbnail written: %s (t=%.2fs)\n", absOut, at)
	return nil
}

func (p *pipeline) thumbnail(ctx context.Context, at float64, out string) error {
	story, err := p.story(ctx)
	if err != nil {
		return err
	}

	ws, err := asset.NewWorkspace()
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer ws.Close()

	tl, err := p.layout(ws, story.sections)
	if err != nil {
		return err
	}
	if at < 0 || at >= tl.Duration() {
		return fmt.Errorf("--at must be within [0, %g), got %g", tl.Duration(), at)
	}

	return writePNG(out, tl.Compose(at))
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	err = png.Encode(w, img)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
