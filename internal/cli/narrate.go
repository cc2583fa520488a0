package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Synthesize only the voiceover",
	Long: `Synthesize the promo voiceover to promo/voiceover.mp3 without rendering
the video. Useful for previewing voices before a full build.

Examples:
  promo narrate
  promo narrate --tts-provider gemini
  promo narrate --language es`,
	Args: cobra.NoArgs,
	RunE: runNarrate,
}

func init() {
	rootCmd.AddCommand(narrateCmd)
	addCopyFlags(narrateCmd)
}

func runNarrate(cmd *cobra.Command, args []string) error {
	opts := buildOptionsFromFlags(cmd)
	if err := opts.validate(); err != nil {
		return err
	}

	p := newPipeline(opts.apply(cfg), logger)
	story, err := p.story(cmd.Context())
	if err != nil {
		return err
	}

	path, ok := p.narrate(cmd.Context(), story.script, "")
	if !ok {
		return fmt.Errorf("no voiceover produced with provider %q", p.cfg.Narration.Provider)
	}

	absPath, _ := filepath.Abs(path)
	fmt.Fprintf(cmd.OutOrStdout(), "Voiceover written: %s\n", absPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  Language: %s\n", story.language)
	return nil
}
