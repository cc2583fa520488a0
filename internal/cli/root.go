package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/promo/internal/config"
	"github.com/mgpai22/promo/internal/logging"
)

var (
	verbose    bool
	configPath string
	rootDir    string

	logger *logging.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "promo",
	Short: "Assemble the Pixel Fish Tank promo video",
	Long: `Promo renders the Pixel Fish Tank promotional video from the game's
screenshots and assets: title cards, screenshot overlays, a call to action
and an ending card, with an optional AI voiceover.

Running promo without a subcommand is the same as promo build.

API keys are read from the environment or a .env file:
  OPENAI_API_KEY, GEMINI_API_KEY, ANTHROPIC_API_KEY`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("root") {
			loaded = loaded.WithRoot(rootDir)
		}
		cfg = loaded
		return nil
	},
	RunE: runBuild,
}

// Execute runs the root command; an interrupt cancels in-flight requests and
// kills a running ffmpeg.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && logger != nil {
		logger.Errorw("promo failed", "error", err)
	} else if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().
		StringVar(&rootDir, "root", ".", "Project root holding screenshots/ and assets/")

	addBuildFlags(rootCmd)
}
