package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clipforge",
	Short: "Export compositing engine for ClipForge projects",
	Long: `ClipForge renders multi-track editing projects into finished
video files: per-clip segment normalization, lossless concatenation,
caption and effect compositing, and audio mixing, all driven through
an external transcoding engine.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; flags and real env always win
		_ = godotenv.Load()
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
