package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/ffmpeg"
)

var probeCmd = &cobra.Command{
	Use:   "probe [media_file]",
	Short: "Print the duration of a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dur, err := ffmpeg.Duration(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("probe %s: %w", args[0], err)
		}
		fmt.Printf("%s: %s\n", args[0], dur)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
