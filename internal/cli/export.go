package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/export"
	"github.com/clipforge/clipforge/internal/ffmpeg"
	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/timeline"
)

var exportCmd = &cobra.Command{
	Use:   "export [project_file]",
	Short: "Render a project snapshot into a video file",
	Long: `Render the given project snapshot (YAML or JSON) into its output
video. The snapshot carries the full timeline: visual clips, captions,
timed effects, and audio clips, plus the target resolution, frame
rate, and quality.

Examples:
  clipforge export project.yaml
  clipforge export project.json --debug
  clipforge export project.yaml -o out.mp4 --crf 20`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Override the project's output path")
	exportCmd.Flags().Int("crf", 0, "Override the project's CRF quality setting")
	exportCmd.Flags().Bool("debug", false, "Retain intermediate artifacts and a command log")
	exportCmd.Flags().Int("concurrency", 0, "Parallel segment encode workers (default sequential)")
}

func runExport(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	ctx := context.Background()

	opts, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		opts.OutputPath = out
	}
	if crf, _ := cmd.Flags().GetInt("crf"); crf > 0 {
		opts.CRF = crf
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opts.Debug = true
	}
	if workers, _ := cmd.Flags().GetInt("concurrency"); workers > 0 {
		opts.Concurrency = workers
	}

	if err := validateProject(opts); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	preflight(ctx, opts.Clips)

	logger.Infow("starting export",
		"project", projectPath,
		"output", opts.OutputPath,
		"duration", fmt.Sprintf("%.2fs", opts.Duration()),
	)

	exporter := export.New(logger, fonts.NewDiskResolver(logger, ""))

	start := time.Now()
	result, err := exporter.Export(ctx, opts, func(percent int) {
		fmt.Fprintf(os.Stderr, "\rExporting: %3d%%", percent)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("Export complete: %s (%s)\n", opts.OutputPath, time.Since(start).Round(time.Second))
	if result.DebugBundlePath != "" {
		fmt.Printf("  Debug bundle: %s\n", result.DebugBundlePath)
	}
	return nil
}

// preflight probes every clip source and warns about sources the
// engine cannot read or trims that overrun the source duration. These
// are warnings only; the encode itself is the authority.
func preflight(ctx context.Context, clips []timeline.Clip) {
	seen := map[string]time.Duration{}
	for i, clip := range clips {
		dur, ok := seen[clip.FilePath]
		if !ok {
			probed, err := ffmpeg.Duration(ctx, clip.FilePath)
			if err != nil {
				logger.Warnw("clip source not probeable", "index", i, "file", clip.FilePath, "error", err)
				continue
			}
			dur = probed
			seen[clip.FilePath] = dur
		}
		if clip.SourceEnd > dur.Seconds()+0.001 {
			logger.Warnw("clip trim overruns source duration",
				"index", i, "file", clip.FilePath,
				"sourceEnd", clip.SourceEnd, "sourceDuration", dur.Seconds())
		}
	}
}
