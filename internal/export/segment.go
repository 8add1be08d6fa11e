package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/clipforge/clipforge/internal/timeline"
)

// Intermediate segments use a fast-preset, high-quality encode; the
// final pass sets the delivered quality.
const (
	segmentCRF    = 18
	segmentPreset = "veryfast"
)

// encodeSegments normalizes every timeline clip into a fixed-resolution,
// constant-frame-rate, audio-stripped intermediate file. CFR matters:
// the concat demuxer stream-copies, so every segment must share one
// timebase. Progress covers the first 60% of the job as a fraction of
// segments completed.
func (e *Exporter) encodeSegments(
	ctx context.Context,
	opts timeline.ExportOptions,
	ffmpegPath, tempDir string,
	progress func(int),
) ([]string, error) {
	segments := make([]string, len(opts.Clips))
	var completed atomic.Int64

	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, clip := range opts.Clips {
		i, clip := i, clip
		segPath := filepath.Join(tempDir, fmt.Sprintf("segment_%03d.mp4", i))
		segments[i] = segPath

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			e.log.Infow("encoding segment",
				"index", i, "source", clip.FilePath,
				"sourceStart", clip.SourceStart, "sourceEnd", clip.SourceEnd)

			if err := e.encodeSegment(gctx, opts, clip, ffmpegPath, segPath); err != nil {
				return SegmentEncodeError{Index: i, FilePath: clip.FilePath, Err: err}
			}
			if info, err := os.Stat(segPath); err != nil || info.Size() == 0 {
				return SegmentMissingError{
					Index:       i,
					FilePath:    clip.FilePath,
					SegmentPath: segPath,
				}
			}

			done := completed.Add(1)
			progress(int(60 * done / int64(len(opts.Clips))))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return segments, nil
}

func (e *Exporter) encodeSegment(
	ctx context.Context,
	opts timeline.ExportOptions,
	clip timeline.Clip,
	ffmpegPath, segPath string,
) error {
	// aspect-fill with center crop, not letterbox: scale up to cover
	// the target frame, then crop the overflow
	scaleCrop := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		opts.Width, opts.Height, opts.Width, opts.Height,
	)

	stream := ffmpeggo.Input(clip.FilePath, ffmpeggo.KwArgs{
		"ss": clip.SourceStart,
		"to": clip.SourceEnd,
	}).Output(segPath, ffmpeggo.KwArgs{
		"vf":       scaleCrop,
		"an":       "",
		"r":        opts.FPS,
		"fps_mode": "cfr",
		"c:v":      "libx264",
		"preset":   segmentPreset,
		"crf":      segmentCRF,
		"pix_fmt":  "yuv420p",
	}).OverWriteOutput().SetFfmpegPath(ffmpegPath)

	cmd := stream.Compile()
	// rebind under the job context; Compile builds an uncancellable command
	rebound := reboundCommand(ctx, cmd)

	_, err := e.runner.RunCmd(rebound)
	return err
}
