package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// concatSegments losslessly joins the ordered segments into one
// intermediate file via the concat demuxer's stream-copy mode. The
// caller must pass a canonicalized temp dir: alias/short-form paths are
// not resolvable through the demuxer's list file on some platforms.
func (e *Exporter) concatSegments(
	ctx context.Context,
	segments []string,
	ffmpegPath, tempDir string,
) (string, error) {
	listPath := filepath.Join(tempDir, "segments.txt")
	concatPath := filepath.Join(tempDir, "concat.mp4")

	var sb strings.Builder
	for _, seg := range segments {
		// concat list entries always use forward slashes
		fmt.Fprintf(&sb, "file '%s'\n", filepath.ToSlash(seg))
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0o644); err != nil {
		return "", ConcatError{Err: fmt.Errorf("write concat list: %w", err)}
	}

	e.log.Infow("concatenating segments", "count", len(segments))

	stream := ffmpeggo.Input(listPath, ffmpeggo.KwArgs{
		"f":    "concat",
		"safe": "0",
	}).Output(concatPath, ffmpeggo.KwArgs{
		"c": "copy",
	}).OverWriteOutput().SetFfmpegPath(ffmpegPath)

	cmd := reboundCommand(ctx, stream.Compile())
	output, err := e.runner.RunCmd(cmd)
	if err != nil {
		return "", ConcatError{Err: err, Output: output}
	}

	if info, statErr := os.Stat(concatPath); statErr != nil || info.Size() == 0 {
		return "", ConcatError{Err: fmt.Errorf("engine produced no concat output at %s", concatPath)}
	}

	return concatPath, nil
}
