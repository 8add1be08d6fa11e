package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clipforge/clipforge/internal/captions"
	"github.com/clipforge/clipforge/internal/ffmpeg"
	"github.com/clipforge/clipforge/internal/fonts"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/timeline"
)

const (
	finalPreset       = "medium"
	finalAudioCodec   = "aac"
	finalAudioBitrate = "192k"
)

// ProgressFunc receives advisory progress as an integer percentage.
// Within one job the reported values never decrease.
type ProgressFunc func(percent int)

// Exporter renders an editing project snapshot into a single video
// file by driving the external transcoder through dependent passes:
// per-clip segment encode, stream-copy concat, filtered final encode.
type Exporter struct {
	log    *logging.Logger
	runner *ffmpeg.Runner
	fonts  fonts.Resolver
}

// New creates an exporter. A nil resolver disables font downloads and
// leaves caption rendering to system fonts.
func New(log *logging.Logger, fontResolver fonts.Resolver) *Exporter {
	if fontResolver == nil {
		fontResolver = fonts.NewDiskResolver(log, "")
	}
	return &Exporter{
		log:    log,
		runner: ffmpeg.NewRunner(log),
		fonts:  fontResolver,
	}
}

// Export runs one job to completion or failure. There is no
// cancellation beyond ctx; progress is advisory only.
func (e *Exporter) Export(
	ctx context.Context,
	opts timeline.ExportOptions,
	progress ProgressFunc,
) (*timeline.ExportResult, error) {
	if len(opts.Clips) == 0 {
		return nil, NoClipsError{}
	}

	report := monotonic(progress)

	ffmpegPath, err := ffmpeg.FFmpegPath()
	if err != nil {
		return nil, fmt.Errorf("resolve transcoder binary: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "clipforge-export-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	// concat list entries must use the canonical long-form path;
	// short/alias temp paths fail to resolve through the demuxer on
	// some platforms
	if resolved, rerr := filepath.EvalSymlinks(tempDir); rerr == nil {
		tempDir = resolved
	}

	defer func() {
		if opts.Debug {
			logPath := filepath.Join(tempDir, "commands.log")
			if werr := os.WriteFile(logPath, []byte(e.runner.CommandLog()), 0o644); werr != nil {
				e.log.Warnw("writing debug command log failed", "error", werr)
			}
			e.log.Infow("debug bundle retained", "path", tempDir)
			return
		}
		if rerr := os.RemoveAll(tempDir); rerr != nil {
			e.log.Warnw("temp cleanup failed", "path", tempDir, "error", rerr)
		}
	}()

	e.log.Infow("export started",
		"clips", len(opts.Clips),
		"captions", len(opts.Captions),
		"effects", len(opts.Effects),
		"audioClips", len(opts.AudioClips),
		"audio", opts.HasAudio(),
		"output", opts.OutputPath,
		"resolution", fmt.Sprintf("%dx%d", opts.Width, opts.Height))

	segments, err := e.encodeSegments(ctx, opts, ffmpegPath, tempDir, report)
	if err != nil {
		return nil, err
	}
	report(60)

	concatPath, err := e.concatSegments(ctx, segments, ffmpegPath, tempDir)
	if err != nil {
		return nil, err
	}
	report(70)

	assPath, err := e.prepareCaptions(ctx, opts, tempDir)
	if err != nil {
		return nil, err
	}

	scriptPath, err := e.writeFilterScript(opts, tempDir, assPath)
	if err != nil {
		return nil, err
	}

	if err := e.finalEncode(ctx, opts, ffmpegPath, concatPath, scriptPath); err != nil {
		return nil, err
	}
	report(100)

	result := &timeline.ExportResult{}
	if opts.Debug {
		result.DebugBundlePath = tempDir
	}
	e.log.Infow("export finished", "output", opts.OutputPath)
	return result, nil
}

// prepareCaptions resolves every distinct (family, weight) pair the
// captions reference into the font cache, then writes the compiled
// subtitle document. Returns "" when no caption survives validation.
func (e *Exporter) prepareCaptions(
	ctx context.Context,
	opts timeline.ExportOptions,
	tempDir string,
) (string, error) {
	valid := timeline.ValidCaptions(opts.Captions)
	if len(valid) == 0 {
		return "", nil
	}

	type fontKey struct {
		family string
		bold   bool
	}
	seen := map[fontKey]struct{}{}
	for _, c := range valid {
		key := fontKey{family: c.FontFamily, bold: c.Bold}
		if _, done := seen[key]; done {
			continue
		}
		seen[key] = struct{}{}
		path := e.fonts.Resolve(ctx, c.FontFamily, c.Bold)
		e.log.Infow("font resolved", "family", c.FontFamily, "bold", c.Bold, "path", path)
	}

	assPath := filepath.Join(tempDir, "captions.ass")
	doc := captions.Document(valid, opts.Width, opts.Height)
	if err := os.WriteFile(assPath, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write caption document: %w", err)
	}
	return assPath, nil
}

// writeFilterScript assembles the complete filter graph and writes it
// to a script file: tail padding when captions or effects outlast the
// visual track, then the effect primitives, then the caption overlay,
// plus the audio delay+mix lines. A script file sidesteps command-line
// length limits that a large inline graph would hit.
func (e *Exporter) writeFilterScript(
	opts timeline.ExportOptions,
	tempDir, assPath string,
) (string, error) {
	// padding comes first: cloned tail frames carry timestamps past the
	// visual track's end, so they must flow through the time-gated
	// effects and the subtitle renderer for captions and effects in the
	// padded window to appear at all
	var chain []string
	if delta := opts.Duration() - opts.VisualDuration(); delta > 0 {
		chain = append(chain, fmt.Sprintf(
			"tpad=stop_mode=clone:stop_duration=%s", fnum(delta)))
	}

	effects, err := CompileEffects(opts.Effects)
	if err != nil {
		return "", err
	}
	chain = append(chain, effects...)

	if assPath != "" {
		chain = append(chain, fmt.Sprintf("subtitles=filename='%s':fontsdir='%s'",
			escapeFilterPath(assPath), escapeFilterPath(e.fonts.Dir())))
	}

	if len(chain) == 0 {
		chain = append(chain, "null")
	}

	lines := []string{"[0:v]" + strings.Join(chain, ",") + "[vout]"}
	lines = append(lines, compileAudioGraph(collectAudioSources(opts), 1)...)

	scriptPath := filepath.Join(tempDir, "filtergraph.txt")
	if err := os.WriteFile(scriptPath, []byte(strings.Join(lines, ";\n")), 0o644); err != nil {
		return "", fmt.Errorf("write filter script: %w", err)
	}
	return scriptPath, nil
}

// finalEncode runs the last pass: the concatenated intermediate plus
// every trimmed audio input, through the filter script, into the
// delivered file.
func (e *Exporter) finalEncode(
	ctx context.Context,
	opts timeline.ExportOptions,
	ffmpegPath, concatPath, scriptPath string,
) error {
	args := finalEncodeArgs(opts, ffmpegPath, concatPath, scriptPath)
	output, err := e.runner.Run(ctx, args...)
	if err != nil {
		return FinalEncodeError{Err: err, Output: output}
	}
	return nil
}

// finalEncodeArgs builds the complete argument list for the last pass.
func finalEncodeArgs(
	opts timeline.ExportOptions,
	ffmpegPath, concatPath, scriptPath string,
) []string {
	sources := collectAudioSources(opts)

	args := []string{ffmpegPath, "-hide_banner", "-nostdin", "-y"}
	args = append(args, "-i", concatPath)
	for _, src := range sources {
		args = append(args,
			"-ss", fnum(src.SourceStart),
			"-to", fnum(src.SourceEnd),
			"-i", src.Path,
		)
	}

	args = append(args, "-filter_complex_script", scriptPath)
	args = append(args, "-map", "[vout]")
	if len(sources) > 0 {
		args = append(args,
			"-map", "[aout]",
			"-c:a", finalAudioCodec,
			"-b:a", finalAudioBitrate,
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", finalPreset,
		"-crf", fmt.Sprintf("%d", opts.CRF),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-pix_fmt", "yuv420p",
		"-t", fnum(opts.Duration()),
		opts.OutputPath,
	)

	return args
}

// monotonic wraps a progress callback so reported percentages never
// decrease. Parallel segment workers may report out of order, so the
// guard is locked.
func monotonic(progress ProgressFunc) func(int) {
	var mu sync.Mutex
	last := -1
	return func(p int) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if p <= last {
			return
		}
		last = p
		progress(p)
	}
}

// reboundCommand recreates a compiled command under ctx so the job
// context can terminate the child process.
func reboundCommand(ctx context.Context, cmd *exec.Cmd) *exec.Cmd {
	rebound := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)
	rebound.Dir = cmd.Dir
	rebound.Env = cmd.Env
	return rebound
}

// escapeFilterPath prepares a filesystem path for use inside a quoted
// filter option value: forward slashes throughout, with quote and
// drive-colon characters escaped for the filter option parser.
func escapeFilterPath(path string) string {
	p := filepath.ToSlash(path)
	p = strings.ReplaceAll(p, `\`, `/`)
	p = strings.ReplaceAll(p, `'`, `\'`)
	p = strings.ReplaceAll(p, `:`, `\:`)
	return p
}
