package export

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/clipforge/clipforge/internal/ffmpeg"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/timeline"
)

// stubResolver satisfies fonts.Resolver without touching the network.
type stubResolver struct {
	dir string
}

func (s stubResolver) Resolve(ctx context.Context, family string, bold bool) string {
	return filepath.Join(s.dir, family+".ttf")
}

func (s stubResolver) Dir() string { return s.dir }

func testExporter(t *testing.T) *Exporter {
	t.Helper()
	log := logging.NewNop()
	return &Exporter{
		log:    log,
		runner: ffmpeg.NewRunner(log),
		fonts:  stubResolver{dir: "/fonts"},
	}
}

func TestExportRejectsEmptyTimeline(t *testing.T) {
	e := New(logging.NewNop(), stubResolver{dir: t.TempDir()})
	_, err := e.Export(context.Background(), timeline.ExportOptions{}, nil)
	if _, ok := err.(NoClipsError); !ok {
		t.Fatalf("expected NoClipsError, got %v", err)
	}
}

func TestWriteFilterScriptPassthrough(t *testing.T) {
	e := testExporter(t)
	opts := timeline.ExportOptions{
		Clips: []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 5, TimelineEnd: 5}},
	}

	path, err := e.writeFilterScript(opts, t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	script := readScript(t, path)
	if script != "[0:v]null[vout]" {
		t.Errorf("empty graph should pass video through, got %q", script)
	}
}

func TestWriteFilterScriptFull(t *testing.T) {
	e := testExporter(t)
	opts := timeline.ExportOptions{
		Clips: []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 5, TimelineEnd: 5}},
		Captions: []timeline.Caption{
			{Text: "late", StartTime: 6, EndTime: 8, FontSize: 30, Color: "white"},
		},
		Effects: []timeline.Effect{
			timeline.ChromaticAberration{TimelineStart: 0, TimelineEnd: 2, OffsetPx: 4},
		},
		AudioClips: []timeline.AudioClip{
			{FilePath: "music.mp3", SourceEnd: 30, TimelineStart: 1, TimelineEnd: 4},
		},
		Muted: true,
	}

	path, err := e.writeFilterScript(opts, t.TempDir(), "/tmp/captions.ass")
	if err != nil {
		t.Fatal(err)
	}
	script := readScript(t, path)

	lines := strings.Split(script, ";\n")
	if len(lines) != 2 {
		t.Fatalf("expected video chain plus one audio line, got %q", script)
	}

	video := lines[0]
	if !strings.HasPrefix(video, "[0:v]") || !strings.HasSuffix(video, "[vout]") {
		t.Errorf("video chain not labeled: %q", video)
	}
	if !strings.Contains(video, "rgbashift=rh=4:bh=-4") {
		t.Errorf("effect missing from chain: %q", video)
	}
	if !strings.Contains(video, `subtitles=filename='/tmp/captions.ass':fontsdir='/fonts'`) {
		t.Errorf("caption overlay missing: %q", video)
	}
	// captions end 3s after the visual track, so the last frame holds
	if !strings.Contains(video, "tpad=stop_mode=clone:stop_duration=3") {
		t.Errorf("tail padding missing: %q", video)
	}
	// padding first, then effects, then the caption overlay: the cloned
	// tail frames must reach the gated effects and the subtitle renderer
	if !(strings.Index(video, "tpad") < strings.Index(video, "rgbashift") &&
		strings.Index(video, "rgbashift") < strings.Index(video, "subtitles")) {
		t.Errorf("wrong stage order: %q", video)
	}

	if lines[1] != "[1:a]adelay=1000:all=1[aout]" {
		t.Errorf("audio line = %q", lines[1])
	}
}

func TestWriteFilterScriptCaptionBeyondVisualEndIsReachable(t *testing.T) {
	e := testExporter(t)
	// the caption's whole window lies past the 5s visual track; only
	// padded frames can carry it
	opts := timeline.ExportOptions{
		Clips: []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 5, TimelineEnd: 5}},
		Captions: []timeline.Caption{
			{Text: "outro", StartTime: 6, EndTime: 8, FontSize: 30, Color: "white"},
		},
	}

	path, err := e.writeFilterScript(opts, t.TempDir(), "/tmp/captions.ass")
	if err != nil {
		t.Fatal(err)
	}
	video := strings.SplitN(readScript(t, path), ";\n", 2)[0]

	padAt := strings.Index(video, "tpad")
	subAt := strings.Index(video, "subtitles")
	if padAt < 0 || subAt < 0 {
		t.Fatalf("chain missing a stage: %q", video)
	}
	if padAt > subAt {
		t.Errorf("subtitles render before padding, so frames past the visual end never carry the caption: %q", video)
	}
}

func TestWriteFilterScriptEffectBeyondVisualEndIsReachable(t *testing.T) {
	e := testExporter(t)
	opts := timeline.ExportOptions{
		Clips: []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 5, TimelineEnd: 5}},
		Effects: []timeline.Effect{
			timeline.Duotone{TimelineStart: 5, TimelineEnd: 7, ShadowColor: "#000000", HighlightColor: "#ffffff"},
		},
	}

	path, err := e.writeFilterScript(opts, t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	video := strings.SplitN(readScript(t, path), ";\n", 2)[0]

	if !strings.Contains(video, "tpad=stop_mode=clone:stop_duration=2") {
		t.Fatalf("effect past the visual end should force padding: %q", video)
	}
	if strings.Index(video, "tpad") > strings.Index(video, "hue=") {
		t.Errorf("gated effect upstream of padding never sees its window: %q", video)
	}
}

func TestWriteFilterScriptNoTailPadWhenVideoLongest(t *testing.T) {
	e := testExporter(t)
	opts := timeline.ExportOptions{
		Clips: []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 10, TimelineEnd: 10}},
		Captions: []timeline.Caption{
			{Text: "early", StartTime: 0, EndTime: 2, FontSize: 30, Color: "white"},
		},
	}

	path, err := e.writeFilterScript(opts, t.TempDir(), "/tmp/captions.ass")
	if err != nil {
		t.Fatal(err)
	}
	if script := readScript(t, path); strings.Contains(script, "tpad") {
		t.Errorf("no padding needed, got %q", script)
	}
}

func TestFinalEncodeArgsNoAudio(t *testing.T) {
	opts := timeline.ExportOptions{
		Clips:      []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 5, TimelineEnd: 5}},
		Muted:      true,
		OutputPath: "out.mp4",
		CRF:        23,
		FPS:        30,
	}

	args := finalEncodeArgs(opts, "ffmpeg", "concat.mp4", "graph.txt")

	if !hasFlag(args, "-an") {
		t.Errorf("muted export without audio clips should disable audio: %v", args)
	}
	if hasFlag(args, "-map", "[aout]") {
		t.Errorf("no audio graph to map: %v", args)
	}
	if !hasFlag(args, "-t", "5") {
		t.Errorf("output duration should pin to the timeline end: %v", args)
	}
	if !hasFlag(args, "-crf", "23") || !hasFlag(args, "-r", "30") {
		t.Errorf("encode settings missing: %v", args)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output path must come last: %v", args)
	}
}

func TestFinalEncodeArgsMutedWithMusic(t *testing.T) {
	opts := timeline.ExportOptions{
		Clips: []timeline.Clip{{FilePath: "a.mp4", SourceEnd: 5, TimelineEnd: 5}},
		Muted: true,
		AudioClips: []timeline.AudioClip{
			{FilePath: "music.mp3", SourceStart: 10, SourceEnd: 40, TimelineStart: 0, TimelineEnd: 5},
		},
		OutputPath: "out.mp4",
		CRF:        23,
		FPS:        30,
	}

	args := finalEncodeArgs(opts, "ffmpeg", "concat.mp4", "graph.txt")

	// exactly two inputs: the concatenated video and the one music file
	if got := countFlag(args, "-i"); got != 2 {
		t.Fatalf("expected 2 inputs, got %d: %v", got, args)
	}
	// the music input is trimmed at the demuxer
	i := indexOf(args, "music.mp3")
	if i < 4 || args[i-4] != "-ss" || args[i-3] != "10" || args[i-2] != "-to" || args[i-1] != "40" {
		t.Errorf("music input not trimmed: %v", args)
	}
	if !hasFlag(args, "-map", "[aout]") || hasFlag(args, "-an") {
		t.Errorf("mixed audio should be mapped: %v", args)
	}
	if !hasFlag(args, "-c:a", "aac") || !hasFlag(args, "-b:a", "192k") {
		t.Errorf("audio encode settings missing: %v", args)
	}
}

func TestMonotonicProgress(t *testing.T) {
	var seen []int
	report := monotonic(func(p int) { seen = append(seen, p) })

	for _, p := range []int{10, 5, 10, 30, 20, 100} {
		report(p)
	}
	if want := []int{10, 30, 100}; !reflect.DeepEqual(seen, want) {
		t.Errorf("reported %v, want %v", seen, want)
	}
}

func TestMonotonicNilCallback(t *testing.T) {
	report := monotonic(nil)
	report(50) // must not panic
}

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/captions.ass", "/tmp/captions.ass"},
		{`C:\Users\me\cap's.ass`, `C\:/Users/me/cap\'s.ass`},
	}
	for _, tt := range tests {
		if got := escapeFilterPath(tt.in); got != tt.want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func readScript(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func hasFlag(args []string, flag string, value ...string) bool {
	for i, a := range args {
		if a != flag {
			continue
		}
		if len(value) == 0 {
			return true
		}
		if i+1 < len(args) && args[i+1] == value[0] {
			return true
		}
	}
	return false
}

func countFlag(args []string, flag string) int {
	n := 0
	for _, a := range args {
		if a == flag {
			n++
		}
	}
	return n
}

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}
