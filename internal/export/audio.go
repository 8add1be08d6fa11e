package export

import (
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/timeline"
)

// audioSource is one timed contributor to the final mix: a visual
// clip's own audio or an explicit audio-track clip.
type audioSource struct {
	Path          string
	SourceStart   float64
	SourceEnd     float64
	TimelineStart float64
}

// collectAudioSources gathers every audio contributor in timeline
// order: original clip audio first (unless the project muted it), then
// the explicit audio track.
func collectAudioSources(opts timeline.ExportOptions) []audioSource {
	var sources []audioSource
	if !opts.Muted {
		for _, c := range opts.Clips {
			sources = append(sources, audioSource{
				Path:          c.FilePath,
				SourceStart:   c.SourceStart,
				SourceEnd:     c.SourceEnd,
				TimelineStart: c.TimelineStart,
			})
		}
	}
	for _, a := range opts.AudioClips {
		sources = append(sources, audioSource{
			Path:          a.FilePath,
			SourceStart:   a.SourceStart,
			SourceEnd:     a.SourceEnd,
			TimelineStart: a.TimelineStart,
		})
	}
	return sources
}

// compileAudioGraph builds the delay+mix portion of the filter graph.
// Each source arrives as its own trimmed input starting at
// firstInput; a delay shifts it to its timeline offset. A single
// source feeds [aout] directly; multiple sources are mixed with
// normalization off so creator-authored levels survive, and without a
// dropout transition. Returns empty when there is nothing to mix.
func compileAudioGraph(sources []audioSource, firstInput int) []string {
	if len(sources) == 0 {
		return nil
	}

	if len(sources) == 1 {
		return []string{fmt.Sprintf("[%d:a]adelay=%d:all=1[aout]",
			firstInput, delayMillis(sources[0]))}
	}

	var graph []string
	labels := make([]string, 0, len(sources))
	for i, src := range sources {
		label := fmt.Sprintf("[mix%d]", i)
		graph = append(graph, fmt.Sprintf("[%d:a]adelay=%d:all=1%s",
			firstInput+i, delayMillis(src), label))
		labels = append(labels, label)
	}

	graph = append(graph, fmt.Sprintf(
		"%samix=inputs=%d:normalize=0:dropout_transition=0[aout]",
		strings.Join(labels, ""), len(sources)))

	return graph
}

func delayMillis(src audioSource) int {
	ms := int(src.TimelineStart*1000 + 0.5)
	if ms < 0 {
		ms = 0
	}
	return ms
}
