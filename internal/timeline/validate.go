package timeline

import (
	"math"
	"sort"
)

// ValidCaptions filters out captions with non-finite times or a
// non-positive duration and returns the survivors sorted ascending by
// start time. The sort is stable, so an already-valid, already-sorted
// list comes back unchanged.
func ValidCaptions(captions []Caption) []Caption {
	valid := make([]Caption, 0, len(captions))
	for _, c := range captions {
		if !isFinite(c.StartTime) || !isFinite(c.EndTime) {
			continue
		}
		if c.EndTime-c.StartTime <= 0 {
			continue
		}
		valid = append(valid, c)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].StartTime < valid[j].StartTime
	})

	return valid
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Duration returns the timeline extent of the job: the maximum
// timelineEnd across clips, audio clips, captions, and effects.
func (o ExportOptions) Duration() float64 {
	var end float64
	for _, c := range o.Clips {
		end = math.Max(end, c.TimelineEnd)
	}
	for _, a := range o.AudioClips {
		end = math.Max(end, a.TimelineEnd)
	}
	for _, c := range ValidCaptions(o.Captions) {
		end = math.Max(end, c.EndTime)
	}
	for _, e := range o.Effects {
		_, effectEnd := e.Window()
		end = math.Max(end, effectEnd)
	}
	return end
}

// VisualDuration returns the extent of the visual track alone, which is
// what segment encoding and concatenation produce.
func (o ExportOptions) VisualDuration() float64 {
	var end float64
	for _, c := range o.Clips {
		end = math.Max(end, c.TimelineEnd)
	}
	return end
}

// HasAudio reports whether the final encode needs an audio stream at
// all: original clip audio (unless muted) or any explicit audio clip.
func (o ExportOptions) HasAudio() bool {
	if !o.Muted && len(o.Clips) > 0 {
		return true
	}
	return len(o.AudioClips) > 0
}
