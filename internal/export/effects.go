package export

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/clipforge/clipforge/internal/captions"
	"github.com/clipforge/clipforge/internal/timeline"
)

// pixelateSteps is how many constant-size sub-intervals approximate a
// smoothly animated pixelate: the underlying primitive only accepts an
// integer block size, so the window is split into equal slices each
// holding the size interpolated at its midpoint.
const pixelateSteps = 16

// CompileEffects lowers timed effects into time-gated filter
// primitives, ordered by fixed type priority: pixel-resampling effects
// first, color-remapping effects after, since each stage transforms the
// frame the previous stage produced. Every returned filter is gated
// with a between(t,...) predicate and is a no-op outside its window.
func CompileEffects(effects []timeline.Effect) ([]string, error) {
	type ranked struct {
		eff  timeline.Effect
		prio int
	}

	ordered := make([]ranked, 0, len(effects))
	for _, eff := range effects {
		p, err := effectPriority(eff)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, ranked{eff: eff, prio: p})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].prio != ordered[j].prio {
			return ordered[i].prio < ordered[j].prio
		}
		si, _ := ordered[i].eff.Window()
		sj, _ := ordered[j].eff.Window()
		return si < sj
	})

	var filters []string
	for _, r := range ordered {
		compiled, err := compileEffect(r.eff)
		if err != nil {
			return nil, err
		}
		filters = append(filters, compiled...)
	}
	return filters, nil
}

func effectPriority(eff timeline.Effect) (int, error) {
	switch eff.(type) {
	case timeline.Pixelate:
		return 0, nil
	case timeline.ASCII:
		return 1, nil
	case timeline.Duotone:
		return 2, nil
	case timeline.Dither:
		return 3, nil
	case timeline.ChromaticAberration:
		return 4, nil
	default:
		return 0, fmt.Errorf("unhandled effect type %T", eff)
	}
}

func compileEffect(eff timeline.Effect) ([]string, error) {
	switch ef := eff.(type) {
	case timeline.Pixelate:
		return compilePixelate(ef), nil
	case timeline.ASCII:
		return compileASCII(ef), nil
	case timeline.Duotone:
		return compileDuotone(ef), nil
	case timeline.Dither:
		return compileDither(ef), nil
	case timeline.ChromaticAberration:
		return compileChromaticAberration(ef), nil
	default:
		return nil, fmt.Errorf("unhandled effect type %T", eff)
	}
}

// compilePixelate approximates a continuously animated block size with
// pixelateSteps constant sub-filters whose windows tile [start, end)
// exactly. Each slice uses the size linearly interpolated at its
// midpoint, rounded and clamped to the primitive's minimum of 2.
func compilePixelate(ef timeline.Pixelate) []string {
	dt := (ef.TimelineEnd - ef.TimelineStart) / pixelateSteps

	filters := make([]string, 0, pixelateSteps)
	for i := 0; i < pixelateSteps; i++ {
		a := ef.TimelineStart + dt*float64(i)
		b := ef.TimelineStart + dt*float64(i+1)

		midFrac := (float64(i) + 0.5) / pixelateSteps
		size := PixelateSizeAt(ef.FromSize, ef.ToSize, midFrac)

		filters = append(filters, fmt.Sprintf(
			"pixelize=width=%d:height=%d:%s", size, size, enableBetween(a, b)))
	}
	return filters
}

// PixelateSizeAt interpolates the block size at frac of the effect's
// window, rounded and clamped to the primitive's minimum.
func PixelateSizeAt(from, to int, frac float64) int {
	size := int(float64(from) + (float64(to)-float64(from))*frac + 0.5)
	if size < 2 {
		size = 2
	}
	return size
}

func compileDuotone(ef timeline.Duotone) []string {
	sr, sg, sbc, _, ok := captions.ParseColor(ef.ShadowColor)
	if !ok {
		sr, sg, sbc = 0, 0, 0
	}
	hr, hg, hb, _, ok := captions.ParseColor(ef.HighlightColor)
	if !ok {
		hr, hg, hb = 255, 255, 255
	}

	enable := enableBetween(ef.TimelineStart, ef.TimelineEnd)
	curve := func(shadow, highlight uint8) string {
		return fmt.Sprintf("'0/%.4f 1/%.4f'", float64(shadow)/255, float64(highlight)/255)
	}

	return []string{
		"hue=s=0:" + enable,
		fmt.Sprintf("curves=red=%s:green=%s:blue=%s:%s",
			curve(sr, hr), curve(sg, hg), curve(sbc, hb), enable),
	}
}

func compileASCII(ef timeline.ASCII) []string {
	block := clampInt(ef.BlockSize, 4, 20)
	contrast := clampFloat(ef.Contrast, 0.5, 2.0)
	enable := enableBetween(ef.TimelineStart, ef.TimelineEnd)

	return []string{
		fmt.Sprintf("pixelize=width=%d:height=%d:%s", block, block, enable),
		"hue=s=0:" + enable,
		fmt.Sprintf("eq=contrast=%.2f:%s", contrast, enable),
	}
}

func compileDither(ef timeline.Dither) []string {
	amount := clampFloat(ef.Amount, 0, 1)
	levels := clampInt(ef.Levels, 2, 16)

	// amount 0..1 maps onto the noise filter's useful strength range
	strength := int(amount*50 + 0.5)
	step := 256 / levels

	enable := enableBetween(ef.TimelineStart, ef.TimelineEnd)
	posterize := fmt.Sprintf("'floor(val/%d)*%d'", step, step)

	return []string{
		fmt.Sprintf("noise=alls=%d:allf=t+u:%s", strength, enable),
		fmt.Sprintf("lutrgb=r=%s:g=%s:b=%s:%s", posterize, posterize, posterize, enable),
	}
}

func compileChromaticAberration(ef timeline.ChromaticAberration) []string {
	offset := clampInt(ef.OffsetPx, 0, 20)
	return []string{
		fmt.Sprintf("rgbashift=rh=%d:bh=%d:%s",
			offset, -offset, enableBetween(ef.TimelineStart, ef.TimelineEnd)),
	}
}

// enableBetween gates a filter to [start, end): outside the window the
// filter passes frames through untouched.
func enableBetween(start, end float64) string {
	return fmt.Sprintf("enable='between(t,%s,%s)'", fnum(start), fnum(end))
}

// fnum formats seconds with the shortest exact representation, so
// adjacent sub-interval boundaries are textually identical and the
// gated windows tile without gaps.
func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
