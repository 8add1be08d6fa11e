package export

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/clipforge/clipforge/internal/timeline"
)

var betweenRe = regexp.MustCompile(`between\(t,([0-9.]+),([0-9.]+)\)`)

func window(t *testing.T, filter string) (float64, float64) {
	t.Helper()
	m := betweenRe.FindStringSubmatch(filter)
	if m == nil {
		t.Fatalf("filter missing enable window: %q", filter)
	}
	a, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		t.Fatal(err)
	}
	b, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		t.Fatal(err)
	}
	return a, b
}

func TestCompilePixelateTilesWindow(t *testing.T) {
	filters, err := CompileEffects([]timeline.Effect{
		timeline.Pixelate{TimelineStart: 2, TimelineEnd: 5, FromSize: 4, ToSize: 48},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != pixelateSteps {
		t.Fatalf("expected %d sub-filters, got %d", pixelateSteps, len(filters))
	}

	prevEnd := ""
	for i, f := range filters {
		if !strings.HasPrefix(f, "pixelize=") {
			t.Fatalf("filter %d is not pixelize: %q", i, f)
		}
		m := betweenRe.FindStringSubmatch(f)
		if m == nil {
			t.Fatalf("filter %d missing window: %q", i, f)
		}
		// boundary strings must match exactly so the slices tile with
		// no dropped frames between them
		if i > 0 && m[1] != prevEnd {
			t.Errorf("filter %d starts at %s, previous ended at %s", i, m[1], prevEnd)
		}
		prevEnd = m[2]
	}

	first, _ := window(t, filters[0])
	_, last := window(t, filters[len(filters)-1])
	if first != 2 || last != 5 {
		t.Errorf("tiled windows cover [%v, %v), want [2, 5)", first, last)
	}
}

func TestCompilePixelateSizes(t *testing.T) {
	filters, err := CompileEffects([]timeline.Effect{
		timeline.Pixelate{TimelineStart: 2, TimelineEnd: 5, FromSize: 4, ToSize: 48},
	})
	if err != nil {
		t.Fatal(err)
	}

	sizeRe := regexp.MustCompile(`pixelize=width=(\d+):height=(\d+)`)
	for i, f := range filters {
		m := sizeRe.FindStringSubmatch(f)
		if m == nil {
			t.Fatalf("filter %d has no size: %q", i, f)
		}
		if m[1] != m[2] {
			t.Errorf("filter %d blocks are not square: %q", i, f)
		}
		got, _ := strconv.Atoi(m[1])
		want := PixelateSizeAt(4, 48, (float64(i)+0.5)/pixelateSteps)
		if got != want {
			t.Errorf("filter %d size = %d, want midpoint-interpolated %d", i, got, want)
		}
	}

	// the animation actually moves across the window
	firstSize := PixelateSizeAt(4, 48, 0.5/pixelateSteps)
	lastSize := PixelateSizeAt(4, 48, (pixelateSteps-0.5)/pixelateSteps)
	if firstSize >= lastSize {
		t.Errorf("sizes do not grow: first %d, last %d", firstSize, lastSize)
	}
}

func TestPixelateSizeAt(t *testing.T) {
	tests := []struct {
		from, to int
		frac     float64
		want     int
	}{
		{4, 48, 0, 4},
		{4, 48, 1, 48},
		{4, 48, 0.5, 26},
		{48, 4, 1, 4},
		{0, 0, 0.5, 2}, // clamped to the primitive's minimum
		{1, 1, 0, 2},
	}
	for _, tt := range tests {
		if got := PixelateSizeAt(tt.from, tt.to, tt.frac); got != tt.want {
			t.Errorf("PixelateSizeAt(%d,%d,%v) = %d, want %d",
				tt.from, tt.to, tt.frac, got, tt.want)
		}
	}
}

func TestCompileEffectsPriorityOrder(t *testing.T) {
	// declared out of render order on purpose
	filters, err := CompileEffects([]timeline.Effect{
		timeline.ChromaticAberration{TimelineStart: 0, TimelineEnd: 1, OffsetPx: 5},
		timeline.Duotone{TimelineStart: 0, TimelineEnd: 1, ShadowColor: "#000000", HighlightColor: "#ffffff"},
		timeline.Pixelate{TimelineStart: 0, TimelineEnd: 1, FromSize: 8, ToSize: 8},
	})
	if err != nil {
		t.Fatal(err)
	}

	idx := func(prefix string) int {
		for i, f := range filters {
			if strings.HasPrefix(f, prefix) {
				return i
			}
		}
		t.Fatalf("no filter with prefix %q in %v", prefix, filters)
		return -1
	}

	if !(idx("pixelize=") < idx("hue=") && idx("hue=") < idx("rgbashift=")) {
		t.Errorf("wrong stage order: %v", filters)
	}
}

func TestCompileDuotone(t *testing.T) {
	filters, err := CompileEffects([]timeline.Effect{
		timeline.Duotone{TimelineStart: 1, TimelineEnd: 3, ShadowColor: "#200040", HighlightColor: "#ffe0c0"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 2 {
		t.Fatalf("duotone should desaturate then remap, got %v", filters)
	}
	if !strings.HasPrefix(filters[0], "hue=s=0") {
		t.Errorf("first stage should desaturate: %q", filters[0])
	}
	if !strings.HasPrefix(filters[1], "curves=") {
		t.Errorf("second stage should remap: %q", filters[1])
	}
	// red channel maps 0 -> 0x20/255, 1 -> 0xff/255
	if !strings.Contains(filters[1], "red='0/0.1255 1/1.0000'") {
		t.Errorf("red curve wrong: %q", filters[1])
	}
	for _, f := range filters {
		if a, b := window(t, f); a != 1 || b != 3 {
			t.Errorf("stage window [%v, %v), want [1, 3): %q", a, b, f)
		}
	}
}

func TestCompileASCIIClamps(t *testing.T) {
	filters, err := CompileEffects([]timeline.Effect{
		timeline.ASCII{TimelineStart: 0, TimelineEnd: 1, BlockSize: 99, Contrast: 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 3 {
		t.Fatalf("expected 3 stages, got %v", filters)
	}
	if !strings.HasPrefix(filters[0], "pixelize=width=20:height=20") {
		t.Errorf("block size not clamped to 20: %q", filters[0])
	}
	if !strings.Contains(filters[2], "contrast=2.00") {
		t.Errorf("contrast not clamped to 2.0: %q", filters[2])
	}
}

func TestCompileDither(t *testing.T) {
	filters, err := CompileEffects([]timeline.Effect{
		timeline.Dither{TimelineStart: 0, TimelineEnd: 2, Amount: 0.5, Levels: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 2 {
		t.Fatalf("expected noise then posterize, got %v", filters)
	}
	if !strings.HasPrefix(filters[0], "noise=alls=25") {
		t.Errorf("noise strength wrong: %q", filters[0])
	}
	// 4 levels posterize in steps of 64
	if !strings.Contains(filters[1], "floor(val/64)*64") {
		t.Errorf("posterize step wrong: %q", filters[1])
	}
}

func TestCompileChromaticAberration(t *testing.T) {
	filters, err := CompileEffects([]timeline.Effect{
		timeline.ChromaticAberration{TimelineStart: 0, TimelineEnd: 1, OffsetPx: 50},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 1 {
		t.Fatalf("expected one filter, got %v", filters)
	}
	if !strings.HasPrefix(filters[0], "rgbashift=rh=20:bh=-20") {
		t.Errorf("offset not clamped and mirrored: %q", filters[0])
	}
}

func TestEnableBetweenFormatting(t *testing.T) {
	tests := []struct {
		start, end float64
		want       string
	}{
		{0, 1, "enable='between(t,0,1)'"},
		{2.1875, 2.375, "enable='between(t,2.1875,2.375)'"},
	}
	for _, tt := range tests {
		if got := enableBetween(tt.start, tt.end); got != tt.want {
			t.Errorf("enableBetween(%v,%v) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}
