package timeline

import "testing"

func TestEffectSpecMaterialization(t *testing.T) {
	tests := []struct {
		name string
		spec EffectSpec
		want Effect
	}{
		{
			name: "pixelate",
			spec: EffectSpec{Type: "pixelate", TimelineStart: 1, TimelineEnd: 3, FromSize: 4, ToSize: 48},
			want: Pixelate{TimelineStart: 1, TimelineEnd: 3, FromSize: 4, ToSize: 48},
		},
		{
			name: "duotone",
			spec: EffectSpec{Type: "duotone", TimelineStart: 0, TimelineEnd: 2, ShadowColor: "#000033", HighlightColor: "#ffcc00"},
			want: Duotone{TimelineStart: 0, TimelineEnd: 2, ShadowColor: "#000033", HighlightColor: "#ffcc00"},
		},
		{
			name: "ascii",
			spec: EffectSpec{Type: "ascii", TimelineStart: 0, TimelineEnd: 1, BlockSize: 8, Contrast: 1.2},
			want: ASCII{TimelineStart: 0, TimelineEnd: 1, BlockSize: 8, Contrast: 1.2},
		},
		{
			name: "dither",
			spec: EffectSpec{Type: "dither", TimelineStart: 0, TimelineEnd: 1, Amount: 0.5, Levels: 4},
			want: Dither{TimelineStart: 0, TimelineEnd: 1, Amount: 0.5, Levels: 4},
		},
		{
			name: "chromatic aberration",
			spec: EffectSpec{Type: "chromatic_aberration", TimelineStart: 0, TimelineEnd: 1, OffsetPx: 6},
			want: ChromaticAberration{TimelineStart: 0, TimelineEnd: 1, OffsetPx: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.Effect()
			if err != nil {
				t.Fatalf("Effect() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Effect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEffectSpecUnknownType(t *testing.T) {
	_, err := EffectSpec{Type: "vhs"}.Effect()
	if err == nil {
		t.Fatal("expected error for unknown effect type")
	}
}

func TestMaterializeEffects(t *testing.T) {
	opts := ExportOptions{
		EffectSpecs: []EffectSpec{
			{Type: "pixelate", TimelineStart: 0, TimelineEnd: 1, FromSize: 2, ToSize: 4},
			{Type: "dither", TimelineStart: 1, TimelineEnd: 2, Amount: 0.3, Levels: 8},
		},
	}

	if err := opts.MaterializeEffects(); err != nil {
		t.Fatalf("MaterializeEffects failed: %v", err)
	}
	if len(opts.Effects) != 2 {
		t.Fatalf("expected 2 effects, got %d", len(opts.Effects))
	}
	if _, ok := opts.Effects[0].(Pixelate); !ok {
		t.Errorf("expected Pixelate first, got %T", opts.Effects[0])
	}

	opts.EffectSpecs = append(opts.EffectSpecs, EffectSpec{Type: "bogus"})
	if err := opts.MaterializeEffects(); err == nil {
		t.Error("expected error for unknown effect type in specs")
	}
}
