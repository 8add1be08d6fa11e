package timeline

import "fmt"

// Effect is a timed visual effect on the export timeline. The set of
// implementations is closed: compilers dispatch with a type switch and
// treat an unknown concrete type as a hard error, so adding a new
// effect without teaching every compiler about it fails loudly instead
// of silently rendering nothing.
type Effect interface {
	// Window returns the effect's active [start, end) window in seconds.
	Window() (start, end float64)

	isEffect()
}

// Pixelate blocks the frame up, animating block size from FromSize to
// ToSize across its window.
type Pixelate struct {
	TimelineStart float64
	TimelineEnd   float64
	FromSize      int
	ToSize        int
}

// Duotone desaturates the frame and remaps luminance onto a
// shadow-to-highlight color gradient.
type Duotone struct {
	TimelineStart  float64
	TimelineEnd    float64
	ShadowColor    string
	HighlightColor string
}

// ASCII approximates a terminal-art look: coarse pixelation, grayscale,
// and a contrast push.
type ASCII struct {
	TimelineStart float64
	TimelineEnd   float64
	BlockSize     int
	Contrast      float64
}

// Dither adds noise and posterizes each RGB channel to a limited
// number of levels.
type Dither struct {
	TimelineStart float64
	TimelineEnd   float64
	Amount        float64 // 0..1 noise amount
	Levels        int
}

// ChromaticAberration shifts the red and blue channels horizontally in
// opposite directions.
type ChromaticAberration struct {
	TimelineStart float64
	TimelineEnd   float64
	OffsetPx      int
}

func (e Pixelate) Window() (float64, float64)            { return e.TimelineStart, e.TimelineEnd }
func (e Duotone) Window() (float64, float64)             { return e.TimelineStart, e.TimelineEnd }
func (e ASCII) Window() (float64, float64)               { return e.TimelineStart, e.TimelineEnd }
func (e Dither) Window() (float64, float64)              { return e.TimelineStart, e.TimelineEnd }
func (e ChromaticAberration) Window() (float64, float64) { return e.TimelineStart, e.TimelineEnd }

func (Pixelate) isEffect()            {}
func (Duotone) isEffect()             {}
func (ASCII) isEffect()               {}
func (Dither) isEffect()              {}
func (ChromaticAberration) isEffect() {}

// EffectSpec is the serialized form of an effect in a project snapshot:
// a type tag plus the union of per-type parameters.
type EffectSpec struct {
	Type          string  `yaml:"type" json:"type"`
	TimelineStart float64 `yaml:"timelineStart" json:"timelineStart"`
	TimelineEnd   float64 `yaml:"timelineEnd" json:"timelineEnd"`

	FromSize       int     `yaml:"fromSize,omitempty" json:"fromSize,omitempty"`
	ToSize         int     `yaml:"toSize,omitempty" json:"toSize,omitempty"`
	BlockSize      int     `yaml:"blockSize,omitempty" json:"blockSize,omitempty"`
	Contrast       float64 `yaml:"contrast,omitempty" json:"contrast,omitempty"`
	ShadowColor    string  `yaml:"shadowColor,omitempty" json:"shadowColor,omitempty"`
	HighlightColor string  `yaml:"highlightColor,omitempty" json:"highlightColor,omitempty"`
	Amount         float64 `yaml:"amount,omitempty" json:"amount,omitempty"`
	Levels         int     `yaml:"levels,omitempty" json:"levels,omitempty"`
	OffsetPx       int     `yaml:"offsetPx,omitempty" json:"offsetPx,omitempty"`
}

// MaterializeEffects converts decoded EffectSpecs into the concrete
// Effects slice the compilers consume.
func (o *ExportOptions) MaterializeEffects() error {
	if len(o.EffectSpecs) == 0 {
		return nil
	}
	effects := make([]Effect, 0, len(o.EffectSpecs))
	for i, spec := range o.EffectSpecs {
		eff, err := spec.Effect()
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		effects = append(effects, eff)
	}
	o.Effects = effects
	return nil
}

// Effect converts the serialized form into its concrete effect type.
func (s EffectSpec) Effect() (Effect, error) {
	switch s.Type {
	case "pixelate":
		return Pixelate{
			TimelineStart: s.TimelineStart,
			TimelineEnd:   s.TimelineEnd,
			FromSize:      s.FromSize,
			ToSize:        s.ToSize,
		}, nil
	case "duotone":
		return Duotone{
			TimelineStart:  s.TimelineStart,
			TimelineEnd:    s.TimelineEnd,
			ShadowColor:    s.ShadowColor,
			HighlightColor: s.HighlightColor,
		}, nil
	case "ascii":
		return ASCII{
			TimelineStart: s.TimelineStart,
			TimelineEnd:   s.TimelineEnd,
			BlockSize:     s.BlockSize,
			Contrast:      s.Contrast,
		}, nil
	case "dither":
		return Dither{
			TimelineStart: s.TimelineStart,
			TimelineEnd:   s.TimelineEnd,
			Amount:        s.Amount,
			Levels:        s.Levels,
		}, nil
	case "chromatic_aberration":
		return ChromaticAberration{
			TimelineStart: s.TimelineStart,
			TimelineEnd:   s.TimelineEnd,
			OffsetPx:      s.OffsetPx,
		}, nil
	default:
		return nil, fmt.Errorf("unknown effect type %q", s.Type)
	}
}
