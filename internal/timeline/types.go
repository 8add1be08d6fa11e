package timeline

// Clip is one trimmed, positioned reference into a source media file on
// the visual track. All times are in seconds.
type Clip struct {
	FilePath      string  `yaml:"filePath" json:"filePath"`
	SourceStart   float64 `yaml:"sourceStart" json:"sourceStart"`
	SourceEnd     float64 `yaml:"sourceEnd" json:"sourceEnd"`
	TimelineStart float64 `yaml:"timelineStart" json:"timelineStart"`
	TimelineEnd   float64 `yaml:"timelineEnd" json:"timelineEnd"`
}

// AudioClip has the same shape as Clip but feeds the audio mix only.
type AudioClip struct {
	FilePath      string  `yaml:"filePath" json:"filePath"`
	SourceStart   float64 `yaml:"sourceStart" json:"sourceStart"`
	SourceEnd     float64 `yaml:"sourceEnd" json:"sourceEnd"`
	TimelineStart float64 `yaml:"timelineStart" json:"timelineStart"`
	TimelineEnd   float64 `yaml:"timelineEnd" json:"timelineEnd"`
}

// CaptionWord carries per-word timing plus pixel-space layout hints
// computed by the preview renderer, so exported text lands where the
// user saw it.
type CaptionWord struct {
	Word      string  `yaml:"word" json:"word"`
	StartTime float64 `yaml:"startTime" json:"startTime"`
	EndTime   float64 `yaml:"endTime" json:"endTime"`
	XOffset   float64 `yaml:"xOffset" json:"xOffset"`
	YAdjustPx float64 `yaml:"yAdjustPx" json:"yAdjustPx"`
}

// Caption is one timed text overlay. Captions with Words render with
// karaoke-style per-word highlighting; captions without render as
// static lines.
type Caption struct {
	Text           string        `yaml:"text" json:"text"`
	StartTime      float64       `yaml:"startTime" json:"startTime"`
	EndTime        float64       `yaml:"endTime" json:"endTime"`
	FontSize       float64       `yaml:"fontSize" json:"fontSize"`
	Color          string        `yaml:"color" json:"color"`
	Background     string        `yaml:"background" json:"background"`
	Bold           bool          `yaml:"bold" json:"bold"`
	PositionY      float64       `yaml:"positionY" json:"positionY"` // fraction of frame height, 0 = top
	FontFamily     string        `yaml:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	StrokeWidth    float64       `yaml:"strokeWidth,omitempty" json:"strokeWidth,omitempty"`
	StrokeColor    string        `yaml:"strokeColor,omitempty" json:"strokeColor,omitempty"`
	HighlightColor string        `yaml:"highlightColor,omitempty" json:"highlightColor,omitempty"`
	LineWidthPx    float64       `yaml:"lineWidthPx,omitempty" json:"lineWidthPx,omitempty"`
	Words          []CaptionWord `yaml:"words,omitempty" json:"words,omitempty"`
}

// ExportOptions aggregates one export job's full input snapshot.
type ExportOptions struct {
	Clips      []Clip      `yaml:"clips" json:"clips"`
	AudioClips []AudioClip `yaml:"audioClips,omitempty" json:"audioClips,omitempty"`
	Muted      bool        `yaml:"muted,omitempty" json:"muted,omitempty"`
	Captions   []Caption   `yaml:"captions,omitempty" json:"captions,omitempty"`
	Effects    []Effect    `yaml:"-" json:"-"`
	// EffectSpecs is the serialized form of Effects; call
	// MaterializeEffects after decoding a project snapshot.
	EffectSpecs []EffectSpec `yaml:"effects,omitempty" json:"effects,omitempty"`
	OutputPath string      `yaml:"outputPath" json:"outputPath"`
	Width      int         `yaml:"width" json:"width"`
	Height     int         `yaml:"height" json:"height"`
	FPS        int         `yaml:"fps" json:"fps"`
	CRF        int         `yaml:"crf" json:"crf"`
	Debug      bool        `yaml:"debug,omitempty" json:"debug,omitempty"`

	// Concurrency bounds parallel segment encoding. Zero or one keeps
	// the encode strictly sequential.
	Concurrency int `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
}

// ExportResult reports job artifacts back to the caller.
type ExportResult struct {
	// DebugBundlePath is set only when debug mode retained the
	// intermediate artifacts and command log.
	DebugBundlePath string
}
