package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clipforge/clipforge/internal/timeline"
)

// loadProject decodes a project snapshot from a YAML or JSON file into
// export options, materializing the tagged effect union.
func loadProject(path string) (timeline.ExportOptions, error) {
	var opts timeline.ExportOptions

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read project file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("parse project yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("parse project json: %w", err)
		}
	default:
		return opts, fmt.Errorf("unsupported project file type %q (expected .yaml, .yml, or .json)", filepath.Ext(path))
	}

	if err := opts.MaterializeEffects(); err != nil {
		return opts, fmt.Errorf("project effects: %w", err)
	}

	return opts, nil
}

// validateProject rejects snapshots that violate the data model's
// structural invariants before any external process runs.
func validateProject(opts timeline.ExportOptions) error {
	for i, c := range opts.Clips {
		if c.SourceEnd <= c.SourceStart {
			return fmt.Errorf("clip %d: sourceEnd must be greater than sourceStart", i)
		}
		if c.TimelineEnd <= c.TimelineStart {
			return fmt.Errorf("clip %d: timelineEnd must be greater than timelineStart", i)
		}
	}
	for i, a := range opts.AudioClips {
		if a.SourceEnd <= a.SourceStart {
			return fmt.Errorf("audio clip %d: sourceEnd must be greater than sourceStart", i)
		}
		if a.TimelineEnd <= a.TimelineStart {
			return fmt.Errorf("audio clip %d: timelineEnd must be greater than timelineStart", i)
		}
	}
	for i, e := range opts.Effects {
		start, end := e.Window()
		if end <= start {
			return fmt.Errorf("effect %d: timelineEnd must be greater than timelineStart", i)
		}
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("outputPath is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	if opts.FPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	return nil
}
