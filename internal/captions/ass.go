package captions

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/timeline"
)

// The preview renderer authors caption sizes against a fixed canvas
// width; exports at other resolutions scale proportionally.
const (
	referenceWidthLandscape = 1920.0
	referenceWidthPortrait  = 1080.0
)

const defaultFontName = "Arial"

// Scale returns the caption size multiplier for an export frame.
func Scale(width, height int) float64 {
	ref := referenceWidthLandscape
	if height > width {
		ref = referenceWidthPortrait
	}
	return float64(width) / ref
}

// Document compiles validated captions into a complete ASS subtitle
// document sized to the output frame: one named style per caption, one
// positioned dialogue event per caption, and per-word sweep tags for
// karaoke captions. A subtitle file keeps the overlay count off the
// command line, which per-word drawtext overlays would blow past on
// argument-length-limited platforms.
func Document(caps []timeline.Caption, width, height int) string {
	caps = timeline.ValidCaptions(caps)
	scale := Scale(width, height)

	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: ClipForge Export Captions\n")
	sb.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", width)
	fmt.Fprintf(&sb, "PlayResY: %d\n", height)
	sb.WriteString("WrapStyle: 2\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	for i, c := range caps {
		sb.WriteString(styleLine(styleName(i), c, scale))
	}
	sb.WriteString("\n")

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for i, c := range caps {
		sb.WriteString(dialogueLine(styleName(i), c, width, height))
	}

	return sb.String()
}

func styleName(i int) string {
	return fmt.Sprintf("Cap%d", i)
}

func styleLine(name string, c timeline.Caption, scale float64) string {
	fontName := c.FontFamily
	if strings.TrimSpace(fontName) == "" {
		fontName = defaultFontName
	}

	fontSize := int(c.FontSize*scale + 0.5)
	if fontSize < 1 {
		fontSize = 1
	}

	normal := ASSColorOr(c.Color, "white")

	// Karaoke sweeps fill from the secondary color to the primary one,
	// so a highlighted caption puts its highlight in the primary slot
	// and the resting color in the secondary slot.
	primary := normal
	secondary := "&H000000FF"
	if karaoke(c) {
		primary = ASSColorOr(c.HighlightColor, "yellow")
		secondary = normal
	}

	outlineColor := ASSColorOr(c.StrokeColor, "black")
	outline := c.StrokeWidth * scale

	// an opaque box replaces the outline border when a background is set
	backColor := TransparentASS
	borderStyle := 1
	if c.Background != "" {
		backColor = ASSColorOr(c.Background, "black")
		borderStyle = 3
	}

	bold := 0
	if c.Bold {
		bold = -1
	}

	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,%d,%.1f,0,5,10,10,10,1\n",
		name, fontName, fontSize, primary, secondary, outlineColor, backColor,
		bold, borderStyle, outline,
	)
}

func dialogueLine(style string, c timeline.Caption, width, height int) string {
	x := width / 2
	y := int(c.PositionY*float64(height) + 0.5)

	var text string
	if karaoke(c) {
		text = karaokeText(c)
	} else {
		text = staticText(c)
	}

	return fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0,0,0,,{\\an5\\pos(%d,%d)}%s\n",
		formatASSTime(seconds(c.StartTime)),
		formatASSTime(seconds(c.EndTime)),
		style, x, y, text,
	)
}

func karaoke(c timeline.Caption) bool {
	return len(c.Words) > 0 && c.HighlightColor != ""
}

// staticText renders a plain caption, wrapped to the preview's line
// width when one was recorded.
func staticText(c timeline.Caption) string {
	text := strings.TrimSpace(c.Text)
	if c.LineWidthPx > 0 {
		return EscapeText(strings.Join(WrapText(text, c.LineWidthPx, c.FontSize), "\n"))
	}
	return EscapeText(text)
}

// karaokeText renders per-word sweep tags. Each \kf advances the
// highlight clock by its centisecond duration, so gaps between words
// become zero-glyph \kf tags attached to the separator and every word
// sweeps exactly over its own [start, end) window.
func karaokeText(c timeline.Caption) string {
	var sb strings.Builder
	cursor := c.StartTime
	lastY := 0.0

	for i, w := range c.Words {
		if i > 0 {
			sep := " "
			if w.YAdjustPx != lastY {
				// the preview broke to a new line here
				sep = "\\N"
			}
			if gap := w.StartTime - cursor; gap > 0 {
				fmt.Fprintf(&sb, "{\\kf%d}", centis(gap))
			}
			sb.WriteString(sep)
		} else if gap := w.StartTime - cursor; gap > 0 {
			fmt.Fprintf(&sb, "{\\kf%d}", centis(gap))
		}

		sweep := w.EndTime - w.StartTime
		if sweep < 0 {
			sweep = 0
		}
		fmt.Fprintf(&sb, "{\\kf%d}%s", centis(sweep), EscapeText(w.Word))

		cursor = w.EndTime
		lastY = w.YAdjustPx
	}

	return sb.String()
}

// WrapText greedily wraps text to the pixel line width the preview
// used, estimating glyph advance at half the font size per rune. The
// preview's own measurements drive word timing hints; this only has to
// agree on where lines break.
func WrapText(text string, lineWidthPx, fontSize float64) []string {
	if lineWidthPx <= 0 || fontSize <= 0 {
		return []string{text}
	}

	advance := fontSize * 0.5
	maxRunes := int(lineWidthPx / advance)
	if maxRunes < 1 {
		maxRunes = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := words[0]
	currentLen := len([]rune(words[0]))

	for _, w := range words[1:] {
		wLen := len([]rune(w))
		if currentLen+1+wLen > maxRunes {
			lines = append(lines, current)
			current = w
			currentLen = wLen
			continue
		}
		current += " " + w
		currentLen += 1 + wLen
	}
	lines = append(lines, current)

	return lines
}

// EscapeText makes arbitrary caption text safe inside a dialogue
// event: newlines become hard breaks and braces are escaped so user
// text can never open an override block. A literal backslash gets a
// zero-width space appended so it can never pair with a following N/h
// into a break sequence. Commas need no treatment because the text
// column is the last field of the event line.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\​")
	text = strings.ReplaceAll(text, "{", "\\{")
	text = strings.ReplaceAll(text, "}", "\\}")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\\N")
	return text
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func centis(s float64) int {
	return int(s*100 + 0.5)
}

// formatASSTime rounds to the centisecond, matching how karaoke sweep
// durations are rounded, so an event's end never truncates below the
// sum of its word sweeps.
func formatASSTime(d time.Duration) string {
	cs := int((d + 5*time.Millisecond) / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d",
		cs/360000, cs/6000%60, cs/100%60, cs%100)
}
