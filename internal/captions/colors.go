package captions

import (
	"fmt"
	"strconv"
	"strings"
)

// named fallbacks seen in preview-authored projects
var namedColors = map[string]uint32{
	"white":   0xFFFFFF,
	"black":   0x000000,
	"red":     0xFF0000,
	"green":   0x00FF00,
	"blue":    0x0000FF,
	"yellow":  0xFFFF00,
	"cyan":    0x00FFFF,
	"magenta": 0xFF00FF,
	"orange":  0xFFA500,
}

// ASSColor normalizes a CSS-style color (#RGB, #RRGGBB, #RRGGBBAA,
// rgb(...), rgba(...), or a basic name) to the render engine's
// &HAABBGGRR syntax. The engine's alpha channel is inverted: 0 is
// opaque, FF fully transparent.
func ASSColor(s string) (string, bool) {
	r, g, b, a, ok := ParseColor(s)
	if !ok {
		return "", false
	}
	return formatASSColor(r, g, b, a), true
}

// ASSColorOr is ASSColor with a fallback for absent or unparseable
// input. Callers pass known-good fallbacks; an unparseable one still
// yields a renderable value rather than an empty style field.
func ASSColorOr(s, fallback string) string {
	if c, ok := ASSColor(s); ok {
		return c
	}
	if c, ok := ASSColor(fallback); ok {
		return c
	}
	return TransparentASS
}

// TransparentASS is fully transparent black.
const TransparentASS = "&HFF000000"

func formatASSColor(r, g, b uint8, alpha float64) string {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	aa := uint8(255 - int(alpha*255+0.5))
	return fmt.Sprintf("&H%02X%02X%02X%02X", aa, b, g, r)
}

// ParseColor parses a CSS-style color into its channels. Alpha is
// 0..1, defaulting to opaque.
func ParseColor(s string) (r, g, b uint8, a float64, ok bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, 0, 0, 0, false
	}

	if rgb, found := namedColors[s]; found {
		return uint8(rgb >> 16), uint8(rgb >> 8), uint8(rgb), 1, true
	}

	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}

	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGBFunc(s)
	}

	return 0, 0, 0, 0, false
}

func parseHexColor(hex string) (r, g, b uint8, a float64, ok bool) {
	switch len(hex) {
	case 3:
		var expanded strings.Builder
		for _, c := range hex {
			expanded.WriteRune(c)
			expanded.WriteRune(c)
		}
		hex = expanded.String()
	case 6, 8:
	default:
		return 0, 0, 0, 0, false
	}

	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, 0, 0, 0, false
	}

	if len(hex) == 8 {
		return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8),
			float64(uint8(v)) / 255, true
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), 1, true
}

func parseRGBFunc(s string) (r, g, b uint8, a float64, ok bool) {
	open := strings.IndexByte(s, '(')
	closeIdx := strings.IndexByte(s, ')')
	if open < 0 || closeIdx <= open {
		return 0, 0, 0, 0, false
	}

	parts := strings.Split(s[open+1:closeIdx], ",")
	if len(parts) < 3 {
		return 0, 0, 0, 0, false
	}

	channel := func(p string) (uint8, bool) {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || n < 0 || n > 255 {
			return 0, false
		}
		return uint8(n + 0.5), true
	}

	var okR, okG, okB bool
	r, okR = channel(parts[0])
	g, okG = channel(parts[1])
	b, okB = channel(parts[2])
	if !okR || !okG || !okB {
		return 0, 0, 0, 0, false
	}

	a = 1
	if len(parts) >= 4 {
		n, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || n < 0 || n > 1 {
			return 0, 0, 0, 0, false
		}
		a = n
	}
	return r, g, b, a, true
}
