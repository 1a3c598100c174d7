package reconstruct

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Canonical family names for the bundled replacement fonts. Source fonts
// are mapped onto these so the output stays renderable regardless of what
// the original document embedded.
const (
	FamilyRegular    = "go-regular"
	FamilyBold       = "go-bold"
	FamilyItalic     = "go-italic"
	FamilyBoldItalic = "go-bolditalic"
	FamilyMono       = "go-mono"
)

var fontData = map[string][]byte{
	FamilyRegular:    goregular.TTF,
	FamilyBold:       gobold.TTF,
	FamilyItalic:     goitalic.TTF,
	FamilyBoldItalic: gobolditalic.TTF,
	FamilyMono:       gomono.TTF,
}

// MapFontFamily maps a source font name to a canonical replacement family,
// preserving weight and slant. A profile's "mono" preference overrides the
// base family; "sans" and "serif" both resolve to the bundled sans face.
func MapFontFamily(family, preference string) string {
	name := strings.ToLower(family)

	bold := strings.Contains(name, "bold")
	italic := strings.Contains(name, "italic") || strings.Contains(name, "oblique")
	mono := strings.Contains(name, "mono") || strings.Contains(name, "courier") ||
		strings.ToLower(preference) == "mono"

	switch {
	case mono:
		return FamilyMono
	case bold && italic:
		return FamilyBoldItalic
	case bold:
		return FamilyBold
	case italic:
		return FamilyItalic
	default:
		return FamilyRegular
	}
}

type faceKey struct {
	family string
	size   int32 // quarter points
}

var (
	parsedMu    sync.Mutex
	parsedFonts = map[string]*sfnt.Font{}

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

func parsedFont(family string) (*sfnt.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if f, ok := parsedFonts[family]; ok {
		return f, nil
	}
	data, ok := fontData[family]
	if !ok {
		return nil, fmt.Errorf("unknown font family %q", family)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", family, err)
	}
	parsedFonts[family] = f
	return f, nil
}

// face returns a cached rendering face for a canonical family at the given
// size in points.
func face(family string, size float64) (font.Face, error) {
	key := faceKey{family: family, size: int32(size * 4)}

	facesMu.Lock()
	defer facesMu.Unlock()

	if fc, ok := faces[key]; ok {
		return fc, nil
	}
	f, err := parsedFont(family)
	if err != nil {
		return nil, err
	}
	fc, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face %s@%g: %w", family, size, err)
	}
	faces[key] = fc
	return fc, nil
}

// wrapText breaks text into lines that fit maxWidth pixels under fc.
// Existing newlines start new lines; a word wider than the box gets a line
// of its own rather than being dropped.
func wrapText(text string, fc font.Face, maxWidth float64) []string {
	limit := fixed.I(int(maxWidth))

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if font.MeasureString(fc, candidate) > limit {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// lineHeight returns the vertical advance of fc in pixels.
func lineHeight(fc font.Face) float64 {
	return float64(fc.Metrics().Height) / 64
}

// textFits reports whether text, wrapped to the given width, fits within
// the given height under fc.
func textFits(text string, fc font.Face, width, height float64) bool {
	lines := wrapText(text, fc, width)
	return float64(len(lines))*lineHeight(fc) <= height
}

// drawTextBox renders wrapped text into area, clipping lines that run past
// its bottom edge. It reports whether anything was clipped.
func drawTextBox(dst *image.RGBA, area image.Rectangle, text string, fc font.Face, col color.Color) (clipped bool) {
	metrics := fc.Metrics()
	advance := metrics.Height
	lines := wrapText(text, fc, float64(area.Dx()))

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: fc,
		Dot:  fixed.P(area.Min.X, area.Min.Y).Add(fixed.Point26_6{Y: metrics.Ascent}),
	}
	for _, line := range lines {
		if (d.Dot.Y + metrics.Descent).Ceil() > area.Max.Y {
			return true
		}
		d.Dot.X = fixed.I(area.Min.X)
		d.DrawString(line)
		d.Dot.Y += advance
	}
	return false
}
