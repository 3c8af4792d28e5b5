// Package label builds annotation text and estimates the size of the glyph
// that will carry it.
//
// Sizes are estimated from character counts rather than measured against a
// real font, which is close enough for placement: a glyph that is a few
// pixels too wide only shifts where the bleed checks trigger.
package label

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/matzehuels/redline/pkg/core/geom"
)

const (
	fontCharWidth  = 0.55
	fontLineHeight = 1.25
	fontSizeMin    = 8.0
	fontSizeMax    = 24.0
	minVisibleRune = 3
)

// Style controls glyph sizing.
type Style struct {
	FontSize float64 `json:"fontSize" yaml:"font_size" toml:"font_size"`
	PaddingX float64 `json:"paddingX" yaml:"padding_x" toml:"padding_x"`
	PaddingY float64 `json:"paddingY" yaml:"padding_y" toml:"padding_y"`
}

// DefaultStyle is an 11px label with a small pill around it.
var DefaultStyle = Style{FontSize: 11, PaddingX: 4, PaddingY: 2}

// EffectiveFontSize returns the font size glyphs are measured and drawn at:
// FontSize clamped to 8..24, or the default when unset.
func (s Style) EffectiveFontSize() float64 {
	if s.FontSize <= 0 {
		return DefaultStyle.FontSize
	}
	return max(fontSizeMin, min(fontSizeMax, s.FontSize))
}

// Measure estimates the glyph size needed to show text.
func Measure(text string, s Style) geom.Size {
	fs := s.EffectiveFontSize()
	n := utf8.RuneCountInString(text)
	return geom.Size{
		Width:  float64(n)*fs*fontCharWidth + 2*s.PaddingX,
		Height: fs*fontLineHeight + 2*s.PaddingY,
	}
}

// Truncate shortens text with ".." so its glyph is at most maxWidth wide.
// At least three characters are always kept.
func Truncate(text string, maxWidth float64, s Style) string {
	charWidth := s.EffectiveFontSize() * fontCharWidth
	maxChars := int((maxWidth - 2*s.PaddingX) / charWidth)
	if maxChars < minVisibleRune {
		maxChars = minVisibleRune
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars-2]) + ".."
}

// Number formats v with at most two decimals and no trailing zeros.
func Number(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Dimension formats a width and height label, e.g. "120 × 48".
func Dimension(w, h float64) string {
	return Number(w) + " × " + Number(h)
}

// Spacing formats a distance label, e.g. "24".
func Spacing(d float64) string {
	return Number(d)
}

// Name returns the display label for a shape, falling back to its id.
func Name(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
