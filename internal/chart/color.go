package chart

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a display color with an alpha channel in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA constructs a Color.
func RGBA(r, g, b uint8, a float64) Color { return Color{R: r, G: g, B: b, A: a} }

// String renders the CSS form "rgba(r, g, b, a)".
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatAlpha(c.A))
}

// RGB renders the opaque CSS form "rgb(r, g, b)".
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex renders "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return c.toColorful().Hex()
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// MarshalText encodes the color in its CSS rgba form.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c Color) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// alpha is rounded for display so 0.4+0.9*0.6 prints as 0.94.
func formatAlpha(a float64) string {
	return strconv.FormatFloat(math.Round(a*1e4)/1e4, 'f', -1, 64)
}

// Opacity scales a probability into an alpha channel: 0.4 + p*0.6,
// clamped to [0.4, 1.0].
func Opacity(p float64) float64 {
	o := 0.4 + p*0.6
	if o < 0.4 || math.IsNaN(o) {
		return 0.4
	}
	if o > 1 {
		return 1
	}
	return o
}

// BorderFromFill derives a fully opaque border of the same hue.
func BorderFromFill(fill Color) Color {
	return fill.WithAlpha(1)
}

// BorderFromFillString converts "rgba(r, g, b, a)" into "rgb(r, g, b)".
func BorderFromFillString(fill string) (string, error) {
	c, err := ParseRGBA(fill)
	if err != nil {
		return "", err
	}
	return BorderFromFill(c).RGB(), nil
}

var rgbaPattern = regexp.MustCompile(`^rgba\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*([\d.]+)\s*\)$`)

// ParseRGBA parses a CSS "rgba(r, g, b, a)" string.
func ParseRGBA(s string) (Color, error) {
	m := rgbaPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Color{}, invalid("color", "malformed rgba string %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return Color{}, invalid("color", "channel %q out of range in %q", m[i+1], s)
		}
		ch[i] = uint8(v)
	}
	a, err := strconv.ParseFloat(m[4], 64)
	if err != nil || a > 1 {
		return Color{}, invalid("color", "alpha %q out of range in %q", m[4], s)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

// ParseHexColor parses "#rrggbb" (or "#rgb") into an opaque Color.
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return Color{}, invalid("color", "malformed hex color %q", s)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: 1}, nil
}

// Palette holds every fixed color used by the chart builders.
type Palette struct {
	Deficient   Color
	Optimal     Color
	Excessive   Color
	LowLine     Color
	HighLine    Color
	Probability Color
	Water       [3]Color
}

// DefaultPalette returns the stock colors.
func DefaultPalette() Palette {
	return Palette{
		Deficient:   RGBA(220, 53, 69, 0.7),
		Optimal:     RGBA(40, 167, 69, 0.7),
		Excessive:   RGBA(108, 117, 125, 0.7),
		LowLine:     RGBA(255, 193, 7, 0.7),
		HighLine:    RGBA(220, 53, 69, 0.7),
		Probability: RGBA(40, 167, 69, 1),
		Water: [3]Color{
			RGBA(23, 162, 184, 0.7),
			RGBA(0, 123, 255, 0.7),
			RGBA(40, 167, 69, 0.7),
		},
	}
}

// ForClass returns the bar fill for c. Unknown values fall back to the
// excessive gray so the mapping stays total.
func (p Palette) ForClass(c Classification) Color {
	switch c {
	case Deficient:
		return p.Deficient
	case Optimal:
		return p.Optimal
	default:
		return p.Excessive
	}
}

// ProbabilityFill returns the disease bar fill for probability prob.
func (p Palette) ProbabilityFill(prob float64) Color {
	return p.Probability.WithAlpha(Opacity(prob))
}
