package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpacityEndpointsAndMonotonic(t *testing.T) {
	assert.InDelta(t, 0.4, Opacity(0), 1e-12)
	assert.InDelta(t, 1.0, Opacity(1), 1e-12)
	assert.InDelta(t, 0.7, Opacity(0.5), 1e-12)
	prev := Opacity(0)
	for i := 1; i <= 1000; i++ {
		o := Opacity(float64(i) / 1000)
		require.GreaterOrEqual(t, o, prev)
		require.LessOrEqual(t, o, 1.0)
		prev = o
	}
	assert.Equal(t, 0.4, Opacity(-3))
	assert.Equal(t, 1.0, Opacity(7))
}

func TestBorderFromFillKeepsHue(t *testing.T) {
	for _, fill := range []Color{RGBA(40, 167, 69, 0.94), RGBA(0, 0, 0, 0), RGBA(255, 255, 255, 0.4)} {
		b := BorderFromFill(fill)
		assert.Equal(t, fill.R, b.R)
		assert.Equal(t, fill.G, b.G)
		assert.Equal(t, fill.B, b.B)
		assert.Equal(t, 1.0, b.A)
	}
}

func TestBorderFromFillString(t *testing.T) {
	got, err := BorderFromFillString("rgba(40, 167, 69, 0.94)")
	require.NoError(t, err)
	assert.Equal(t, "rgb(40, 167, 69)", got)

	got, err = BorderFromFillString("rgba(23,162,184,0.7)")
	require.NoError(t, err)
	assert.Equal(t, "rgb(23, 162, 184)", got)

	for _, bad := range []string{"rgb(1, 2, 3)", "rgba(1, 2, 3)", "rgba(300, 2, 3, 0.5)", "rgba(1, 2, 3, 1.5)", "#ffffff"} {
		_, err := BorderFromFillString(bad)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, bad)
		assert.Equal(t, "color", ve.Field)
	}
}

func TestParseRGBARoundTrip(t *testing.T) {
	c := RGBA(108, 117, 125, 0.7)
	parsed, err := ParseRGBA(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestColorStringRoundsAlpha(t *testing.T) {
	c := DefaultPalette().ProbabilityFill(0.9)
	assert.Equal(t, "rgba(40, 167, 69, 0.94)", c.String())
	assert.Equal(t, "rgba(40, 167, 69, 1)", BorderFromFill(c).String())
}

func TestHexColors(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, "#dc3545", p.Deficient.Hex())
	assert.Equal(t, "#28a745", p.Optimal.Hex())
	assert.Equal(t, "#6c757d", p.Excessive.Hex())

	c, err := ParseHexColor("#17a2b8")
	require.NoError(t, err)
	assert.Equal(t, RGBA(23, 162, 184, 1), c)

	_, err = ParseHexColor("teal")
	assert.Error(t, err)
}
