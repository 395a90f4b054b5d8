package sky

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	night = RGB(10, 10, 40)
	noon  = RGB(135, 206, 235)
)

func testPalette() *Palette {
	return NewPalette(map[int]Colour{
		0:  night,
		12: noon,
		23: night,
	})
}

// ---------------------------------------------------------------------------
// Colour
// ---------------------------------------------------------------------------

func TestBytes_ClampsAndTruncates(t *testing.T) {
	tests := []struct {
		name    string
		in      Colour
		r, g, b uint8
	}{
		{"integral", RGB(1, 2, 3), 1, 2, 3},
		{"truncates fraction", Colour{R: 72.5, G: 108.9, B: 137.5}, 72, 108, 137},
		{"clamps low", Colour{R: -4, G: 0, B: 0.2}, 0, 0, 0},
		{"clamps high", Colour{R: 255.1, G: 300, B: 254.99}, 255, 255, 254},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := tt.in.Bytes()
			assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b})
		})
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#87ceeb")
	require.NoError(t, err)
	assert.Equal(t, noon, c)
	assert.Equal(t, "#87ceeb", c.Hex())

	_, err = ParseHex("sky blue")
	require.Error(t, err)
}

func TestContrast(t *testing.T) {
	for _, c := range []Colour{night, noon, RGB(0, 0, 0), White, {R: 72.5, G: 108.5, B: 137.5}} {
		r, g, b := c.Bytes()
		want := color.NRGBA{R: 255 - r, G: 255 - g, B: 255 - b, A: 255}
		assert.Equal(t, want, Contrast(c), "contrast of %v", c)
	}
	assert.Equal(t, color.NRGBA{R: 245, G: 245, B: 215, A: 255}, Contrast(night))
}

func TestLerp_Endpoints(t *testing.T) {
	assert.Equal(t, night, Lerp(night, noon, 0))
	assert.Equal(t, noon, Lerp(night, noon, 1))
	assert.Equal(t, Colour{R: 72.5, G: 108, B: 137.5}, Lerp(night, noon, 0.5))
}

func TestLinspace(t *testing.T) {
	assert.Nil(t, Linspace(night, White, 0))
	assert.Equal(t, []Colour{night}, Linspace(night, White, 1))

	steps := Linspace(night, White, 150)
	require.Len(t, steps, 150)
	assert.Equal(t, night, steps[0])
	assert.Equal(t, White, steps[149])
	for i := 1; i < len(steps); i++ {
		assert.GreaterOrEqual(t, steps[i].R, steps[i-1].R)
		assert.GreaterOrEqual(t, steps[i].G, steps[i-1].G)
		assert.GreaterOrEqual(t, steps[i].B, steps[i-1].B)
	}
}

// ---------------------------------------------------------------------------
// Palette
// ---------------------------------------------------------------------------

func TestPalette_HoursSorted(t *testing.T) {
	p := testPalette()
	assert.Equal(t, []int{0, 12, 23}, p.Hours())
	assert.Equal(t, 3, p.Len())
}

func TestInterpolate_ConfiguredHoursExact(t *testing.T) {
	p := testPalette()
	for _, h := range p.Hours() {
		c, err := p.Interpolate(h)
		require.NoError(t, err)
		assert.Equal(t, p.colours[h], c, "hour %d", h)
	}
}

func TestInterpolate_Midpoint(t *testing.T) {
	c, err := testPalette().Interpolate(6)
	require.NoError(t, err)
	assert.Equal(t, Lerp(night, noon, 0.5), c)
	r, g, b := c.Bytes()
	assert.Equal(t, []uint8{72, 108, 137}, []uint8{r, g, b})
}

func TestInterpolate_Monotonic(t *testing.T) {
	p := testPalette()
	prev, err := p.Interpolate(0)
	require.NoError(t, err)
	for h := 1; h <= 12; h++ {
		c, err := p.Interpolate(h)
		require.NoError(t, err)
		assert.Greater(t, c.R, prev.R, "hour %d", h)
		assert.Greater(t, c.G, prev.G, "hour %d", h)
		assert.Greater(t, c.B, prev.B, "hour %d", h)
		want := Lerp(night, noon, float64(h)/12)
		assert.InDelta(t, want.R, c.R, 1e-9)
		prev = c
	}
}

func TestInterpolate_SingleEntry(t *testing.T) {
	p := NewPalette(map[int]Colour{5: noon})

	c, err := p.Interpolate(5)
	require.NoError(t, err)
	assert.Equal(t, noon, c)

	_, err = p.Interpolate(6)
	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, 6, lookupErr.Hour)
}

func TestInterpolate_OutsideConfiguredRange(t *testing.T) {
	p := NewPalette(map[int]Colour{6: night, 18: noon})

	_, err := p.Interpolate(3)
	require.Error(t, err)
	_, err = p.Interpolate(21)
	require.Error(t, err)

	c, err := p.Interpolate(12)
	require.NoError(t, err)
	assert.Equal(t, Lerp(night, noon, 0.5), c)
}

func TestInterpolate_EmptyPalette(t *testing.T) {
	_, err := NewPalette(nil).Interpolate(0)
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}
