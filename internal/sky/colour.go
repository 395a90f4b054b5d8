// Package sky holds the colour model used to paint the hourly backgrounds:
// real-valued RGB colours, linear blending and the hour palette.
package sky

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Colour is an RGB triple with channels in the 0..255 range. Channels stay
// real-valued while blending and are only reduced to 8 bits for pixels.
type Colour struct {
	R, G, B float64
}

// White is the colour the bottom gradient fades into.
var White = Colour{R: 255, G: 255, B: 255}

// RGB builds a Colour from 8-bit channels.
func RGB(r, g, b uint8) Colour {
	return Colour{R: float64(r), G: float64(g), B: float64(b)}
}

// ParseHex parses a "#rrggbb" (or "#rgb") string.
func ParseHex(s string) (Colour, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Colour{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}

// Bytes reduces each channel to 8 bits. Values are clamped to [0,255] and
// truncated toward zero.
func (c Colour) Bytes() (r, g, b uint8) {
	return channel(c.R), channel(c.G), channel(c.B)
}

// NRGBA returns the opaque pixel value of c.
func (c Colour) NRGBA() color.NRGBA {
	r, g, b := c.Bytes()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Hex formats the 8-bit value of c as "#rrggbb".
func (c Colour) Hex() string {
	r, g, b := c.Bytes()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}

func (c Colour) String() string {
	return fmt.Sprintf("(%g, %g, %g)", c.R, c.G, c.B)
}

// Lerp blends a and b channel-wise: (1-t)*a + t*b.
func Lerp(a, b Colour, t float64) Colour {
	return Colour{
		R: (1-t)*a.R + t*b.R,
		G: (1-t)*a.G + t*b.G,
		B: (1-t)*a.B + t*b.B,
	}
}

// Linspace returns n colours evenly spaced from start to stop inclusive.
// The first element is start and the last is exactly stop.
func Linspace(start, stop Colour, n int) []Colour {
	if n <= 0 {
		return nil
	}
	out := make([]Colour, n)
	out[0] = start
	if n == 1 {
		return out
	}
	div := float64(n - 1)
	step := Colour{
		R: (stop.R - start.R) / div,
		G: (stop.G - start.G) / div,
		B: (stop.B - start.B) / div,
	}
	for k := 1; k < n-1; k++ {
		f := float64(k)
		out[k] = Colour{
			R: f*step.R + start.R,
			G: f*step.G + start.G,
			B: f*step.B + start.B,
		}
	}
	out[n-1] = stop
	return out
}

// Contrast returns the per-channel 255 complement of the 8-bit value of c.
func Contrast(c Colour) color.NRGBA {
	r, g, b := c.Bytes()
	return color.NRGBA{R: 255 - r, G: 255 - g, B: 255 - b, A: 0xff}
}

func channel(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
