// Package image renders the hourly sky backgrounds: a flat sky colour that
// fades to white towards the bottom edge, with a text label in the
// contrasting colour.
package image

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/aellingwood/skygen/internal/sky"
)

// LabelOffset is the top-left corner of the label, in pixels.
var LabelOffset = image.Pt(20, 20)

// Options controls the raster geometry.
type Options struct {
	Width     int
	Height    int
	FadeRatio float64 // fraction of the height that fades to white
}

// Renderer paints sky backgrounds. It holds no per-image state.
type Renderer struct {
	opts Options
	face font.Face
}

// NewRenderer creates a Renderer. A nil face selects the built-in fallback
// face.
func NewRenderer(opts Options, face font.Face) *Renderer {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &Renderer{opts: opts, face: face}
}

// Options returns the geometry the renderer was created with.
func (r *Renderer) Options() Options {
	return r.opts
}

// GradientHeight is the number of bottom rows that fade to white.
func (r *Renderer) GradientHeight() int {
	return int(math.Floor(float64(r.opts.Height) * r.opts.FadeRatio))
}

// Render paints the background for colour and draws label on it.
//
// The top Height-GradientHeight rows are filled with colour. The remaining
// rows blend row by row from colour at the seam to white at the bottom edge.
// The label is drawn at LabelOffset in sky.Contrast(colour).
func (r *Renderer) Render(colour sky.Colour, label string) *image.NRGBA {
	img := r.Base(colour)
	r.drawLabel(img, norm.NFC.String(label), sky.Contrast(colour))
	return img
}

// Base paints the gradient background without a label.
func (r *Renderer) Base(colour sky.Colour) *image.NRGBA {
	w, h := r.opts.Width, r.opts.Height
	img := imaging.New(w, h, colour.NRGBA())

	n := r.GradientHeight()
	top := h - n
	for k, c := range sky.Linspace(colour, sky.White, n) {
		row := image.Rect(0, top+k, w, top+k+1)
		draw.Draw(img, row, image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
	}
	return img
}

// Measure returns the bounding box of label drawn with the renderer's face,
// relative to the label origin.
func (r *Renderer) Measure(label string) image.Rectangle {
	b, _ := font.BoundString(r.face, norm.NFC.String(label))
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

func (r *Renderer) drawLabel(img draw.Image, label string, c color.Color) {
	ascent := r.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(LabelOffset.X, LabelOffset.Y+ascent),
	}
	d.DrawString(label)
}
