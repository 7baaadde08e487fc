// Package canvas provides the drawing helpers shared by the rendered
// simulation domains
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/dmcgym/utils/floatutils"
)

var (
	Sky    = color.RGBA{R: 46, G: 62, B: 84, A: 255}
	Ground = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	Cart   = color.RGBA{R: 178, G: 128, B: 77, A: 255}
	Pole   = color.RGBA{R: 204, G: 153, B: 102, A: 255}
	Rail   = color.RGBA{R: 70, G: 70, B: 70, A: 255}
)

// Camera maps world coordinates in metres onto the pixels of a frame.
// The camera looks at (CentreX, CentreY) and frames Span metres of the
// world horizontally.
type Camera struct {
	CentreX, CentreY float64
	Span             float64
	width, height    float64
}

// NewCamera returns a new Camera for frames of the given size
func NewCamera(centreX, centreY, span float64, width, height int) Camera {
	return Camera{
		CentreX: centreX,
		CentreY: centreY,
		Span:    span,
		width:   float64(width),
		height:  float64(height),
	}
}

// Scale returns the number of pixels per metre
func (c Camera) Scale() float64 {
	return c.width / c.Span
}

// Pixel returns the pixel coordinates of the world point (x, y). The y
// axis of the world points up, while that of the frame points down.
func (c Camera) Pixel(x, y float64) (float64, float64) {
	px := c.width/2 + (x-c.CentreX)*c.Scale()
	py := c.height/2 - (y-c.CentreY)*c.Scale()
	return px, py
}

// New returns a new drawing context of the given size, cleared to the
// sky colour
func New(width, height int) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetColor(Sky)
	dc.Clear()
	return dc
}

// RewardColour blends base towards green as reward approaches 1 and
// towards red as reward approaches 0
func RewardColour(base color.RGBA, reward float64) color.RGBA {
	reward = floatutils.Clip(reward, 0, 1)
	blend := func(c, target uint8, w float64) uint8 {
		return uint8(float64(c)*(1-w) + float64(target)*w)
	}

	return color.RGBA{
		R: blend(base.R, 255, (1-reward)/2),
		G: blend(base.G, 255, reward/2),
		B: blend(base.B, 0, 0.5),
		A: 255,
	}
}

// RGBA returns the frame drawn by dc
func RGBA(dc *gg.Context) *image.RGBA {
	img := dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
