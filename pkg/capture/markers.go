package capture

import (
	"image"
	"image/color"
	"math"
)

// Marker is a vector-ish pin visual that draws itself directly into the
// capture raster. Bounds reports the marker's extent around its anchor at
// the given scale so layout can be measured before the placement transform
// is finalized.
type Marker interface {
	Bounds(scale float64) image.Rectangle
	Draw(dst *image.NRGBA, anchor image.Point, scale float64)
}

// DotMarker is a filled disc centered on the anchor.
type DotMarker struct {
	Color  color.NRGBA
	Radius int
}

// Bounds implements Marker.
func (m DotMarker) Bounds(scale float64) image.Rectangle {
	r := scaledExtent(m.Radius, 6, scale)
	return image.Rect(-r, -r, r+1, r+1)
}

// Draw implements Marker.
func (m DotMarker) Draw(dst *image.NRGBA, anchor image.Point, scale float64) {
	fillDisc(dst, anchor.X, anchor.Y, scaledExtent(m.Radius, 6, scale), m.Color)
}

// CrossMarker is a crosshair centered on the anchor.
type CrossMarker struct {
	Color color.NRGBA
	Size  int
}

// Bounds implements Marker.
func (m CrossMarker) Bounds(scale float64) image.Rectangle {
	r := scaledExtent(m.Size, 8, scale)
	return image.Rect(-r, -r, r+1, r+1)
}

// Draw implements Marker.
func (m CrossMarker) Draw(dst *image.NRGBA, anchor image.Point, scale float64) {
	r := scaledExtent(m.Size, 8, scale)
	stroke := maxInt(1, r/4)
	for s := 0; s < stroke; s++ {
		drawHLine(dst, anchor.Y-stroke/2+s, anchor.X-r, anchor.X+r+1, m.Color)
		drawVLine(dst, anchor.X-stroke/2+s, anchor.Y-r, anchor.Y+r+1, m.Color)
	}
}

// PinMarker is a map-pin shape, a disc head on a stem, anchored at the stem
// tip so the tip lands exactly on the pin position.
type PinMarker struct {
	Color color.NRGBA
	Size  int
}

// Bounds implements Marker.
func (m PinMarker) Bounds(scale float64) image.Rectangle {
	s := scaledExtent(m.Size, 12, scale)
	r := maxInt(2, s/2)
	return image.Rect(-r, -s-r, r+1, 1)
}

// Draw implements Marker.
func (m PinMarker) Draw(dst *image.NRGBA, anchor image.Point, scale float64) {
	s := scaledExtent(m.Size, 12, scale)
	r := maxInt(2, s/2)
	stroke := maxInt(1, s/6)

	// Stem from the anchor up to the head.
	for i := 0; i < stroke; i++ {
		drawVLine(dst, anchor.X-stroke/2+i, anchor.Y-s, anchor.Y+1, m.Color)
	}
	fillDisc(dst, anchor.X, anchor.Y-s, r, m.Color)
}

func scaledExtent(configured, fallback int, scale float64) int {
	if configured <= 0 {
		configured = fallback
	}
	return maxInt(1, int(math.Round(float64(configured)*scale)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

func fillDisc(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	if r < 1 {
		return
	}
	for dy := -r; dy <= r; dy++ {
		span := int(math.Sqrt(float64(r*r - dy*dy)))
		drawHLine(img, cy+dy, cx-span, cx+span+1, c)
	}
}
