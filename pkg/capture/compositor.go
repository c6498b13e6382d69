package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	stddraw "image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/menta2k/pinboard/pkg/pins"
)

// Compositor is a Surface that rasterizes a base image with the pins of a
// store drawn on top, in z-order. Pin positions are interpreted in original
// image pixel space and scaled along with the base.
type Compositor struct {
	base  image.Image
	store *pins.Store
}

// NewCompositor creates a compositor over the given base image and pin
// store. A nil base makes Capture fail, mirroring an unmounted render
// surface.
func NewCompositor(base image.Image, store *pins.Store) *Compositor {
	return &Compositor{base: base, store: store}
}

// Capture renders the composition at the given oversampling factor and
// returns it PNG-encoded. A non-positive scale falls back to
// DefaultOversample.
func (c *Compositor) Capture(ctx context.Context, scale float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.base == nil {
		return nil, fmt.Errorf("render surface has no image data")
	}
	if scale <= 0 {
		scale = DefaultOversample
	}

	srcBounds := c.base.Bounds()
	outW := int(math.Round(float64(srcBounds.Dx()) * scale))
	outH := int(math.Round(float64(srcBounds.Dy()) * scale))
	if outW < 1 || outH < 1 {
		return nil, fmt.Errorf("render surface has no image data")
	}

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), c.base, srcBounds, xdraw.Src, nil)

	if c.store != nil {
		for _, pin := range c.store.Pins() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			anchor := image.Pt(
				int(math.Round(pin.Position.X*scale)),
				int(math.Round(pin.Position.Y*scale)),
			)
			c.renderVisual(dst, pin.Visual, anchor, scale)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode capture: %w", err)
	}
	return buf.Bytes(), nil
}

// renderVisual draws a single opaque visual payload. Markers know how to
// draw themselves; plain images are measured first and then centered on the
// anchor (measure, then finalize the placement transform). Payload types the
// compositor does not understand are skipped.
func (c *Compositor) renderVisual(dst *image.NRGBA, visual any, anchor image.Point, scale float64) {
	switch v := visual.(type) {
	case Marker:
		v.Draw(dst, anchor, scale)
	case image.Image:
		b := v.Bounds()
		w := int(math.Round(float64(b.Dx()) * scale))
		h := int(math.Round(float64(b.Dy()) * scale))
		if w < 1 || h < 1 {
			return
		}
		scaled := imaging.Resize(v, w, h, imaging.Lanczos)
		target := image.Rect(anchor.X-w/2, anchor.Y-h/2, anchor.X-w/2+w, anchor.Y-h/2+h)
		stddraw.Draw(dst, target, scaled, scaled.Bounds().Min, stddraw.Over)
	}
}
