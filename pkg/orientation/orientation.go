package orientation

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Detector decides whether a freshly captured composite came out vertically
// mirrored relative to a reference copy of the same capture.
type Detector struct {
	config Config
}

// Config holds configuration for flip detection
type Config struct {
	// MatchThreshold is the fraction of compared columns that must match
	// before the candidate is considered a mirror of the reference.
	MatchThreshold float64
}

// DefaultMatchThreshold is the fraction of matching columns required to
// report a vertical flip.
const DefaultMatchThreshold = 0.75

// New creates a Detector with default configuration
func New() *Detector {
	return &Detector{config: Config{MatchThreshold: DefaultMatchThreshold}}
}

// NewWithConfig creates a Detector with custom configuration
func NewWithConfig(config Config) *Detector {
	if config.MatchThreshold <= 0 || config.MatchThreshold > 1 {
		config.MatchThreshold = DefaultMatchThreshold
	}
	return &Detector{config: config}
}

// IsVerticallyFlipped reports whether candidate is the vertical mirror of
// reference. Every column x is sampled: the pixel at (x, 0) in the reference
// is compared against (x, height-1) in the candidate, and the image counts
// as flipped when more than the configured fraction of columns match.
//
// This is a heuristic, not exact equality: an image whose top row equals its
// bottom row (a solid color, most obviously) always registers as flipped.
// That false positive is accepted behavior. Images with differing dimensions
// are reported as not flipped, never as an error.
func (d *Detector) IsVerticallyFlipped(reference, candidate image.Image) bool {
	refBounds := reference.Bounds()
	candBounds := candidate.Bounds()

	width := refBounds.Dx()
	height := refBounds.Dy()
	if width == 0 || height == 0 {
		return false
	}
	if width != candBounds.Dx() || height != candBounds.Dy() {
		return false
	}

	matches := 0
	for x := 0; x < width; x++ {
		r1, g1, b1, a1 := reference.At(refBounds.Min.X+x, refBounds.Min.Y).RGBA()
		r2, g2, b2, a2 := candidate.At(candBounds.Min.X+x, candBounds.Max.Y-1).RGBA()
		if r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2 {
			matches++
		}
	}

	return float64(matches) > d.config.MatchThreshold*float64(width)
}

// FlipVertically decodes the encoded image, mirrors it top-to-bottom and
// re-encodes it as PNG. Decode or encode failures are returned as errors and
// never panic past this boundary; the intermediate decoded image is garbage
// collected once the buffer is produced.
func FlipVertically(encoded []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for flipping: %w", err)
	}

	flipped := imaging.FlipV(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flipped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode flipped image: %w", err)
	}
	return buf.Bytes(), nil
}
