package geometry

// Point is a 2D coordinate in either screen space or image pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size holds a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatio returns width/height, or 1 when either dimension is not yet
// known. Callers rely on never receiving 0, NaN or Inf here.
func AspectRatio(width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return width / height
}

// ContainSize computes the largest size that fits entirely within container
// while preserving the image's aspect ratio ("contain" fit). The result
// touches the container on at least one axis; the other axis is letterboxed.
// No rounding is applied, the rendering layer rasterizes.
func ContainSize(imageWidth, imageHeight float64, container Size) Size {
	imageAspect := AspectRatio(imageWidth, imageHeight)
	containerAspect := AspectRatio(container.Width, container.Height)

	if containerAspect > imageAspect {
		// Container is relatively wider than the image: height-constrained.
		return Size{
			Width:  container.Height * imageAspect,
			Height: container.Height,
		}
	}
	return Size{
		Width:  container.Width,
		Height: container.Width / imageAspect,
	}
}

// MapToImage converts a point relative to the container's top-left origin
// into original-image pixel coordinates. The mapping scales against the
// container bounds, not the inset displayed-image rect, so it is inexact
// whenever letterboxing occurs; this matches the shipped tap-placement
// behavior and must not be "fixed" without migrating stored positions.
//
// The second return value is false when the mapped point falls outside
// [0, imageWidth] x [0, imageHeight]. The bounds are inclusive: a point
// mapping exactly onto an edge is accepted.
func MapToImage(screen Point, container, display Size, imageWidth, imageHeight float64) (Point, bool) {
	if container.Width <= 0 || container.Height <= 0 {
		return Point{}, false
	}

	mapped := Point{
		X: screen.X / container.Width * display.Width,
		Y: screen.Y / container.Height * display.Height,
	}

	if mapped.X < 0 || mapped.X > imageWidth || mapped.Y < 0 || mapped.Y > imageHeight {
		return Point{}, false
	}
	return mapped, true
}
