package geometry

import (
	"math"
	"testing"
)

func TestAspectRatio(t *testing.T) {
	if got := AspectRatio(400, 300); got != 400.0/300.0 {
		t.Errorf("Expected ratio %f, got %f", 400.0/300.0, got)
	}

	// Unknown dimensions fall back to a 1:1 placeholder instead of
	// producing 0, NaN or Inf.
	for _, dims := range [][2]float64{{0, 100}, {100, 0}, {0, 0}, {-1, 100}} {
		got := AspectRatio(dims[0], dims[1])
		if got != 1 {
			t.Errorf("AspectRatio(%v, %v) = %f, want placeholder 1", dims[0], dims[1], got)
		}
	}
}

func TestContainSize(t *testing.T) {
	tests := []struct {
		name           string
		imageW, imageH float64
		container      Size
		want           Size
	}{
		{
			name:   "wide container, height constrained",
			imageW: 100, imageH: 50,
			container: Size{Width: 400, Height: 100},
			want:      Size{Width: 200, Height: 100},
		},
		{
			name:   "tall container, width constrained",
			imageW: 100, imageH: 100,
			container: Size{Width: 200, Height: 400},
			want:      Size{Width: 200, Height: 200},
		},
		{
			name:   "matching aspect fills container",
			imageW: 200, imageH: 100,
			container: Size{Width: 400, Height: 200},
			want:      Size{Width: 400, Height: 200},
		},
		{
			name:   "portrait image in landscape container",
			imageW: 50, imageH: 100,
			container: Size{Width: 300, Height: 150},
			want:      Size{Width: 75, Height: 150},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainSize(tt.imageW, tt.imageH, tt.container)
			if math.Abs(got.Width-tt.want.Width) > 1e-9 || math.Abs(got.Height-tt.want.Height) > 1e-9 {
				t.Errorf("ContainSize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// The contain fit must preserve the image aspect ratio and touch the
// container on at least one axis exactly.
func TestContainSizePreservesAspect(t *testing.T) {
	containers := []Size{
		{Width: 400, Height: 100},
		{Width: 123, Height: 456},
		{Width: 1920, Height: 1080},
		{Width: 10, Height: 10},
	}
	images := [][2]float64{{100, 50}, {50, 100}, {333, 333}, {1, 999}}

	for _, c := range containers {
		for _, img := range images {
			got := ContainSize(img[0], img[1], c)

			wantRatio := img[0] / img[1]
			gotRatio := got.Width / got.Height
			if math.Abs(gotRatio-wantRatio) > 1e-9 {
				t.Errorf("image %vx%v in %+v: ratio %f, want %f", img[0], img[1], c, gotRatio, wantRatio)
			}

			if got.Width > c.Width+1e-9 || got.Height > c.Height+1e-9 {
				t.Errorf("image %vx%v in %+v: result %+v exceeds container", img[0], img[1], c, got)
			}

			touchesWidth := math.Abs(got.Width-c.Width) < 1e-9
			touchesHeight := math.Abs(got.Height-c.Height) < 1e-9
			if !touchesWidth && !touchesHeight {
				t.Errorf("image %vx%v in %+v: result %+v touches neither axis", img[0], img[1], c, got)
			}
		}
	}
}

func TestMapToImage(t *testing.T) {
	container := Size{Width: 400, Height: 100}
	display := Size{Width: 200, Height: 100}

	tests := []struct {
		name   string
		screen Point
		want   Point
		ok     bool
	}{
		{
			name:   "tap inside maps proportionally",
			screen: Point{X: 200, Y: 25},
			want:   Point{X: 100, Y: 25},
			ok:     true,
		},
		{
			name:   "edge point is accepted inclusively",
			screen: Point{X: 100, Y: 50},
			want:   Point{X: 50, Y: 50},
			ok:     true,
		},
		{
			name:   "origin is accepted",
			screen: Point{X: 0, Y: 0},
			want:   Point{X: 0, Y: 0},
			ok:     true,
		},
		{
			name:   "negative screen coordinate rejected",
			screen: Point{X: -10, Y: 25},
			ok:     false,
		},
		{
			name:   "mapped point beyond image height rejected",
			screen: Point{X: 100, Y: 60},
			ok:     false,
		},
		{
			name:   "mapped point beyond image width rejected",
			screen: Point{X: 300, Y: 25},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapToImage(tt.screen, container, display, 100, 50)
			if ok != tt.ok {
				t.Fatalf("MapToImage(%+v) ok = %v, want %v", tt.screen, ok, tt.ok)
			}
			if ok && (math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9) {
				t.Errorf("MapToImage(%+v) = %+v, want %+v", tt.screen, got, tt.want)
			}
		})
	}
}

func TestMapToImageDegenerateContainer(t *testing.T) {
	if _, ok := MapToImage(Point{X: 1, Y: 1}, Size{}, Size{Width: 100, Height: 100}, 100, 100); ok {
		t.Error("zero-sized container should reject the mapping")
	}
}
