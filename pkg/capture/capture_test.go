package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/pinboard/pkg/geometry"
	"github.com/menta2k/pinboard/pkg/pins"
)

func createBaseImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 3), uint8(y * 3), 64, 255})
		}
	}
	return img
}

func storeWithPin(t *testing.T, visual any, x, y float64) *pins.Store {
	t.Helper()
	store := pins.NewStore()
	store.SetStyle(&pins.Pin{Visual: visual})
	ok := store.AddAt(
		geometry.Point{X: x, Y: y},
		geometry.Size{Width: 80, Height: 40},
		geometry.Size{Width: 80, Height: 40},
		80, 40,
	)
	if !ok {
		t.Fatal("test pin placement failed")
	}
	return store
}

func TestCaptureScalesBaseImage(t *testing.T) {
	comp := NewCompositor(createBaseImage(80, 40), pins.NewStore())

	data, err := comp.Capture(context.Background(), 2.5)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode capture: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("Capture at 2.5x = %dx%d, want 200x100", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCaptureNilBase(t *testing.T) {
	comp := NewCompositor(nil, pins.NewStore())
	if _, err := comp.Capture(context.Background(), 2.5); err == nil {
		t.Error("Capture without a base image should fail")
	}
}

func TestCaptureCancelled(t *testing.T) {
	comp := NewCompositor(createBaseImage(10, 10), pins.NewStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := comp.Capture(ctx, 1); err == nil {
		t.Error("Cancelled context should abort capture")
	}
}

func TestCaptureDrawsDotMarker(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	store := storeWithPin(t, DotMarker{Color: red, Radius: 4}, 40, 20)
	comp := NewCompositor(createBaseImage(80, 40), store)

	data, err := comp.Capture(context.Background(), 2)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Pin at image (40,20) lands at (80,40) in the 2x capture.
	r, g, b, _ := img.At(80, 40).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("Expected red marker pixel at scaled anchor, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCaptureDrawsPinMarkerAtTip(t *testing.T) {
	blue := color.NRGBA{0, 0, 255, 255}
	store := storeWithPin(t, PinMarker{Color: blue, Size: 8}, 40, 30)
	comp := NewCompositor(createBaseImage(80, 40), store)

	data, err := comp.Capture(context.Background(), 1)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// The stem tip sits on the anchor itself.
	r, g, b, _ := img.At(40, 30).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("Expected blue stem pixel at anchor, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCaptureDrawsImageVisualCentered(t *testing.T) {
	green := color.NRGBA{0, 255, 0, 255}
	visual := imaging.New(4, 4, green)
	store := storeWithPin(t, visual, 40, 20)
	comp := NewCompositor(createBaseImage(80, 40), store)

	data, err := comp.Capture(context.Background(), 1)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	r, g, b, _ := img.At(40, 20).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("Expected green visual pixel at anchor, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCaptureSkipsUnknownVisual(t *testing.T) {
	store := storeWithPin(t, "opaque-payload-the-compositor-cannot-render", 40, 20)
	comp := NewCompositor(createBaseImage(80, 40), store)

	if _, err := comp.Capture(context.Background(), 1); err != nil {
		t.Errorf("Unknown visual payloads should be skipped, not fail: %v", err)
	}
}

func TestSurfaceFunc(t *testing.T) {
	called := false
	var s Surface = SurfaceFunc(func(ctx context.Context, scale float64) ([]byte, error) {
		called = true
		return []byte{1}, nil
	})
	if _, err := s.Capture(context.Background(), 1); err != nil || !called {
		t.Error("SurfaceFunc should delegate to the wrapped function")
	}
}

func TestMarkerBounds(t *testing.T) {
	markers := []Marker{
		DotMarker{Radius: 4},
		CrossMarker{Size: 8},
		PinMarker{Size: 8},
	}
	for _, m := range markers {
		b := m.Bounds(2)
		if b.Empty() {
			t.Errorf("%T bounds should be non-empty", m)
		}
	}
	// Pin markers hang above their anchor.
	if b := (PinMarker{Size: 8}).Bounds(1); b.Min.Y >= 0 {
		t.Errorf("PinMarker bounds should extend above the anchor, got %v", b)
	}
}

func BenchmarkCapture(b *testing.B) {
	store := pins.NewStore()
	store.SetStyle(&pins.Pin{Visual: DotMarker{Color: color.NRGBA{255, 0, 0, 255}, Radius: 6}})
	for i := 0; i < 20; i++ {
		store.AddAt(
			geometry.Point{X: float64(i * 10), Y: float64(i * 5)},
			geometry.Size{Width: 640, Height: 480},
			geometry.Size{Width: 640, Height: 480},
			640, 480,
		)
	}
	comp := NewCompositor(createBaseImage(640, 480), store)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := comp.Capture(context.Background(), 2.5); err != nil {
			b.Fatal(err)
		}
	}
}
