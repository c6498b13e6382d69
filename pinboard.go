// Package pinboard overlays pin markers on a displayed image and exports
// the flattened composition as a PNG file.
//
// A Session owns one image source at a time: it resolves the source's pixel
// dimensions, tracks tap-placed pins in original image pixel space, and runs
// the capture-flatten-correct-persist pipeline on save.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"image/color"
//		"log"
//
//		"github.com/menta2k/pinboard"
//		"github.com/menta2k/pinboard/pkg/capture"
//		"github.com/menta2k/pinboard/pkg/geometry"
//		"github.com/menta2k/pinboard/pkg/pins"
//	)
//
//	func main() {
//		session := pinboard.NewSession("./output")
//		defer session.Close()
//
//		ctx := context.Background()
//		if err := session.SetSourceSync(ctx, "photo.jpg"); err != nil {
//			log.Fatal(err)
//		}
//
//		session.Store().SetStyle(&pins.Pin{Visual: capture.PinMarker{
//			Color: color.NRGBA{R: 220, A: 255}, Size: 14,
//		}})
//
//		container := geometry.Size{Width: 800, Height: 600}
//		session.AddPinAt(geometry.Point{X: 400, Y: 300}, container)
//
//		base, err := session.LoadSource(ctx)
//		if err != nil {
//			log.Fatal(err)
//		}
//		surface := capture.NewCompositor(base, session.Store())
//
//		result := session.SaveImage(ctx, surface, pinboard.SaveImageOptions{})
//		fmt.Println(result.Message, result.FilePath)
//	}
//
// The coordinate mapping, orientation heuristics and export pipeline live in
// pkg/geometry, pkg/orientation and pkg/export; the session is glue that a
// UI layer injects wherever taps and save buttons happen.
package pinboard

import (
	"context"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"github.com/menta2k/pinboard/pkg/capture"
	"github.com/menta2k/pinboard/pkg/export"
	"github.com/menta2k/pinboard/pkg/gallery"
	"github.com/menta2k/pinboard/pkg/geometry"
	"github.com/menta2k/pinboard/pkg/loader"
	"github.com/menta2k/pinboard/pkg/pins"
)

// Version of the pinboard library
const Version = "1.0.0"

// SaveImageOptions controls Session.SaveImage. The zero value is the safe
// default: local export only, timestamp-derived name.
type SaveImageOptions struct {
	// SaveToGallery additionally persists the export to the configured
	// media gallery. Off by default; the local file is written either way.
	SaveToGallery bool
	CustomName    string
}

// Session owns the pin-editing state for one image source at a time.
// Pin mutation is expected from a single event-dispatch context; dimension
// resolution completes asynchronously and is applied only while the
// resolution generation that started it is still current.
type Session struct {
	mu           sync.Mutex
	source       string
	generation   uint64
	dims         loader.Dimensions
	resolved     bool
	closed       bool
	onDimensions func(loader.Dimensions)

	store    *pins.Store
	resolver *loader.Resolver
	exporter *export.Exporter
	logger   zerolog.Logger
}

// NewSession creates a session exporting into outputDir.
func NewSession(outputDir string) *Session {
	return &Session{
		store:    pins.NewStore(),
		resolver: loader.NewResolver(),
		exporter: export.New(outputDir),
		logger:   zerolog.Nop(),
	}
}

// SetLogger attaches a diagnostic logger to the session and its pipeline.
func (s *Session) SetLogger(logger zerolog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
	s.exporter.SetLogger(logger)
}

// SetGallery wires the media-gallery capability for saves that request it.
func (s *Session) SetGallery(g gallery.Gallery) {
	s.exporter.SetGallery(g)
}

// SetResolver replaces the image source resolver (custom timeout, test
// doubles).
func (s *Session) SetResolver(r *loader.Resolver) {
	if r != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.resolver = r
	}
}

// Exporter exposes the underlying exporter for advanced configuration.
func (s *Session) Exporter() *export.Exporter {
	return s.exporter
}

// Store returns the session's pin store.
func (s *Session) Store() *pins.Store {
	return s.store
}

// OnDimensions registers a callback fired when a source's dimensions
// resolve. Stale resolutions (a newer source was set meanwhile) never fire.
func (s *Session) OnDimensions(fn func(loader.Dimensions)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDimensions = fn
}

// SetSource switches the session to a new image source. The pin set is
// cleared immediately; dimensions resolve in the background and are
// discarded if the source changes again or the session closes before the
// resolution lands.
func (s *Session) SetSource(ctx context.Context, source string) {
	gen := s.beginSource(source)
	go s.resolve(ctx, gen, source)
}

// SetSourceSync is SetSource with the resolution run in the calling flow.
// The same staleness guard applies.
func (s *Session) SetSourceSync(ctx context.Context, source string) error {
	gen := s.beginSource(source)
	return s.resolve(ctx, gen, source)
}

func (s *Session) beginSource(source string) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.source = source
	s.resolved = false
	s.dims = loader.Dimensions{}
	s.mu.Unlock()

	s.store.Clear()
	return gen
}

func (s *Session) resolve(ctx context.Context, gen uint64, source string) error {
	dims, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", source).Msg("dimension resolution failed")
		return err
	}

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug().Str("source", source).Msg("stale dimension resolution discarded")
		return nil
	}
	s.dims = dims
	s.resolved = true
	notify := s.onDimensions
	s.mu.Unlock()

	if notify != nil {
		notify(dims)
	}
	return nil
}

// Source returns the current image source.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Dimensions returns the resolved source dimensions and whether resolution
// has completed.
func (s *Session) Dimensions() (loader.Dimensions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims, s.resolved
}

// AspectRatio returns the source aspect ratio, or the 1:1 placeholder until
// dimensions resolve.
func (s *Session) AspectRatio() float64 {
	dims, _ := s.Dimensions()
	return dims.AspectRatio()
}

// DisplaySize computes the contain-fit display size of the source inside
// the given container.
func (s *Session) DisplaySize(container geometry.Size) geometry.Size {
	dims := s.effectiveDimensions()
	return geometry.ContainSize(float64(dims.Width), float64(dims.Height), container)
}

// AddPinAt maps a container-relative tap into image space and places a pin
// there using the store's selected style. Returns whether a pin was placed.
func (s *Session) AddPinAt(screen geometry.Point, container geometry.Size) bool {
	dims := s.effectiveDimensions()
	display := geometry.ContainSize(float64(dims.Width), float64(dims.Height), container)
	return s.store.AddAt(screen, container, display, float64(dims.Width), float64(dims.Height))
}

// LoadSource fully decodes the current source, for feeding a software
// compositor.
func (s *Session) LoadSource(ctx context.Context) (image.Image, error) {
	return s.resolver.Load(ctx, s.Source())
}

// SaveImage runs the export pipeline against the given render surface.
// Gallery persistence is opt-in via opts.SaveToGallery.
func (s *Session) SaveImage(ctx context.Context, surface capture.Surface, opts SaveImageOptions) export.Result {
	return s.exporter.SaveComposite(ctx, surface, export.SaveOptions{
		SkipGallery: !opts.SaveToGallery,
		CustomName:  opts.CustomName,
	})
}

// Close marks the session disposed. In-flight dimension resolutions are
// discarded instead of mutating a closed session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) effectiveDimensions() loader.Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return s.dims
	}
	// 1:1 placeholder until the real dimensions land.
	return loader.Dimensions{Width: 1, Height: 1}
}
