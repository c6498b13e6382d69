package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/pinboard"
	"github.com/menta2k/pinboard/internal/config"
	"github.com/menta2k/pinboard/internal/utils"
	"github.com/menta2k/pinboard/pkg/capture"
	"github.com/menta2k/pinboard/pkg/gallery"
	"github.com/menta2k/pinboard/pkg/geometry"
	"github.com/menta2k/pinboard/pkg/loader"
	"github.com/menta2k/pinboard/pkg/orientation"
	"github.com/menta2k/pinboard/pkg/pins"
)

func main() {
	var in, outDir, galleryDir, name, pinSpec, containerSpec, marker, hexColor, configPath string
	var scale float64
	var timeout time.Duration
	var markerSize int
	var verbose bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&configPath, "config", "", "JSON config file (defaults applied when omitted)")
	flag.StringVar(&outDir, "out", "out", "output directory for the exported composite")
	flag.StringVar(&galleryDir, "gallery", "", "optional gallery directory to persist into")
	flag.StringVar(&name, "name", "", "custom output name (default: timestamp)")
	flag.StringVar(&pinSpec, "pins", "", "semicolon-separated container-space tap points, e.g. \"120,80;300,40\"")
	flag.StringVar(&containerSpec, "container", "800x600", "container size the tap points are relative to, WxH")
	flag.StringVar(&marker, "marker", "pin", "marker style: pin|dot|cross")
	flag.StringVar(&hexColor, "color", "d32f2f", "marker color as RRGGBB hex")
	flag.IntVar(&markerSize, "size", 14, "marker size in image pixels")
	flag.Float64Var(&scale, "scale", capture.DefaultOversample, "capture oversampling factor")
	flag.DurationVar(&timeout, "timeout", loader.DefaultTimeout, "image source resolution timeout")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()
	if in == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in input.jpg|URL -pins \"x,y;x,y\" [-container WxH] [-out dir] [-gallery dir] [-name custom]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	container, err := parseSize(containerSpec)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid -container")
	}
	markerColor, err := parseColor(hexColor)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid -color")
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
		}
		if err := cfg.Validate(); err != nil {
			logger.Fatal().Err(err).Msg("invalid config")
		}
		// Flags not set on the command line inherit the config file values.
		outDir = orDefault(outDir, "out", cfg.Output.OutputDir)
		if galleryDir == "" {
			galleryDir = cfg.Output.GalleryDir
		}
		if scale == capture.DefaultOversample {
			scale = cfg.Capture.Oversample
		}
		if timeout == loader.DefaultTimeout {
			timeout = time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second
		}
	}

	session := pinboard.NewSession(outDir)
	defer session.Close()
	session.SetLogger(logger)
	session.SetResolver(loader.NewResolverWithTimeout(timeout))
	session.Exporter().SetOversample(scale)
	session.Exporter().SetDetector(orientation.NewWithConfig(orientation.Config{
		MatchThreshold: cfg.Orientation.MatchThreshold,
	}))
	if cfg.Output.TempDir != "" {
		session.Exporter().SetTempDir(cfg.Output.TempDir)
	}
	if galleryDir != "" {
		session.SetGallery(gallery.NewDir(galleryDir))
	}

	if !strings.Contains(in, "://") && !utils.IsImageFile(in) {
		logger.Warn().Str("source", in).Msg("input does not carry a known image extension")
	}

	ctx := context.Background()
	if err := session.SetSourceSync(ctx, in); err != nil {
		logger.Fatal().Err(err).Str("source", in).Msg("failed to resolve image source")
	}
	dims, _ := session.Dimensions()
	logger.Info().Int("width", dims.Width).Int("height", dims.Height).Msg("image source resolved")

	session.Store().SetStyle(&pins.Pin{Visual: buildMarker(marker, markerColor, markerSize)})
	session.Store().OnUpdate(func(all []pins.Pin) {
		if len(all) == 0 {
			return
		}
		last := all[len(all)-1]
		logger.Debug().Float64("x", last.Position.X).Float64("y", last.Position.Y).Int("count", len(all)).Msg("pin placed")
	})

	placed := 0
	for _, tap := range parsePins(pinSpec) {
		if session.AddPinAt(tap, container) {
			placed++
		} else {
			logger.Warn().Float64("x", tap.X).Float64("y", tap.Y).Msg("tap outside the image, ignored")
		}
	}
	logger.Info().Int("placed", placed).Msg("pins placed")

	base, err := session.LoadSource(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load image source")
	}

	result := session.SaveImage(ctx, capture.NewCompositor(base, session.Store()), pinboard.SaveImageOptions{
		SaveToGallery: galleryDir != "",
		CustomName:    name,
	})

	js, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(js))
	if !result.IsSuccess {
		os.Exit(1)
	}
}

func buildMarker(kind string, c color.NRGBA, size int) capture.Marker {
	switch strings.ToLower(kind) {
	case "dot":
		return capture.DotMarker{Color: c, Radius: size / 2}
	case "cross":
		return capture.CrossMarker{Color: c, Size: size}
	default:
		return capture.PinMarker{Color: c, Size: size}
	}
}

func parseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("expected RRGGBB, got %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("expected RRGGBB, got %q", hex)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func orDefault(current, flagDefault, fromConfig string) string {
	if current == flagDefault && fromConfig != "" {
		return fromConfig
	}
	return current
}

func parseSize(spec string) (geometry.Size, error) {
	parts := strings.SplitN(strings.ToLower(spec), "x", 2)
	if len(parts) != 2 {
		return geometry.Size{}, fmt.Errorf("expected WxH, got %q", spec)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geometry.Size{}, err
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geometry.Size{}, err
	}
	if w <= 0 || h <= 0 {
		return geometry.Size{}, fmt.Errorf("container must be positive, got %q", spec)
	}
	return geometry.Size{Width: w, Height: h}, nil
}

func parsePins(spec string) []geometry.Point {
	var points []geometry.Point
	for _, pair := range strings.Split(spec, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		xy := strings.SplitN(pair, ",", 2)
		if len(xy) != 2 {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if errX != nil || errY != nil {
			continue
		}
		points = append(points, geometry.Point{X: x, Y: y})
	}
	return points
}
