// Package export implements the capture-flatten-correct-persist pipeline
// that turns a live composition into a PNG file on disk, optionally handed
// to a media gallery.
package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/menta2k/pinboard/internal/utils"
	"github.com/menta2k/pinboard/pkg/capture"
	"github.com/menta2k/pinboard/pkg/gallery"
	"github.com/menta2k/pinboard/pkg/orientation"
)

var errNoGallery = errors.New("no gallery capability configured")

// Messages surfaced in results. These are user-facing strings the host
// displays verbatim.
const (
	msgCaptureFailed = "Failed to capture image"
	msgSaveFailed    = "Failed to save image"
	msgSaved         = "Image saved successfully"
)

// Result reports the outcome of one export attempt. It is produced once per
// attempt and never retried automatically.
type Result struct {
	IsSuccess bool   `json:"is_success"`
	Message   string `json:"message"`
	FilePath  string `json:"file_path,omitempty"`
}

// SaveOptions controls a single SaveComposite call.
type SaveOptions struct {
	// SkipGallery keeps the export local-only. The zero value persists to
	// the gallery, so callers wanting local-only behavior set it explicitly;
	// the session facade defaults it to true.
	SkipGallery bool

	// CustomName, when non-empty, names the exported file (sanitized,
	// ".png" appended). Empty means a microsecond-timestamp name.
	CustomName string
}

// Exporter runs the save pipeline. Zero-value fields are filled with
// defaults by New.
type Exporter struct {
	outputDir  string
	tempDir    string
	oversample float64
	gallery    gallery.Gallery
	detector   *orientation.Detector
	logger     zerolog.Logger
}

// New creates an Exporter writing final files into outputDir.
func New(outputDir string) *Exporter {
	return &Exporter{
		outputDir:  outputDir,
		tempDir:    os.TempDir(),
		oversample: capture.DefaultOversample,
		detector:   orientation.New(),
		logger:     zerolog.Nop(),
	}
}

// SetGallery wires the media-gallery capability used when a save requests
// gallery persistence.
func (e *Exporter) SetGallery(g gallery.Gallery) {
	e.gallery = g
}

// SetDetector replaces the orientation detector.
func (e *Exporter) SetDetector(d *orientation.Detector) {
	if d != nil {
		e.detector = d
	}
}

// SetOversample overrides the snapshot scale factor.
func (e *Exporter) SetOversample(scale float64) {
	if scale > 0 {
		e.oversample = scale
	}
}

// SetTempDir overrides where intermediate capture files are written.
func (e *Exporter) SetTempDir(dir string) {
	if dir != "" {
		e.tempDir = dir
	}
}

// SetLogger attaches a diagnostic logger. Every caught failure is logged
// here before it is folded into a Result.
func (e *Exporter) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}

// SaveComposite captures the surface, corrects a vertically mirrored
// capture, writes the final PNG and optionally persists it to the gallery.
// Each step's failure short-circuits into a failure Result; nothing
// propagates past this boundary, including panics.
func (e *Exporter) SaveComposite(ctx context.Context, surface capture.Surface, opts SaveOptions) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("save pipeline panicked")
			result = Result{IsSuccess: false, Message: msgSaveFailed}
		}
	}()

	data, err := surface.Capture(ctx, e.oversample)
	if err != nil || len(data) == 0 {
		e.logger.Error().Err(err).Msg("surface capture produced no image data")
		return Result{IsSuccess: false, Message: msgCaptureFailed}
	}

	// Intermediate copy so orientation detection has two buffers to
	// compare. Removed on every path.
	tempPath := filepath.Join(e.tempDir, uuid.NewString()+".png")
	haveTemp := false
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		e.logger.Warn().Err(err).Str("path", tempPath).Msg("temp capture write failed, comparing in memory")
	} else {
		haveTemp = true
	}
	defer func() {
		if haveTemp {
			if err := os.Remove(tempPath); err != nil {
				e.logger.Warn().Err(err).Str("path", tempPath).Msg("temp capture cleanup failed")
			}
		}
	}()

	data = e.correctOrientation(data, tempPath, haveTemp)

	name := utils.ExportFileName(opts.CustomName)
	if err := utils.EnsureDir(e.outputDir); err != nil {
		e.logger.Error().Err(err).Str("dir", e.outputDir).Msg("output directory creation failed")
		return Result{IsSuccess: false, Message: msgSaveFailed}
	}
	finalPath := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(finalPath, data, 0o644); err != nil {
		e.logger.Error().Err(err).Str("path", finalPath).Msg("final image write failed")
		return Result{IsSuccess: false, Message: msgSaveFailed}
	}

	if !opts.SkipGallery {
		if err := e.persistToGallery(ctx, data, name); err != nil {
			e.logger.Error().Err(err).Str("name", name).Msg("gallery persistence failed")
			// The local file stays valid and its path is still reported.
			return Result{
				IsSuccess: false,
				Message:   "Image saved locally but gallery persistence failed: " + err.Error(),
				FilePath:  finalPath,
			}
		}
	}

	e.logger.Info().Str("path", finalPath).Bool("gallery", !opts.SkipGallery).Msg("image exported")
	return Result{IsSuccess: true, Message: msgSaved, FilePath: finalPath}
}

func (e *Exporter) persistToGallery(ctx context.Context, data []byte, name string) error {
	if e.gallery == nil {
		return errNoGallery
	}
	return e.gallery.Persist(ctx, data, name, true)
}

// correctOrientation re-reads the temp copy as the reference, compares it
// against the in-memory capture and flips the buffer when the capture came
// out mirrored. Detection and correction are best-effort cosmetics: any
// decode or flip failure keeps the captured bytes as they are.
func (e *Exporter) correctOrientation(data []byte, tempPath string, haveTemp bool) []byte {
	captured, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		e.logger.Debug().Err(err).Msg("capture decode failed, skipping orientation check")
		return data
	}

	reference := captured
	if haveTemp {
		if onDisk, err := imaging.Open(tempPath); err == nil {
			reference = onDisk
		} else {
			e.logger.Debug().Err(err).Msg("temp capture decode failed, comparing in memory")
		}
	}

	if !e.detector.IsVerticallyFlipped(reference, captured) {
		return data
	}

	fixed, err := orientation.FlipVertically(data)
	if err != nil {
		e.logger.Warn().Err(err).Msg("orientation correction failed, keeping captured bytes")
		return data
	}
	e.logger.Info().Msg("vertical mirror detected, capture corrected")
	return fixed
}
