package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Dimensions are the intrinsic pixel dimensions of an image source.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Sentinel errors callers branch on.
var (
	ErrTimeout           = errors.New("image source resolution timed out")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

// DefaultTimeout bounds how long a single resolution may take.
const DefaultTimeout = 30 * time.Second

// Resolver resolves an image source, either a local file path or an http(s)
// URL, to its pixel dimensions or a fully decoded image. Every operation is
// context-cancellable and bounded by the configured timeout.
type Resolver struct {
	client  *http.Client
	timeout time.Duration
}

// NewResolver creates a Resolver with the default 30 second timeout.
func NewResolver() *Resolver {
	return NewResolverWithTimeout(DefaultTimeout)
}

// NewResolverWithTimeout creates a Resolver with a custom timeout bound.
func NewResolverWithTimeout(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Resolve returns the intrinsic pixel dimensions of the source without
// holding the full decoded image in memory for local files. Remote sources
// are downloaded first; the wait is bounded and a timeout is reported as
// ErrTimeout rather than hanging.
func (r *Resolver) Resolve(ctx context.Context, source string) (Dimensions, error) {
	if isRemote(source) {
		data, err := r.fetch(ctx, source)
		if err != nil {
			return Dimensions{}, err
		}
		return dimensionsFromBytes(data)
	}

	f, err := os.Open(source)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Fallback: explicit WebP config decode.
		if _, serr := f.Seek(0, io.SeekStart); serr == nil {
			if wcfg, werr := webp.DecodeConfig(f); werr == nil {
				return Dimensions{Width: wcfg.Width, Height: wcfg.Height}, nil
			}
		}
		return Dimensions{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Load fully decodes the source image from a local path or URL.
func (r *Resolver) Load(ctx context.Context, source string) (image.Image, error) {
	if isRemote(source) {
		data, err := r.fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return decodeBytes(data)
	}
	return loadFile(source)
}

// AspectRatio returns width/height, or 1 for dimensions that are not yet
// known so layout code never divides by zero.
func (d Dimensions) AspectRatio() float64 {
	if d.Width <= 0 || d.Height <= 0 {
		return 1
	}
	return float64(d.Width) / float64(d.Height)
}

func isRemote(source string) bool {
	return strings.Contains(source, "://")
}

func (r *Resolver) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, parsedURL.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Pinboard/1.0 (+https://github.com/menta2k/pinboard)")

	resp, err := r.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, imageURL)
		}
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, imageURL)
		}
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func dimensionsFromBytes(data []byte) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if wcfg, werr := webp.DecodeConfig(bytes.NewReader(data)); werr == nil {
			return Dimensions{Width: wcfg.Width, Height: wcfg.Height}, nil
		}
		return Dimensions{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func decodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

func loadFile(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.Contains(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}
