// Package capture abstracts "turn the current visual composition into
// encoded bytes" behind the Surface interface and ships a software
// compositor that flattens a base image plus pin markers without any GUI
// toolkit involved.
package capture

import "context"

// DefaultOversample is the snapshot scale factor applied when capturing a
// composition for export.
const DefaultOversample = 2.5

// Surface captures the current visual composition to encoded PNG bytes at
// the given oversampling factor. Implementations decide what the render
// target is; callers treat it as a black box returning bytes.
type Surface interface {
	Capture(ctx context.Context, scale float64) ([]byte, error)
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func(ctx context.Context, scale float64) ([]byte, error)

// Capture implements Surface.
func (f SurfaceFunc) Capture(ctx context.Context, scale float64) ([]byte, error) {
	return f(ctx, scale)
}
