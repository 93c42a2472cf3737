package software

import (
	"github.com/Carmen-Shannon/oxy-shade/engine/profiler"
)

// RendererOption is a functional option applied to a software renderer during construction via NewRenderer.
type RendererOption func(*rendererImpl)

// WithWorkers sets the maximum number of bands shaded concurrently.
//
// Parameters:
//   - n: the worker count, values below 1 mean 1
//
// Returns:
//   - RendererOption: a function that applies the worker count to a renderer
func WithWorkers(n int) RendererOption {
	return func(r *rendererImpl) {
		r.workers = n
	}
}

// WithBandHeight sets how many rows one worker task shades.
//
// Parameters:
//   - rows: the band height, values below 1 mean 1
//
// Returns:
//   - RendererOption: a function that applies the band height to a renderer
func WithBandHeight(rows int) RendererOption {
	return func(r *rendererImpl) {
		r.bandHeight = rows
	}
}

// WithProfiler records "vertex", "raster" and "overlay" stage timings on p.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - RendererOption: a function that applies the profiler to a renderer
func WithProfiler(p *profiler.Profiler) RendererOption {
	return func(r *rendererImpl) {
		r.profiler = p
	}
}

// WithBandCallback registers fn to run after each band completes. It is called from
// worker goroutines and must be safe for concurrent use.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - RendererOption: a function that applies the callback to a renderer
func WithBandCallback(fn func(Band)) RendererOption {
	return func(r *rendererImpl) {
		r.onBand = fn
	}
}
