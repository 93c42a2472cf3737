package software

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

// ErrRendererReleased is returned by Draw after Release.
var ErrRendererReleased = errors.New("software: renderer released")

// DefaultBandHeight is the number of rows one worker task shades.
const DefaultBandHeight = 16

// Band is a horizontal strip of rows [Y0, Y1). Bands of one pass never overlap.
type Band struct {
	Index  int
	Y0, Y1 int
}

// Bands splits height rows into consecutive bands of at most bandHeight rows.
//
// Parameters:
//   - height: the number of rows
//   - bandHeight: the maximum rows per band, at least 1
//
// Returns:
//   - []Band: the bands in top-to-bottom order
func Bands(height, bandHeight int) []Band {
	bandHeight = max(1, bandHeight)
	bands := make([]Band, 0, (height+bandHeight-1)/bandHeight)
	for y := 0; y < height; y += bandHeight {
		bands = append(bands, Band{Index: len(bands), Y0: y, Y1: min(height, y+bandHeight)})
	}
	return bands
}

// DrawCall is one draw of a mesh with a shading variant. Overlay variants ignore the
// mesh and shade every pixel from Resources.Environment.
type DrawCall struct {
	Variant   shading.Variant
	Mesh      model.Model
	Resources shading.Resources
}

// Renderer rasterizes draw calls into a Framebuffer on the CPU using the same stage
// functions the GPU shaders are validated against.
type Renderer interface {
	// Draw executes one draw call against fb.
	//
	// Parameters:
	//   - ctx: cancels the remaining bands
	//   - fb: the target
	//   - frame: the frame uniforms
	//   - call: the draw call
	//
	// Returns:
	//   - error: an error if the variant is invalid, the mesh is missing or ctx is done
	Draw(ctx context.Context, fb *Framebuffer, frame shading.Frame, call DrawCall) error

	// BandCount returns how many bands one pass over a target of the given height runs.
	BandCount(height int) int

	// Release stops the renderer's worker pool. Draw fails with ErrRendererReleased afterwards.
	Release()
}

type rendererImpl struct {
	workers    int
	bandHeight int
	pool       worker.DynamicWorkerPool
	profiler   *profiler.Profiler
	onBand     func(Band)

	mu       sync.RWMutex
	released bool
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a software renderer. Workers default to GOMAXPROCS and the band
// height to DefaultBandHeight.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(options ...RendererOption) Renderer {
	r := &rendererImpl{
		workers:    runtime.GOMAXPROCS(0),
		bandHeight: DefaultBandHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	r.workers = max(1, r.workers)
	r.bandHeight = max(1, r.bandHeight)
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	return r
}

func (r *rendererImpl) BandCount(height int) int {
	return (height + r.bandHeight - 1) / r.bandHeight
}

func (r *rendererImpl) time(stage string) func() {
	if r.profiler == nil {
		return func() {}
	}
	return r.profiler.Time(stage)
}

func (r *rendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.pool.Stop()
}

func (r *rendererImpl) Draw(ctx context.Context, fb *Framebuffer, frame shading.Frame, call DrawCall) error {
	// Holding the read lock keeps Release from stopping the pool under a running pass.
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.released {
		return ErrRendererReleased
	}
	if err := call.Variant.Validate(); err != nil {
		return err
	}
	if call.Variant.Mode == shading.ModeOverlay {
		defer r.time("overlay")()
		return r.forEachBand(ctx, fb.Height, func(b Band) {
			for y := b.Y0; y < b.Y1; y++ {
				for x := range fb.Width {
					ndc := pixelNDC(x, y, fb.Width, fb.Height)
					fb.Color[y*fb.Width+x] = shading.OverlayColor(frame.Camera, call.Resources.Environment, ndc)
				}
			}
		})
	}

	if call.Mesh == nil {
		return fmt.Errorf("software: %s draw has no mesh", call.Variant.Key())
	}
	tris := r.transform(fb, frame, call)
	common.Logger().Debug("software: draw", "variant", call.Variant.Key(), "triangles", len(tris))

	defer r.time("raster")()
	return r.forEachBand(ctx, fb.Height, func(b Band) {
		for i := range tris {
			r.rasterize(fb, frame, call, &tris[i], b)
		}
	})
}

// transform runs the vertex stage for every instance and sets up its triangles.
func (r *rendererImpl) transform(fb *Framebuffer, frame shading.Frame, call DrawCall) []triangle {
	defer r.time("vertex")()

	features := call.Variant.InstanceFeatures()
	instances := call.Mesh.Instances()
	if len(instances) == 0 {
		instances = []model.GPUInstance{model.IdentityInstance()}
	}
	vertices := call.Mesh.Vertices()
	indices := call.Mesh.Indices()

	out := make([]shading.VertexOutput, len(vertices))
	var tris []triangle
	for _, inst := range instances {
		for i, v := range vertices {
			out[i] = shading.TransformVertex(frame, v, inst, features)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			tris = append(tris, setup(out[indices[i]], out[indices[i+1]], out[indices[i+2]], fb.Width, fb.Height)...)
		}
	}
	return tris
}

// rasterize shades the pixels of t that fall inside band b.
func (r *rendererImpl) rasterize(fb *Framebuffer, frame shading.Frame, call DrawCall, t *triangle, b Band) {
	y0, y1 := max(t.minY, b.Y0), min(t.maxY, b.Y1-1)
	derivatives := call.Variant.Features.Has(shading.FeatureEdgeOverlay)
	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		for x := t.minX; x <= t.maxX; x++ {
			px := float32(x) + 0.5
			w0, w1, w2 := t.screenWeights(px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			depth := w0*t.z[0] + w1*t.z[1] + w2*t.z[2]
			i := y*fb.Width + x
			if depth < 0 || depth > 1 || depth >= fb.Depth[i] {
				continue
			}

			p0, p1, p2 := t.perspective(w0, w1, w2)
			frag := shading.Fragment{
				VertexOutput: shading.Barycentric(t.v[0], t.v[1], t.v[2], p0, p1, p2),
				Depth:        depth,
			}
			if derivatives {
				n := t.normalAt(px, py)
				frag.NormalDx = t.normalAt(px+1, py).Sub(n)
				frag.NormalDy = t.normalAt(px, py+1).Sub(n)
			}
			fb.Color[i] = blend(shading.Evaluate(call.Variant, frame, call.Resources, frag), fb.Color[i])
			fb.Depth[i] = depth
		}
	}
}

// forEachBand runs fn once per band on the worker pool and waits for all of them.
// Bands never share pixels, so fn may write its rows without locking.
func (r *rendererImpl) forEachBand(ctx context.Context, height int, fn func(Band)) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	for _, b := range Bands(height, r.bandHeight) {
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: b.Index,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return nil, err
				}
				fn(b)
				if r.onBand != nil {
					r.onBand(b)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	if len(errs) > 0 {
		return errors.Join(errs[0], fmt.Errorf("software: %d of %d bands skipped", len(errs), r.BandCount(height)))
	}
	return nil
}
