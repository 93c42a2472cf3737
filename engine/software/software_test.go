package software

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

const size = 32

var (
	white = [3]float32{1, 1, 1}
	black = [3]float32{}
)

// testFrame looks down at the origin from above and in front, lit from straight above.
func testFrame() shading.Frame {
	cam := camera.NewCamera(camera.WithPosition(0, 2, 3), camera.WithTarget(0, 0, 0), camera.WithAspect(1))
	l := light.NewLight(light.WithPosition(0, 5, 0), light.WithColor(1, 1, 1))
	return shading.Frame{
		Camera: cam.Uniform(),
		Light:  l.Uniform(),
		Debug:  debug.State{Near: cam.Near(), Far: cam.Far()}.Uniform(),
	}
}

// whiteQuad is a 4x4 horizontal quad with white vertex colors.
func whiteQuad(instances ...model.GPUInstance) model.Model {
	vertices, indices := model.Quad(4)
	for i := range vertices {
		vertices[i].Color = white
	}
	return model.NewModel(model.WithMesh(vertices, indices), model.WithInstances(instances...))
}

func newTarget(t *testing.T) *Framebuffer {
	t.Helper()
	fb, err := NewFramebuffer(size, size)
	require.NoError(t, err)
	return fb
}

func TestBandsCoverRowsOnce(t *testing.T) {
	bands := Bands(10, 4)
	require.Len(t, bands, 3)
	assert.Equal(t, Band{Index: 2, Y0: 8, Y1: 10}, bands[2])

	seen := make([]int, 10)
	for _, b := range bands {
		for y := b.Y0; y < b.Y1; y++ {
			seen[y]++
		}
	}
	for y, n := range seen {
		assert.Equal(t, 1, n, "row %d", y)
	}

	assert.Len(t, Bands(3, 0), 3)
	assert.Empty(t, Bands(0, 4))
}

func TestNewFramebufferRejectsEmpty(t *testing.T) {
	_, err := NewFramebuffer(0, 4)
	assert.Error(t, err)

	fb, err := NewFramebuffer(2, 2)
	require.NoError(t, err)
	assert.Equal(t, common.Vec4{0, 0, 0, 1}, fb.At(1, 1))
	assert.Equal(t, float32(1), fb.DepthAt(1, 1))
}

func TestFramebufferImageAndPNG(t *testing.T) {
	fb, err := NewFramebuffer(2, 1)
	require.NoError(t, err)
	fb.Color[0] = common.Vec4{1, 0.5, 0, 1}
	fb.Color[1] = common.Vec4{2, -1, 0.2, 0}

	img := fb.Image()
	assert.Equal(t, []uint8{255, 128, 0, 255}, img.Pix[0:4])
	assert.Equal(t, []uint8{255, 0, 51, 0}, img.Pix[4:8])

	var buf bytes.Buffer
	require.NoError(t, fb.Encode(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, fb.WritePNG(path))
}

func TestLitQuadCenterIsNearWhite(t *testing.T) {
	fb := newTarget(t)
	inst := model.NewInstance(common.IdentityMat4(), model.WithInlineMaterial(black, white, white, 32))
	call := DrawCall{
		Variant: shading.NewVariant(shading.ModeColor, shading.FeatureInlineMaterial),
		Mesh:    whiteQuad(inst),
	}
	require.NoError(t, NewRenderer(WithWorkers(2), WithBandHeight(5)).Draw(context.Background(), fb, testFrame(), call))

	c := fb.At(size/2, size/2)
	assert.Greater(t, c[0], float32(0.85))
	assert.InDelta(t, c[0], c[1], 1e-5)
	assert.InDelta(t, c[1], c[2], 1e-5)
	assert.Less(t, fb.DepthAt(size/2, size/2), float32(1))

	// The top row looks past the far edge of the quad.
	assert.Equal(t, float32(1), fb.DepthAt(size/2, 0))
	assert.Equal(t, common.Vec4{0, 0, 0, 1}, fb.At(size/2, 0))
}

func TestDepthTestKeepsNearest(t *testing.T) {
	near := model.NewInstance(common.IdentityMat4(),
		model.WithTranslation(0, 0.5, 0), model.WithTint(1, 0, 0), model.WithInlineMaterial(black, white, black, 32))
	far := model.NewInstance(common.IdentityMat4(),
		model.WithTint(0, 1, 0), model.WithInlineMaterial(black, white, black, 32))
	v := shading.NewVariant(shading.ModeColor, shading.FeatureInlineMaterial)

	for _, order := range [][]model.GPUInstance{{near, far}, {far, near}} {
		fb := newTarget(t)
		require.NoError(t, NewRenderer().Draw(context.Background(), fb, testFrame(), DrawCall{Variant: v, Mesh: whiteQuad(order...)}))
		c := fb.At(size/2, size/2)
		assert.Greater(t, c[0], float32(0.5))
		assert.Less(t, c[1], float32(0.05))
	}
}

func TestOverlayShadesEveryPixel(t *testing.T) {
	fb := newTarget(t)
	frame := testFrame()
	env := environment.Constant{0.2, 0.4, 0.6}
	call := DrawCall{
		Variant:   shading.NewVariant(shading.ModeOverlay),
		Resources: shading.Resources{Environment: env},
	}
	require.NoError(t, NewRenderer(WithBandHeight(3)).Draw(context.Background(), fb, frame, call))

	for _, p := range [][2]int{{0, 0}, {3, 5}, {size - 1, size - 1}} {
		want := shading.OverlayColor(frame.Camera, env, pixelNDC(p[0], p[1], size, size))
		assert.Equal(t, want, fb.At(p[0], p[1]))
		assert.Equal(t, float32(1), fb.DepthAt(p[0], p[1]))
	}
}

func TestBandCallbackAndProfiler(t *testing.T) {
	var calls atomic.Int32
	prof := profiler.NewProfiler()
	r := NewRenderer(
		WithBandHeight(10),
		WithBandCallback(func(Band) { calls.Add(1) }),
		WithProfiler(prof),
	)
	assert.Equal(t, 4, r.BandCount(size))

	inst := model.NewInstance(common.IdentityMat4(), model.WithInlineMaterial(black, white, white, 32))
	call := DrawCall{Variant: shading.NewVariant(shading.ModeColor, shading.FeatureInlineMaterial), Mesh: whiteQuad(inst)}
	require.NoError(t, r.Draw(context.Background(), newTarget(t), testFrame(), call))

	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 1, prof.Stage("vertex").Count)
	assert.Equal(t, 1, prof.Stage("raster").Count)
}

func TestDrawErrors(t *testing.T) {
	r := NewRenderer()
	fb := newTarget(t)

	err := r.Draw(context.Background(), fb, testFrame(), DrawCall{Variant: shading.NewVariant(shading.ModeColor)})
	assert.ErrorContains(t, err, "no mesh")

	bad := shading.Variant{Mode: shading.ModeColor, Features: shading.FeatureMaterialID | shading.FeatureInlineMaterial}
	err = r.Draw(context.Background(), fb, testFrame(), DrawCall{Variant: bad, Mesh: whiteQuad()})
	assert.ErrorIs(t, err, shading.ErrInvalidVariant)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	r = NewRenderer(WithBandCallback(func(Band) { calls.Add(1) }))
	err = r.Draw(ctx, fb, testFrame(), DrawCall{Variant: shading.NewVariant(shading.ModeOverlay)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestReleaseStopsWorkers(t *testing.T) {
	base := runtime.NumGoroutine()
	r := NewRenderer(WithWorkers(1))
	call := DrawCall{Variant: shading.NewVariant(shading.ModeColor), Mesh: whiteQuad()}
	require.NoError(t, r.Draw(context.Background(), newTarget(t), testFrame(), call))

	r.Release()
	r.Release()
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= base }, time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, r.Draw(context.Background(), newTarget(t), testFrame(), call), ErrRendererReleased)
}

func TestClipNearSplitsCrossingTriangle(t *testing.T) {
	vtx := func(z, w float32) shading.VertexOutput {
		return shading.VertexOutput{Clip: common.Vec4{0, 0, z, w}}
	}
	poly := clipNear([]shading.VertexOutput{vtx(0.5, 1), vtx(0.5, 1), vtx(-0.5, 1)})
	require.Len(t, poly, 4)
	for _, v := range poly {
		assert.GreaterOrEqual(t, v.Clip[2], float32(0))
	}

	assert.Empty(t, clipNear([]shading.VertexOutput{vtx(-1, 1), vtx(-1, 1), vtx(-1, 1)}))
}

func TestPerspectiveWeights(t *testing.T) {
	tri, ok := project(
		shading.VertexOutput{Clip: common.Vec4{-1, -1, 0.5, 1}, Normal: common.Vec3{0, 1, 0}},
		shading.VertexOutput{Clip: common.Vec4{2, -2, 1, 2}, Normal: common.Vec3{1, 0, 0}},
		shading.VertexOutput{Clip: common.Vec4{0, 4, 2, 4}, Normal: common.Vec3{0, 0, 1}},
		size, size)
	require.True(t, ok)

	w0, w1, w2 := tri.screenWeights(tri.sx[1], tri.sy[1])
	assert.InDelta(t, 0, w0, 1e-5)
	assert.InDelta(t, 1, w1, 1e-5)
	assert.InDelta(t, 0, w2, 1e-5)

	p0, p1, p2 := tri.perspective(1.0/3, 1.0/3, 1.0/3)
	assert.InDelta(t, 1, p0+p1+p2, 1e-5)
	assert.Greater(t, p0, p1)
	assert.Greater(t, p1, p2)

	// Normals vary across the triangle, so the screen-space derivative is non-zero.
	cx, cy := (tri.sx[0]+tri.sx[1]+tri.sx[2])/3, (tri.sy[0]+tri.sy[1]+tri.sy[2])/3
	assert.NotZero(t, tri.normalAt(cx+1, cy).Sub(tri.normalAt(cx, cy)).Length())
}
