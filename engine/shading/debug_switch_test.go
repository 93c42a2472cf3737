package shading

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
)

func debugFrame(mode debug.Mode) Frame {
	f := originFrame()
	f.Debug.Mode = mode
	return f
}

func debugFragment() Fragment {
	return Fragment{VertexOutput: VertexOutput{
		WorldPos:   common.Vec3{0, -1, -0.5},
		Color:      common.Vec3{1, 1, 1},
		Tint:       common.Vec3{1, 1, 1},
		UV:         common.Vec2{1.5, 2.3},
		Normal:     common.Vec3{0, 1, 0},
		Tangent:    common.Vec3{1, 0, 0},
		Bitangent:  common.Vec3{0, 0, -1},
		MaterialID: 4,
	}}
}

func TestDebugUnknownModeIsMagenta(t *testing.T) {
	v := NewVariant(ModeDebug)
	for _, m := range []debug.Mode{7, 42, 99} {
		assert.Equal(t, common.Vec4{1, 0, 1, 1}, Evaluate(v, debugFrame(m), Resources{}, debugFragment()))
	}
}

func TestDebugUVFract(t *testing.T) {
	c := Evaluate(NewVariant(ModeDebug), debugFrame(debug.ModeUV), Resources{}, debugFragment())
	assert.InDelta(t, 0.5, c[0], tol)
	assert.InDelta(t, 0.3, c[1], tol)
	assert.Equal(t, float32(0), c[2])
	assert.Equal(t, float32(1), c[3])
}

func TestDebugBasisModes(t *testing.T) {
	v := NewVariant(ModeDebug)
	frag := debugFragment()
	assert.Equal(t, common.Vec4{0.5, 1, 0.5, 1}, Evaluate(v, debugFrame(debug.ModeNormal), Resources{}, frag))
	assert.Equal(t, common.Vec4{1, 0.5, 0.5, 1}, Evaluate(v, debugFrame(debug.ModeTangent), Resources{}, frag))

	// The camera sits at the origin, above and in front of the fragment.
	view := Evaluate(v, debugFrame(debug.ModeView), Resources{}, frag)
	assert.InDelta(t, 0.5, view[0], tol)
	assert.InDelta(t, 0.5+0.5*2/math32.Sqrt(5), view[1], tol)
	assert.InDelta(t, 0.5+0.5/math32.Sqrt(5), view[2], tol)
	assert.Equal(t, float32(1), view[3])

	frag.ViewPos = common.Vec3{0, -1, 3}
	view = Evaluate(v, debugFrame(debug.ModeView), Resources{}, frag)
	assert.Equal(t, common.Vec4{0.5, 0.5, 1, 1}, view)
}

func TestDebugDepthEndpoints(t *testing.T) {
	v := NewVariant(ModeDebug)
	frag := debugFragment()

	frag.Depth = 0
	near := Evaluate(v, debugFrame(debug.ModeDepth), Resources{}, frag)
	assert.InDelta(t, 0, near[0], tol)

	frag.Depth = 1
	far := Evaluate(v, debugFrame(debug.ModeDepth), Resources{}, frag)
	assert.InDelta(t, 1, far[0], 1e-4)

	prev := float32(-1)
	for i := range 11 {
		frag.Depth = float32(i) / 10
		d := Evaluate(v, debugFrame(debug.ModeDepth), Resources{}, frag)[0]
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestMaterialIDRamp(t *testing.T) {
	prev := MaterialIDColor(0)
	assert.Equal(t, common.Vec3{0, 1, 0.3}, prev)
	for id := uint32(1); id <= 16; id++ {
		c := MaterialIDColor(id)
		assert.Greater(t, c[0], prev[0])
		assert.Less(t, c[1], prev[1])
		prev = c
	}
	assert.InDelta(t, 1, prev[0], tol)
	assert.InDelta(t, 0, prev[1], tol)

	c := Evaluate(NewVariant(ModeDebug), debugFrame(debug.ModeMaterialID), Resources{}, debugFragment())
	assert.Equal(t, MaterialIDColor(4).Vec4(1), c)
}

func TestDebugLitMatchesLitVariant(t *testing.T) {
	v := NewVariant(ModeDebug)
	frame := debugFrame(debug.ModeLit)
	frag := debugFragment()
	assert.Equal(t, Lit(v, frame, Resources{}, frag), Evaluate(v, frame, Resources{}, frag))
}

func TestEdgeOverlay(t *testing.T) {
	v := NewVariant(ModeDebug, FeatureEdgeOverlay)
	frame := debugFrame(debug.ModeLit)
	frag := debugFragment()

	frag.NormalDx = common.Vec3{0.05, 0, 0}
	assert.Equal(t, common.Vec4{1, 1, 1, 1}, Evaluate(v, frame, Resources{}, frag))

	frag.NormalDx = common.Vec3{0.1, -0.05, 0}
	frag.NormalDy = common.Vec3{0, 0, 0.1}
	assert.Equal(t, common.Vec4{0, 0, 0, 1}, Evaluate(v, frame, Resources{}, frag))
}

func TestSpecializedDebugIgnoresUniform(t *testing.T) {
	v := NewVariant(ModeDebug).Specialize(debug.ModeUV)
	c := Evaluate(v, debugFrame(99), Resources{}, debugFragment())
	assert.InDelta(t, 0.5, c[0], tol)

	magenta := NewVariant(ModeDebug).Specialize(99)
	assert.Equal(t, Magenta, Evaluate(magenta, debugFrame(debug.ModeUV), Resources{}, debugFragment()))
}
