package shading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
)

func overlayCamera() camera.GPUCameraUniform {
	return camera.NewCamera(camera.WithPosition(0, 2, 0), camera.WithTarget(0, 0, -4)).Uniform()
}

func TestFullscreenVertex(t *testing.T) {
	assert.Equal(t, 6, FullscreenVertexCount)
	assert.Equal(t, common.Vec4{-1, -1, 0, 1}, FullscreenVertex(0))
	assert.Equal(t, common.Vec4{1, 1, 0, 1}, FullscreenVertex(2))
	assert.Equal(t, common.Vec4{-1, 1, 0, 1}, FullscreenVertex(5))
	assert.Equal(t, FullscreenVertex(1), FullscreenVertex(7))
}

func TestViewRayCenterIsForward(t *testing.T) {
	cam := overlayCamera()
	assertVec3InDelta(t, common.Vec3{0, -2, -4}.Normalize(), ViewRay(cam, common.Vec2{0, 0}), tol)
}

func TestRingRadius(t *testing.T) {
	assert.Equal(t, float32(0), RingRadius(0))
	assert.InDelta(t, 0.025, RingRadius(5), tol)
	assert.Equal(t, float32(OverlayRingMaxRadius), RingRadius(50))
	assert.Equal(t, float32(0), RingRadius(-3))
}

func TestBlendMarker(t *testing.T) {
	bg := common.Vec3{0.2, 0.4, 0.6}
	marker := common.Vec2{0.5, 0.5}

	assert.Equal(t, OverlayMarkerColor, BlendMarker(bg, marker, marker))
	assert.Equal(t, bg, BlendMarker(bg, common.Vec2{0.5, 0.53}, marker))
	assert.Equal(t, bg, BlendMarker(bg, common.Vec2{0.9, 0.1}, marker))

	partial := BlendMarker(bg, common.Vec2{0.5, 0.5225}, marker)
	assert.NotEqual(t, bg, partial)
	assert.NotEqual(t, OverlayMarkerColor, partial)
}

func TestOverlayMarkerAtScreenCenter(t *testing.T) {
	cam := overlayCamera()
	uv, ok := MarkerUV(cam)
	require.True(t, ok)
	assert.InDelta(t, 0.5, uv[0], 1e-4)
	assert.InDelta(t, 0.5, uv[1], 1e-4)

	env := environment.Constant{0.2, 0.3, 0.4}
	assert.Equal(t, common.Vec4{0, 1, 0, 1}, OverlayColor(cam, env, common.Vec2{0, 0}))
}

func TestOverlayBackgroundAwayFromAnnotations(t *testing.T) {
	cam := overlayCamera()
	env := environment.Constant{0.2, 0.3, 0.4}
	assert.Equal(t, common.Vec4{0.2, 0.3, 0.4, 1}, OverlayColor(cam, env, common.Vec2{0.9, 0.9}))
}

func TestOverlayNoMarkerWhenLookingUp(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(0, 1, 0), camera.WithTarget(0, 3, -4)).Uniform()
	_, ok := MarkerUV(cam)
	assert.False(t, ok)

	env := environment.Constant{0.1, 0.1, 0.1}
	assert.Equal(t, common.Vec4{0.1, 0.1, 0.1, 1}, OverlayColor(cam, env, common.Vec2{0, 0}))
}

func TestOverlayRingUnderCamera(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithPosition(0, 5, 0),
		camera.WithTarget(0, 0, 0),
		camera.WithUp(0, 0, -1),
	).Uniform()

	// Straight down lands on the foot of the camera, inside the ring.
	assert.Equal(t, common.Vec3{}, OverlayBackground(cam, environment.Constant{}, common.Vec2{0, 0}))

	onRing := common.Vec3{RingRadius(5), 5 - OverlayPlaneOffset, 0}
	clip := common.MulVec4(cam.ViewProj[:], onRing.Vec4(1))
	ndc := common.Vec2{clip[0] / clip[3], clip[1] / clip[3]}
	assertVec3InDelta(t, OverlayRingColor, OverlayBackground(cam, environment.Constant{}, ndc), 1e-2)
}
