package shading

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
)

// Overlay annotation constants.
const (
	OverlayPlaneOffset     = 0.1
	OverlayMarkerRadius    = 0.02
	OverlayMarkerThickness = 0.005
	OverlayRingMaxRadius   = 0.05
	OverlayRingMaxHeight   = 10
)

var (
	// OverlayRingColor is the color of the height ring.
	OverlayRingColor = common.Vec3{1, 0, 0}
	// OverlayMarkerColor is the color of the forward marker.
	OverlayMarkerColor = common.Vec3{0, 1, 0}
)

// fullscreenCorners is the quad drawn by the overlay pass as two triangles.
var fullscreenCorners = [6]common.Vec2{
	{-1, -1}, {1, -1}, {1, 1},
	{-1, -1}, {1, 1}, {-1, 1},
}

// FullscreenVertexCount is the number of vertices the overlay pass draws.
const FullscreenVertexCount = len(fullscreenCorners)

// FullscreenVertex returns the clip-space corner for a vertex index of the overlay pass.
// No vertex buffer is bound; indices above 5 wrap.
func FullscreenVertex(index uint32) common.Vec4 {
	c := fullscreenCorners[index%uint32(FullscreenVertexCount)]
	return common.Vec4{c[0], c[1], 0, 1}
}

// ViewRay returns the unit world-space direction through an NDC position, built from
// the inverse projection and inverse view matrices.
//
// Parameters:
//   - cam: the camera uniform
//   - ndc: the position in [-1,1]
//
// Returns:
//   - common.Vec3: the ray direction
func ViewRay(cam camera.GPUCameraUniform, ndc common.Vec2) common.Vec3 {
	p := common.MulVec4(cam.InvProj[:], common.Vec4{ndc[0], ndc[1], 1, 1})
	dir := p.XYZ().Scale(1 / p[3])
	return common.MulVec4(cam.InvView[:], dir.Vec4(0)).XYZ().Normalize()
}

// NDCToUV maps NDC to texture-style coordinates with v = 0 at the top.
func NDCToUV(ndc common.Vec2) common.Vec2 {
	return common.Vec2{ndc[0]*0.5 + 0.5, 0.5 - ndc[1]*0.5}
}

// intersectPlane returns the hit of a ray with the plane y = planeY, if t > 0.
func intersectPlane(origin, dir common.Vec3, planeY float32) (common.Vec3, bool) {
	if dir[1] == 0 {
		return common.Vec3{}, false
	}
	t := (planeY - origin[1]) / dir[1]
	if t <= 0 {
		return common.Vec3{}, false
	}
	return origin.Add(dir.Scale(t)), true
}

// RingRadius is the ring radius for a reference height, growing linearly from 0 at
// height 0 to OverlayRingMaxRadius at OverlayRingMaxHeight.
func RingRadius(height float32) float32 {
	return common.Mix(0, OverlayRingMaxRadius, common.Clamp(height/OverlayRingMaxHeight, 0, 1))
}

// MarkerUV returns where the camera's forward ray meets the annotation plane, in
// screen coordinates.
//
// Parameters:
//   - cam: the camera uniform
//
// Returns:
//   - common.Vec2: the marker coordinate
//   - bool: false if the forward ray never reaches the plane
func MarkerUV(cam camera.GPUCameraUniform) (common.Vec2, bool) {
	ref := common.Vec3(cam.CameraPosition)
	hit, ok := intersectPlane(ref, ViewRay(cam, common.Vec2{0, 0}), ref[1]-OverlayPlaneOffset)
	if !ok {
		return common.Vec2{}, false
	}
	clip := common.MulVec4(cam.ViewProj[:], hit.Vec4(1))
	return NDCToUV(common.Vec2{clip[0] / clip[3], clip[1] / clip[3]}), true
}

// OverlayBackground is the overlay color before the marker: the environment along the
// pixel's ray with the height ring blended on top where the ray meets the plane.
//
// Parameters:
//   - cam: the camera uniform
//   - env: the environment, nil for black
//   - ndc: the pixel position in [-1,1]
//
// Returns:
//   - common.Vec3: the background color
func OverlayBackground(cam camera.GPUCameraUniform, env environment.Sampler, ndc common.Vec2) common.Vec3 {
	dir := ViewRay(cam, ndc)
	var color common.Vec3
	if env != nil {
		color = env.Sample(dir)
	}

	ref := common.Vec3(cam.CameraPosition)
	if hit, ok := intersectPlane(ref, dir, ref[1]-OverlayPlaneOffset); ok {
		d := common.Vec2{hit[0], hit[2]}.Distance(common.Vec2{ref[0], ref[2]})
		edge := 1 - common.Smoothstep(0, OverlayMarkerThickness, math32.Abs(d-RingRadius(ref[1])))
		color = color.Mix(OverlayRingColor, edge)
	}
	return color
}

// BlendMarker blends the marker over a color. At a distance of at least
// OverlayMarkerRadius+OverlayMarkerThickness the color is returned unchanged; at
// distance zero the result is exactly OverlayMarkerColor.
//
// Parameters:
//   - color: the background
//   - uv: the pixel coordinate
//   - marker: the marker coordinate
//
// Returns:
//   - common.Vec3: the blended color
func BlendMarker(color common.Vec3, uv, marker common.Vec2) common.Vec3 {
	a := 1 - common.Smoothstep(OverlayMarkerRadius, OverlayMarkerRadius+OverlayMarkerThickness, uv.Distance(marker))
	return color.Mix(OverlayMarkerColor, a)
}

// OverlayColor evaluates the overlay pass for one pixel.
//
// Parameters:
//   - cam: the camera uniform
//   - env: the environment, nil for black
//   - ndc: the pixel position in [-1,1]
//
// Returns:
//   - common.Vec4: opaque linear RGBA
func OverlayColor(cam camera.GPUCameraUniform, env environment.Sampler, ndc common.Vec2) common.Vec4 {
	color := OverlayBackground(cam, env, ndc)
	if marker, ok := MarkerUV(cam); ok {
		color = BlendMarker(color, NDCToUV(ndc), marker)
	}
	return color.Vec4(1)
}
