package shading

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
)

// Frame holds the uniforms of bind group 0. They are read-only for the duration of a draw.
type Frame struct {
	Camera camera.GPUCameraUniform
	Light  light.GPULight
	Debug  debug.GPUDebugUniform
}

// VertexOutput is what the vertex stage hands to the fragment evaluators. All fields
// interpolate linearly across a triangle except MaterialID and Material, which are flat.
type VertexOutput struct {
	// Clip is the clip-space position.
	Clip common.Vec4
	// WorldPos is the world-space position.
	WorldPos common.Vec3
	// Color is the vertex color multiplied by the instance tint.
	Color common.Vec3
	// Tint is the instance tint, applied again to texture albedo.
	Tint common.Vec3
	// UV is the texture coordinate plus the instance UV offset.
	UV common.Vec2
	// Normal, Tangent and Bitangent are unit world-space basis vectors.
	Normal, Tangent, Bitangent common.Vec3
	// MaterialID indexes the material table.
	MaterialID uint32
	// Material holds the inline coefficients, or the implicit material when the
	// instance stream carries none.
	Material material.GPUMaterial
	// ViewPos is the camera position.
	ViewPos common.Vec3
}

// InstanceBasis reconstructs the matrix that carries model-space normals, tangents and
// bitangents to world space. With the basis feature it is mat3(tangent, bitangent, normal)
// from the instance record, deriving a zero bitangent as cross(normal, tangent); without
// it, the upper 3x3 of the model matrix.
//
// Parameters:
//   - inst: the instance record, already masked to the variant's features
//   - features: the instance fields read by the variant
//
// Returns:
//   - common.Mat3: the basis, column-major
func InstanceBasis(inst model.GPUInstance, features model.InstanceFeatures) common.Mat3 {
	if !features.Has(model.InstanceBasis) {
		m := inst.Model
		return common.Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}
	}
	n := common.Vec3(inst.Normal)
	t := common.Vec3(inst.Tangent)
	b := common.Vec3(inst.Bitangent)
	if b == (common.Vec3{}) {
		b = n.Cross(t)
	}
	return common.Mat3FromColumns(t, b, n)
}

// TransformVertex runs the vertex stage for one vertex of one instance.
//
// Parameters:
//   - frame: the frame uniforms
//   - v: the mesh vertex
//   - inst: the instance record, IdentityInstance for non-instanced draws
//   - features: the instance fields read by the variant
//
// Returns:
//   - VertexOutput: the stage output
func TransformVertex(frame Frame, v model.GPUVertex, inst model.GPUInstance, features model.InstanceFeatures) VertexOutput {
	inst = inst.Masked(features)

	world := common.MulVec4(inst.Model[:], common.Vec3(v.Position).Vec4(1)).Add(common.Vec3(inst.Translation).Vec4(0))
	clip := common.MulVec4(frame.Camera.ViewProj[:], world)

	n := common.Vec3(v.Normal)
	t := common.Vec3(v.Tangent)
	if t.LengthSquared() == 0 {
		t = common.AnyPerpendicular(n.Normalize())
	}
	b := n.Cross(t)

	basis := InstanceBasis(inst, features)
	tint := common.Vec3(inst.Tint)

	return VertexOutput{
		Clip:       clip,
		WorldPos:   world.XYZ(),
		Color:      common.Vec3(v.Color).Mul(tint),
		Tint:       tint,
		UV:         common.Vec2(v.TexCoord).Add(inst.UVOffset),
		Normal:     basis.MulVec3(n).Normalize(),
		Tangent:    basis.MulVec3(t).Normalize(),
		Bitangent:  basis.MulVec3(b).Normalize(),
		MaterialID: inst.MaterialID,
		Material: material.GPUMaterial{
			Ambient:   inst.Ambient,
			Diffuse:   inst.Diffuse,
			Specular:  inst.Specular,
			Shininess: inst.Shininess,
		},
		ViewPos: frame.Camera.CameraPosition,
	}
}

// Lerp interpolates two vertex outputs. Flat fields are taken from a.
func Lerp(a, b VertexOutput, t float32) VertexOutput {
	out := a
	out.Clip = a.Clip.Scale(1 - t).Add(b.Clip.Scale(t))
	out.WorldPos = a.WorldPos.Mix(b.WorldPos, t)
	out.Color = a.Color.Mix(b.Color, t)
	out.Tint = a.Tint.Mix(b.Tint, t)
	out.UV = a.UV.Scale(1 - t).Add(b.UV.Scale(t))
	out.Normal = a.Normal.Mix(b.Normal, t)
	out.Tangent = a.Tangent.Mix(b.Tangent, t)
	out.Bitangent = a.Bitangent.Mix(b.Bitangent, t)
	return out
}

// Barycentric interpolates three vertex outputs with weights that sum to one.
// Flat fields are taken from the provoking vertex a.
func Barycentric(a, b, c VertexOutput, w0, w1, w2 float32) VertexOutput {
	mix3 := func(x, y, z common.Vec3) common.Vec3 {
		return x.Scale(w0).Add(y.Scale(w1)).Add(z.Scale(w2))
	}
	out := a
	out.Clip = a.Clip.Scale(w0).Add(b.Clip.Scale(w1)).Add(c.Clip.Scale(w2))
	out.WorldPos = mix3(a.WorldPos, b.WorldPos, c.WorldPos)
	out.Color = mix3(a.Color, b.Color, c.Color)
	out.Tint = mix3(a.Tint, b.Tint, c.Tint)
	out.UV = a.UV.Scale(w0).Add(b.UV.Scale(w1)).Add(c.UV.Scale(w2))
	out.Normal = mix3(a.Normal, b.Normal, c.Normal)
	out.Tangent = mix3(a.Tangent, b.Tangent, c.Tangent)
	out.Bitangent = mix3(a.Bitangent, b.Bitangent, c.Bitangent)
	return out
}
