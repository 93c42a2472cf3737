package shading

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/environment"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/texture"
)

const tol = 1e-5

func assertVec3InDelta(t *testing.T, want, got common.Vec3, delta float64) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], delta, "component %d: want %v got %v", i, want, got)
	}
}

func originFrame() Frame {
	cam := camera.NewCamera(camera.WithPosition(0, 0, 0), camera.WithTarget(0, 0, -1))
	l := light.NewLight(light.WithPosition(0, 5, 0), light.WithColor(1, 1, 1))
	return Frame{
		Camera: cam.Uniform(),
		Light:  l.Uniform(),
		Debug:  debug.State{Near: cam.Near(), Far: cam.Far()}.Uniform(),
	}
}

func upVertex(pos common.Vec3) model.GPUVertex {
	return model.GPUVertex{
		Position: pos,
		Color:    [3]float32{1, 1, 1},
		Normal:   [3]float32{0, 1, 0},
		Tangent:  [3]float32{1, 0, 0},
	}
}

func TestLitQuadBelowLightIsNearWhite(t *testing.T) {
	frame := originFrame()
	v := NewVariant(ModeColor, FeatureInlineMaterial)
	white := [3]float32{1, 1, 1}
	inst := model.NewInstance(common.IdentityMat4(), model.WithInlineMaterial([3]float32{}, white, white, 32))

	out := TransformVertex(frame, upVertex(common.Vec3{0, -1, -0.5}), inst, v.InstanceFeatures())
	frag := Fragment{VertexOutput: out}

	l := BlinnPhong(out.Normal, out.WorldPos, out.ViewPos, frame.Light, out.Material)
	assert.Greater(t, l.Diffuse[0], float32(0.99))
	assert.Greater(t, l.Diffuse[0], l.Specular[0])

	c := Evaluate(v, frame, Resources{}, frag)
	assert.GreaterOrEqual(t, c[0], float32(0.9))
	assert.Equal(t, c[0], c[1])
	assert.Equal(t, c[1], c[2])
	assert.Equal(t, float32(1), c[3])
}

func TestGramSchmidtTangentOrthonormal(t *testing.T) {
	frame := originFrame()
	features := model.InstanceAll
	rotations := [][3]float32{{0, 0, 0}, {0.3, 1.1, -0.4}, {math32.Pi / 2, 0, 0}, {-2, 0.5, 2.5}}
	for _, r := range rotations {
		var m [16]float32
		common.BuildModelMatrix(m[:], 1, 2, 3, r[0], r[1], r[2], 1, 1, 1)
		inst := model.NewInstance(m)

		vtx := upVertex(common.Vec3{0.2, 0, 0.1})
		vtx.Tangent = [3]float32{1, 0.3, 0}
		out := TransformVertex(frame, vtx, inst, features)

		basis := ShadingBasis(out.Normal, out.Tangent)
		assert.InDelta(t, 1, basis.Tangent.Length(), tol)
		assert.InDelta(t, 0, basis.Tangent.Dot(basis.Normal), tol)
		assert.InDelta(t, 0, basis.Bitangent.Dot(basis.Tangent), tol)
		assertVec3InDelta(t, basis.Normal.Cross(basis.Tangent), basis.Bitangent, tol)
	}
}

func TestVertexStageOutputsUnitBasis(t *testing.T) {
	frame := originFrame()
	var m [16]float32
	common.BuildModelMatrix(m[:], 0, 0, 0, 0.4, 0.2, 0, 3, 1, 0.5)
	out := TransformVertex(frame, upVertex(common.Vec3{1, 1, 1}), model.NewInstance(m), model.InstanceAll)

	assert.InDelta(t, 1, out.Normal.Length(), tol)
	assert.InDelta(t, 1, out.Tangent.Length(), tol)
	assert.InDelta(t, 1, out.Bitangent.Length(), tol)
}

func TestVertexStageNonUniformScaleNormal(t *testing.T) {
	frame := originFrame()
	var m [16]float32
	common.BuildModelMatrix(m[:], 0, 0, 0, 0, 0, 0, 2, 1, 1)
	vtx := upVertex(common.Vec3{})
	vtx.Normal = [3]float32{1, 1, 0}

	out := TransformVertex(frame, vtx, model.NewInstance(m), model.InstanceAll)
	assertVec3InDelta(t, common.Vec3{0.5, 1, 0}.Normalize(), out.Normal, tol)
}

func TestVertexStageWithoutBasisUsesModelMatrix(t *testing.T) {
	frame := originFrame()
	var m [16]float32
	common.BuildModelMatrix(m[:], 0, 0, 0, 0, 0, math32.Pi/2, 1, 1, 1)
	inst := model.NewInstance(m, model.WithBasis([3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{}))

	out := TransformVertex(frame, upVertex(common.Vec3{}), inst, model.InstanceTint)
	assertVec3InDelta(t, common.Vec3{-1, 0, 0}, out.Normal, tol)
}

func TestVertexStageDerivesMissingBitangent(t *testing.T) {
	inst := model.NewInstance(common.IdentityMat4(), model.WithBasis([3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{}))
	basis := InstanceBasis(inst, model.InstanceBasis)
	assertVec3InDelta(t, common.Vec3{0, 1, 0}, basis.Column(1), tol)
}

func TestVertexStageTranslationTintUV(t *testing.T) {
	frame := originFrame()
	inst := model.NewInstance(common.IdentityMat4(),
		model.WithTranslation(0, 0, -5),
		model.WithTint(0.5, 1, 1),
		model.WithUVOffset(0.25, 0),
		model.WithMaterialID(3),
	)
	vtx := upVertex(common.Vec3{1, 0, 0})
	vtx.TexCoord = [2]float32{0.5, 0.5}

	out := TransformVertex(frame, vtx, inst, NewVariant(ModeDebug).InstanceFeatures())
	assert.Equal(t, common.Vec3{1, 0, -5}, out.WorldPos)
	assert.Equal(t, common.Vec3{0.5, 1, 1}, out.Color)
	assert.Equal(t, common.Vec2{0.75, 0.5}, out.UV)
	assert.Equal(t, uint32(3), out.MaterialID)
	assert.Equal(t, material.Implicit(), out.Material)

	color := TransformVertex(frame, vtx, inst, NewVariant(ModeColor).InstanceFeatures())
	assert.Equal(t, common.Vec2{0.5, 0.5}, color.UV)
	assert.Equal(t, uint32(0), color.MaterialID)
}

func TestVertexStageZeroTangent(t *testing.T) {
	vtx := upVertex(common.Vec3{})
	vtx.Tangent = [3]float32{}
	out := TransformVertex(originFrame(), vtx, model.IdentityInstance(), model.InstanceAll)
	assert.InDelta(t, 1, out.Tangent.Length(), tol)
	assert.InDelta(t, 0, out.Tangent.Dot(out.Normal), tol)
}

func TestNormalMapPerturbation(t *testing.T) {
	basis := ShadingBasis(common.Vec3{0, 1, 0}, common.Vec3{1, 0.2, 0})
	flat := basis.Perturb(DecodeNormal(common.Vec3{0.5, 0.5, 1}))
	assertVec3InDelta(t, common.Vec3{0, 1, 0}, flat, tol)

	tilted := basis.Perturb(DecodeNormal(common.Vec3{1, 0.5, 0.5}))
	assertVec3InDelta(t, common.Vec3{1, 0, 0}, tilted, tol)
}

func TestSurfaceBasisUsesNormalMapWhenBound(t *testing.T) {
	v := NewVariant(ModeNormalMapped)
	tex := texture.Solid(common.Vec4{0.5, 1, 0.5, 1})
	frag := Fragment{VertexOutput: VertexOutput{Normal: common.Vec3{0, 0, 1}, Tangent: common.Vec3{1, 0, 0}}}

	_, n := SurfaceBasis(v, Resources{Normal: tex}, frag)
	assertVec3InDelta(t, common.Vec3{0, 1, 0}, n, tol)

	_, unbound := SurfaceBasis(v, Resources{}, frag)
	assertVec3InDelta(t, common.Vec3{0, 0, 1}, unbound, tol)
}

func TestReflectionIdentity(t *testing.T) {
	n := common.Vec3{0.3, 0.9, -0.2}.Normalize()
	v := common.Vec3{-0.5, 0.5, 0.7}.Normalize()
	r := common.Reflect(v.Neg(), n)
	assert.InDelta(t, v.Dot(n), r.Dot(n), tol)
}

func TestEnvironmentWeight(t *testing.T) {
	env := environment.Constant{1, 1, 1}
	n := common.Vec3{0, 1, 0}
	v := common.Vec3{0, 1, 0}

	implicit := EnvironmentReflection(env, n, v, MaterialImplicit, material.Implicit())
	assert.Equal(t, common.Vec3{EnvironmentWeight, EnvironmentWeight, EnvironmentWeight}, implicit)

	m := material.GPUMaterial{Ambient: [3]float32{0.2, 0.3, 0.4}}
	assert.Equal(t, common.Vec3{0.2, 0.3, 0.4}, EnvironmentReflection(env, n, v, MaterialTable, m))
	assert.Equal(t, common.Vec3{}, EnvironmentReflection(nil, n, v, MaterialTable, m))
}

func TestMaterialTableLookupDrivesLighting(t *testing.T) {
	frame := originFrame()
	table := material.NewTable(
		material.GPUMaterial{Diffuse: [3]float32{1, 0, 0}, Shininess: 32},
		material.GPUMaterial{Diffuse: [3]float32{0, 1, 0}, Shininess: 32},
	)
	v := NewVariant(ModeMaterial)
	inst := model.NewInstance(common.IdentityMat4(), model.WithMaterialID(1))
	out := TransformVertex(frame, upVertex(common.Vec3{0, -1, -0.5}), inst, v.InstanceFeatures())

	c := Evaluate(v, frame, Resources{Materials: table}, Fragment{VertexOutput: out})
	assert.Equal(t, float32(0), c[0])
	assert.Greater(t, c[1], float32(0.9))
}

func TestTexturedAlbedoAndAlpha(t *testing.T) {
	frame := originFrame()
	v := NewVariant(ModeTextured)
	out := TransformVertex(frame, upVertex(common.Vec3{0, -1, -0.5}), model.NewInstance(common.IdentityMat4(), model.WithTint(1, 0.5, 1)), v.InstanceFeatures())

	res := Resources{Diffuse: texture.Solid(common.Vec4{1, 1, 0, 0.5})}
	c := Evaluate(v, frame, res, Fragment{VertexOutput: out})
	assert.Equal(t, float32(0.5), c[3])
	assert.Equal(t, float32(0), c[2])
	assert.InDelta(t, c[0]/2, c[1], tol)

	untextured := Evaluate(v, frame, Resources{}, Fragment{VertexOutput: out})
	assert.Equal(t, float32(1), untextured[3])
}

func TestMaterialVariantWithoutTableUsesImplicit(t *testing.T) {
	frame := originFrame()
	v := NewVariant(ModeMaterial)
	inst := model.NewInstance(common.IdentityMat4())
	out := TransformVertex(frame, upVertex(common.Vec3{0, -1, -0.5}), inst, v.InstanceFeatures())

	assert.Equal(t, material.Implicit(), ResolveMaterial(MaterialTable, out, nil))
	assert.Equal(t, material.Implicit(), ResolveMaterial(MaterialTable, out, material.NewTable()))

	var c common.Vec4
	assert.NotPanics(t, func() { c = Evaluate(v, frame, Resources{}, Fragment{VertexOutput: out}) })
	assert.Equal(t, c, Evaluate(v, frame, Resources{Materials: material.NewTable()}, Fragment{VertexOutput: out}))
	assert.Greater(t, c[0], float32(0.5))
}
