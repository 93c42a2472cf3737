package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestGPUStructSizes(t *testing.T) {
	assert.Equal(t, 56, (&GPUVertex{}).Size())
	assert.Equal(t, GPUInstanceSize, (&GPUInstance{}).Size())
}

func TestInstanceMarshalOffsets(t *testing.T) {
	inst := GPUInstance{
		Tint:        [3]float32{0.1, 0.2, 0.3},
		Translation: [3]float32{1, 2, 3},
		UVOffset:    [2]float32{0.5, 0.25},
		Normal:      [3]float32{0, 0, 1},
		Tangent:     [3]float32{1, 0, 0},
		Bitangent:   [3]float32{0, 1, 0},
		Ambient:     [3]float32{0.01, 0.02, 0.03},
		Diffuse:     [3]float32{0.4, 0.5, 0.6},
		Specular:    [3]float32{0.7, 0.8, 0.9},
		Shininess:   64,
		MaterialID:  7,
	}
	inst.Model[12] = 9

	buf := inst.Marshal()
	require.Len(t, buf, 224)
	assert.Equal(t, float32(9), floatAt(buf, 48))
	assert.Equal(t, float32(0.1), floatAt(buf, 64))
	assert.Equal(t, float32(1), floatAt(buf, 80))
	assert.Equal(t, float32(0.25), floatAt(buf, 100))
	assert.Equal(t, float32(1), floatAt(buf, 120))
	assert.Equal(t, float32(1), floatAt(buf, 128))
	assert.Equal(t, float32(1), floatAt(buf, 148))
	assert.Equal(t, float32(0.01), floatAt(buf, 160))
	assert.Equal(t, float32(0.4), floatAt(buf, 176))
	assert.Equal(t, float32(0.7), floatAt(buf, 192))
	assert.Equal(t, float32(64), floatAt(buf, 208))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[212:]))
	assert.Equal(t, make([]byte, 8), buf[216:])
}

func TestVertexMarshalOffsets(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Color:    [3]float32{4, 5, 6},
		TexCoord: [2]float32{7, 8},
		Normal:   [3]float32{9, 10, 11},
		Tangent:  [3]float32{12, 13, 14},
	}
	buf := v.Marshal()
	for i := range 14 {
		assert.Equal(t, float32(i+1), floatAt(buf, i*4))
	}
}

func TestInstanceStride(t *testing.T) {
	tests := []struct {
		name     string
		features InstanceFeatures
		want     uint64
	}{
		{"model only", 0, 64},
		{"tint", InstanceTint, 80},
		{"uv offset", InstanceUVOffset, 112},
		{"basis", InstanceBasis, 160},
		{"inline material", InstanceMaterial, 224},
		{"material id", InstanceMaterialID, 224},
		{"all", InstanceAll, 224},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstanceStride(tt.features))
		})
	}
}

func TestInstanceLayoutLocations(t *testing.T) {
	layout := InstanceLayout(InstanceAll)
	assert.Equal(t, wgpu.VertexStepModeInstance, layout.StepMode)
	assert.Equal(t, uint64(224), layout.ArrayStride)
	require.Len(t, layout.Attributes, 15)

	for i, attr := range layout.Attributes {
		assert.Equal(t, uint32(5+i), attr.ShaderLocation)
	}
	assert.Equal(t, uint64(212), layout.Attributes[14].Offset)
	assert.Equal(t, wgpu.VertexFormatUint32, layout.Attributes[14].Format)

	reduced := InstanceLayout(InstanceTint | InstanceMaterialID)
	require.Len(t, reduced.Attributes, 6)
	assert.Equal(t, uint32(9), reduced.Attributes[4].ShaderLocation)
	assert.Equal(t, uint32(19), reduced.Attributes[5].ShaderLocation)
	assert.Equal(t, uint64(212), reduced.Attributes[5].Offset)
}

func TestMarshalInstancesTruncates(t *testing.T) {
	instances := []GPUInstance{IdentityInstance(), IdentityInstance()}
	buf := MarshalInstances(instances, InstanceTint)
	assert.Len(t, buf, 160)
	assert.Equal(t, float32(1), floatAt(buf, 80))
}

func TestInstanceWGSL(t *testing.T) {
	src := InstanceWGSL(InstanceTint)
	assert.Contains(t, src, "@location(9) tint: vec3<f32>")
	assert.NotContains(t, src, "@location(19)")
	assert.Contains(t, src, "inst.tint = raw.tint;")
	assert.Contains(t, src, "inst.material_id = 0u;")
	assert.Contains(t, src, "const INSTANCE_HAS_BASIS: bool = false;")
	assert.Contains(t, src, "inst.shininess = 32.0;")
}

func TestMaskedMatchesDefaults(t *testing.T) {
	inst := NewInstance(common.IdentityMat4(),
		WithTint(0.5, 0.5, 0.5),
		WithMaterialID(3),
		WithInlineMaterial([3]float32{1, 1, 1}, [3]float32{0, 0, 0}, [3]float32{0, 0, 0}, 2),
	)
	m := inst.Masked(InstanceTint)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, m.Tint)
	assert.Equal(t, uint32(0), m.MaterialID)
	assert.Equal(t, [3]float32{1, 1, 1}, m.Diffuse)
	assert.Equal(t, float32(DefaultShininess), m.Shininess)
	assert.Equal(t, [3]float32{}, m.Ambient)
}

func TestNewInstanceBasisNonUniformScale(t *testing.T) {
	var mat [16]float32
	common.BuildModelMatrix(mat[:], 0, 0, 0, 0, 0, 0, 2, 1, 1)
	inst := NewInstance(mat)

	assert.InDelta(t, 0.5, inst.Tangent[0], 1e-6)
	assert.InDelta(t, 1, inst.Bitangent[1], 1e-6)
	assert.InDelta(t, 1, inst.Normal[2], 1e-6)
}

func TestComputeTangentsQuad(t *testing.T) {
	vertices, indices := Quad(2)
	for i := range vertices {
		vertices[i].Tangent = [3]float32{}
	}
	ComputeTangents(vertices, indices)
	for _, v := range vertices {
		tan := common.Vec3(v.Tangent)
		assert.InDelta(t, 1, tan.Length(), 1e-5)
		assert.InDelta(t, 0, tan.Dot(v.Normal), 1e-5)
		assert.InDelta(t, 1, tan[0], 1e-5)
	}
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	vertices := []GPUVertex{
		{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 0, 1}, Normal: [3]float32{0, 1, 0}},
	}
	ComputeTangents(vertices, nil)
	for _, v := range vertices {
		tan := common.Vec3(v.Tangent)
		assert.InDelta(t, 1, tan.Length(), 1e-5)
		assert.InDelta(t, 0, tan.Dot(v.Normal), 1e-5)
	}
}

func TestCubeWinding(t *testing.T) {
	vertices, indices := Cube(1)
	require.Len(t, vertices, 24)
	require.Len(t, indices, 36)
	for i := 0; i < len(indices); i += 3 {
		a := common.Vec3(vertices[indices[i]].Position)
		b := common.Vec3(vertices[indices[i+1]].Position)
		c := common.Vec3(vertices[indices[i+2]].Position)
		face := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, face.Dot(vertices[indices[i]].Normal), float32(0))
	}
}

func TestModelDefaults(t *testing.T) {
	vertices, indices := Cube(2)
	m := NewModel(WithName("cube"), WithMesh(vertices, indices))

	assert.Equal(t, "cube", m.Name())
	assert.Equal(t, 36, m.IndexCount())
	assert.Equal(t, 1, m.InstanceCount())
	assert.InDelta(t, math.Sqrt(3), m.BoundingRadius(), 1e-5)
	assert.Len(t, m.VertexData(), 24*56)
	assert.Len(t, m.IndexData(), 36*4)
	assert.Len(t, m.InstanceData(InstanceAll), 224)
	assert.Nil(t, m.MeshProvider())
}

func TestModelWithoutIndices(t *testing.T) {
	vertices, _ := Quad(1)
	m := NewModel(WithMesh(vertices[:3], nil))
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices())
}
