package binding

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
)

func TestDefaultLocations(t *testing.T) {
	s := Default()
	assert.Equal(t, 10, s.Len())
	assert.Equal(t, []int{0, 1, 2, 3}, s.Groups())

	cam, ok := s.Lookup(SlotCamera)
	require.True(t, ok)
	assert.Equal(t, Location{0, 0}, cam.Location)
	assert.Equal(t, uint64(208), cam.Size)

	normal, ok := s.Lookup(SlotNormalSampler)
	require.True(t, ok)
	assert.Equal(t, Location{3, 3}, normal.Location)
	assert.Equal(t, KindSampler, normal.Kind)
}

func TestDefaultConformsToEmbeddedShaders(t *testing.T) {
	lib := shader.Embedded()
	names, err := lib.Names()
	require.NoError(t, err)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := lib.Load(name, name)
			require.NoError(t, err)
			derived, err := FromShader(s)
			require.NoError(t, err)
			assert.NoError(t, Default().Conform(derived))
		})
	}
}

func TestFromShaderKinds(t *testing.T) {
	s, err := shader.Embedded().Load("debug", shader.DebugFragment)
	require.NoError(t, err)
	derived, err := FromShader(s)
	require.NoError(t, err)

	assert.Equal(t, Default().Len(), derived.Len())
	env, ok := derived.Lookup(SlotEnvironmentTexture)
	require.True(t, ok)
	assert.Equal(t, KindTextureCube, env.Kind)
	mats, ok := derived.Lookup(SlotMaterials)
	require.True(t, ok)
	assert.Equal(t, KindStorage, mats.Kind)
	dbg, ok := derived.Lookup(SlotDebug)
	require.True(t, ok)
	assert.Equal(t, uint64(48), dbg.Size)
}

func TestConformReportsMismatches(t *testing.T) {
	moved := New(
		Entry{SlotCamera, Location{0, 1}, KindUniform, 0},
		Entry{SlotDiffuseTexture, Location{3, 0}, KindTextureCube, 0},
		Entry{"shadow_map", Location{0, 2}, KindTexture2D, 0},
	)
	err := Default().Conform(moved)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `slot "camera"`)
	assert.Contains(t, err.Error(), `slot "diffuse_texture" is texture_cube`)
	assert.Contains(t, err.Error(), `holds "shadow_map"`)

	assert.NoError(t, Default().Conform(New()))
}

func TestMerge(t *testing.T) {
	a := New(Entry{SlotCamera, Location{0, 0}, KindUniform, 208})
	b := New(Entry{SlotLight, Location{0, 1}, KindUniform, 32})
	m, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	_, err = a.Merge(New(Entry{SlotLight, Location{0, 0}, KindUniform, 32}))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLayoutDescriptors(t *testing.T) {
	vis := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	descs := Default().LayoutDescriptors(vis)
	require.Len(t, descs, 4)

	g0 := descs[0].Entries
	require.Len(t, g0, 3)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g0[2].Buffer.Type)
	assert.Equal(t, uint64(48), g0[2].Buffer.MinBindingSize)
	assert.Equal(t, vis, g0[0].Visibility)

	assert.Equal(t, wgpu.TextureViewDimensionCube, descs[1].Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, descs[2].Entries[0].Buffer.Type)

	g3 := descs[3].Entries
	require.Len(t, g3, 4)
	for i, e := range g3 {
		assert.Equal(t, uint32(i), e.Binding)
	}
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, g3[3].Sampler.Type)
}
